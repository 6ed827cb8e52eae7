// README: Rate limiter tests (tier severity, gating, pruning).
package throttle

import (
	"testing"
	"time"
)

// TestSeverityOrdering verifies that the most severe tier wins even when
// less severe tiers also match.
func TestSeverityOrdering(t *testing.T) {
	l := NewLimiter()
	now := time.Now()

	// 5 events inside the 40-minute window; 4 of them also satisfy the
	// 22-minute window and 3 the 17-minute window.
	for _, back := range []time.Duration{2300, 1300, 900, 500, 100} {
		l.RecordCancellation("c1", now.Add(-back*time.Second))
	}

	v := l.Evaluate("c1", now)
	if v.Cooldown != 48*time.Hour {
		t.Fatalf("expected 48h cooldown, got %s", v.Cooldown)
	}
	if v.Reason != "abuse suspension" {
		t.Fatalf("unexpected reason: %q", v.Reason)
	}
}

func TestSingleCancellationNoCooldown(t *testing.T) {
	l := NewLimiter()
	now := time.Now()
	l.RecordCancellation("c1", now)

	if v := l.Evaluate("c1", now); v.Cooldown != 0 {
		t.Fatalf("expected no cooldown, got %s", v.Cooldown)
	}
}

func TestTierThresholds(t *testing.T) {
	cases := []struct {
		name   string
		backs  []time.Duration // seconds before now
		want   time.Duration
		reason string
	}{
		{"three_in_17min", []time.Duration{1000, 600, 100}, 5 * time.Minute, "frequent cancellation"},
		{"four_in_22min", []time.Duration{1300, 1000, 600, 100}, 10 * time.Minute, "repeated cancellation"},
		{"three_spread_out", []time.Duration{2300, 1900, 100}, 0, ""},
		{"two_recent", []time.Duration{200, 100}, 0, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := NewLimiter()
			now := time.Now()
			for _, back := range tc.backs {
				l.RecordCancellation("c1", now.Add(-back*time.Second))
			}
			v := l.Evaluate("c1", now)
			if v.Cooldown != tc.want {
				t.Fatalf("cooldown = %s, want %s", v.Cooldown, tc.want)
			}
			if v.Reason != tc.reason {
				t.Fatalf("reason = %q, want %q", v.Reason, tc.reason)
			}
		})
	}
}

func TestAllowGatesDuringCooldown(t *testing.T) {
	l := NewLimiter()
	now := time.Now()

	// First attempt passes and records the attempt time.
	if ok, _, _ := l.Allow("c1", now); !ok {
		t.Fatal("first attempt should pass")
	}

	// Three quick cancellations put the customer in the 5-minute tier.
	for _, back := range []time.Duration{900, 500, 100} {
		l.RecordCancellation("c1", now.Add(-back*time.Second))
	}

	ok, wait, reason := l.Allow("c1", now.Add(2*time.Minute))
	if ok {
		t.Fatal("attempt inside cooldown should be refused")
	}
	if got := RemainingMinutes(wait); got != 3 {
		t.Fatalf("remaining = %d minutes, want 3", got)
	}
	if reason != "frequent cancellation" {
		t.Fatalf("unexpected reason: %q", reason)
	}

	// After the cooldown expires the attempt proceeds.
	if ok, _, _ := l.Allow("c1", now.Add(6*time.Minute)); !ok {
		t.Fatal("attempt after cooldown should pass")
	}
}

func TestHistoryPrunes(t *testing.T) {
	l := NewLimiter()
	now := time.Now()

	// Old events beyond the 40-minute window must stop counting.
	for _, back := range []time.Duration{3000, 2900, 2800, 2700, 2600} {
		l.RecordCancellation("c1", now.Add(-back*time.Second))
	}
	if v := l.Evaluate("c1", now); v.Cooldown != 0 {
		t.Fatalf("expected pruned history, got cooldown %s", v.Cooldown)
	}
}

func TestRemainingMinutesRoundsUp(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want int
	}{
		{30 * time.Second, 1},
		{time.Minute, 1},
		{61 * time.Second, 2},
		{10 * time.Minute, 10},
		{0, 1}, // minimum is one minute
	}
	for _, tc := range cases {
		if got := RemainingMinutes(tc.d); got != tc.want {
			t.Errorf("RemainingMinutes(%s) = %d, want %d", tc.d, got, tc.want)
		}
	}
}
