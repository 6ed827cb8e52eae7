// README: Abuse-rate limiter; cooldown tiers from recent cancellation frequency.
package throttle

import (
	"sync"
	"time"

	"wajba/internal/types"
)

// Tiers are checked most severe first; the first match wins.
var tiers = []Tier{
	{Window: 2400 * time.Second, Threshold: 5, Cooldown: 48 * time.Hour, Reason: "abuse suspension"},
	{Window: 1320 * time.Second, Threshold: 4, Cooldown: 10 * time.Minute, Reason: "repeated cancellation"},
	{Window: 1020 * time.Second, Threshold: 3, Cooldown: 5 * time.Minute, Reason: "frequent cancellation"},
}

// maxWindow bounds how long a cancellation event stays relevant.
const maxWindow = 2400 * time.Second

type Tier struct {
	Window    time.Duration
	Threshold int
	Cooldown  time.Duration
	Reason    string
}

type Verdict struct {
	Cooldown time.Duration
	Reason   string
}

// Limiter keeps per-customer cancellation history in process memory; the
// history is append-only and self-prunes past the largest lookback window.
type Limiter struct {
	mu          sync.Mutex
	history     map[types.ID][]time.Time
	lastAttempt map[types.ID]time.Time
}

func NewLimiter() *Limiter {
	return &Limiter{
		history:     make(map[types.ID][]time.Time),
		lastAttempt: make(map[types.ID]time.Time),
	}
}

// RecordCancellation appends a customer-confirmed cancellation. Operator
// rejections never call this.
func (l *Limiter) RecordCancellation(customerID types.ID, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.history[customerID] = prune(append(l.history[customerID], at), at)
}

// Evaluate returns the cooldown tier for the customer's recent history,
// most severe tier first.
func (l *Limiter) Evaluate(customerID types.ID, now time.Time) Verdict {
	l.mu.Lock()
	events := prune(l.history[customerID], now)
	l.history[customerID] = events
	l.mu.Unlock()

	for _, tier := range tiers {
		n := 0
		for _, e := range events {
			if now.Sub(e) <= tier.Window {
				n++
			}
		}
		if n >= tier.Threshold {
			return Verdict{Cooldown: tier.Cooldown, Reason: tier.Reason}
		}
	}
	return Verdict{}
}

// Allow gates the fast-order entry point. While the last attempt is inside
// the active cooldown the action is refused with the remaining wait; on a
// pass the attempt time is updated.
func (l *Limiter) Allow(customerID types.ID, now time.Time) (bool, time.Duration, string) {
	v := l.Evaluate(customerID, now)

	l.mu.Lock()
	defer l.mu.Unlock()
	if v.Cooldown > 0 {
		last, ok := l.lastAttempt[customerID]
		if ok && now.Sub(last) < v.Cooldown {
			return false, v.Cooldown - now.Sub(last), v.Reason
		}
	}
	l.lastAttempt[customerID] = now
	return true, 0, ""
}

// RemainingMinutes renders a wait for user-facing copy, rounded up to whole
// minutes with a minimum of 1.
func RemainingMinutes(d time.Duration) int {
	m := int((d + time.Minute - 1) / time.Minute)
	if m < 1 {
		m = 1
	}
	return m
}

func prune(events []time.Time, now time.Time) []time.Time {
	cut := 0
	for cut < len(events) && now.Sub(events[cut]) > maxWindow {
		cut++
	}
	return events[cut:]
}
