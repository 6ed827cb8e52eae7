// README: Retrying sender decorator; bounded attempts with a fixed delay.
package transport

import (
	"context"
	"fmt"
	"log"
	"time"

	"wajba/internal/types"
)

// RetrySender wraps a Sender with a bounded retry for transient failures.
// After the attempts are exhausted the error is surfaced, never retried
// forever.
type RetrySender struct {
	next     Sender
	attempts int
	delay    time.Duration
}

func NewRetrySender(next Sender, attempts int, delay time.Duration) *RetrySender {
	if attempts < 1 {
		attempts = 1
	}
	return &RetrySender{next: next, attempts: attempts, delay: delay}
}

func (r *RetrySender) SendMessage(ctx context.Context, chat types.ID, text string, buttons []Button) (MessageRef, error) {
	var ref MessageRef
	err := r.retry(ctx, "send_message", func() error {
		var err error
		ref, err = r.next.SendMessage(ctx, chat, text, buttons)
		return err
	})
	return ref, err
}

func (r *RetrySender) SendPhoto(ctx context.Context, chat types.ID, photoURL, caption string) (MessageRef, error) {
	var ref MessageRef
	err := r.retry(ctx, "send_photo", func() error {
		var err error
		ref, err = r.next.SendPhoto(ctx, chat, photoURL, caption)
		return err
	})
	return ref, err
}

func (r *RetrySender) SendLocation(ctx context.Context, chat types.ID, p types.Point) (MessageRef, error) {
	var ref MessageRef
	err := r.retry(ctx, "send_location", func() error {
		var err error
		ref, err = r.next.SendLocation(ctx, chat, p)
		return err
	})
	return ref, err
}

func (r *RetrySender) EditMessage(ctx context.Context, chat types.ID, ref MessageRef, text string) error {
	return r.retry(ctx, "edit_message", func() error {
		return r.next.EditMessage(ctx, chat, ref, text)
	})
}

func (r *RetrySender) retry(ctx context.Context, op string, fn func() error) error {
	var last error
	for i := 0; i < r.attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.delay):
			}
		}
		if last = fn(); last == nil {
			return nil
		}
		log.Printf("transport %s attempt %d/%d: %v", op, i+1, r.attempts, last)
	}
	return fmt.Errorf("%w: %s: %v", ErrTransport, op, last)
}
