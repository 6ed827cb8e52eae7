// README: Order registry service; creation, lookup, status monotonicity, daily counter reset.
package registry

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/bsm/redislock"

	"wajba/internal/types"
)

var (
	ErrNotFound   = errors.New("order not found")
	ErrBadRequest = errors.New("bad request")
)

type Service struct {
	store  *Store
	locker *redislock.Client
	now    func() time.Time
}

func NewService(store *Store, locker *redislock.Client) *Service {
	return &Service{store: store, locker: locker, now: time.Now}
}

type CreateCommand struct {
	CustomerID   types.ID
	RestaurantID types.ID
	Cart         []CartItem
	Notes        string
	Address      string
	Geo          *types.Point
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Order, error) {
	if cmd.CustomerID == "" || cmd.RestaurantID == "" || len(cmd.Cart) == 0 {
		return nil, ErrBadRequest
	}

	// A cart must be currency-homogeneous; summing across currencies would
	// produce a silently wrong total.
	total := types.Money{Currency: cmd.Cart[0].Price.Currency}
	for _, item := range cmd.Cart {
		if item.Price.Currency != total.Currency {
			return nil, ErrBadRequest
		}
		total.Amount += item.Price.Amount
	}

	o := &Order{
		ID:           NewToken(),
		CustomerID:   cmd.CustomerID,
		RestaurantID: cmd.RestaurantID,
		Cart:         cmd.Cart,
		Notes:        cmd.Notes,
		TotalPrice:   total,
		Address:      cmd.Address,
		Geo:          cmd.Geo,
		Status:       StatusPending,
		CreatedAt:    s.now(),
	}
	if err := s.store.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Order, error) {
	return s.store.Get(ctx, id)
}

// UpdateStatus is a no-op on orders already in a terminal status.
func (s *Service) UpdateStatus(ctx context.Context, id types.ID, to Status) (bool, error) {
	return s.store.UpdateStatus(ctx, id, to)
}

func (s *Service) ResetSequenceCounters(ctx context.Context) error {
	return s.store.ResetCounters(ctx)
}

const counterResetLockKey = "jobs:counter_reset"

// RunDailyCounterReset fires at local midnight and zeroes every restaurant's
// display counter. The redis lock keeps replicas from running it twice.
func (s *Service) RunDailyCounterReset(ctx context.Context) {
	for {
		now := s.now()
		next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.Local)
		timer := time.NewTimer(next.Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if s.locker != nil {
			lock, err := s.locker.Obtain(ctx, counterResetLockKey, time.Minute, nil)
			if err == redislock.ErrNotObtained {
				continue
			}
			if err != nil {
				log.Printf("counter reset: obtain lock: %v", err)
				continue
			}
			if err := s.store.ResetCounters(ctx); err != nil {
				log.Printf("counter reset: %v", err)
			}
			_ = lock.Release(ctx)
			continue
		}

		if err := s.store.ResetCounters(ctx); err != nil {
			log.Printf("counter reset: %v", err)
		}
	}
}
