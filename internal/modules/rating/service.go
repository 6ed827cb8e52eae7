// README: Rating aggregator; running count/sum per restaurant, average derived.
package rating

import (
	"context"
	"errors"

	"wajba/internal/types"
)

var ErrInvalidStars = errors.New("stars must be between 1 and 5")

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) Submit(ctx context.Context, restaurantID types.ID, stars int) error {
	if stars < 1 || stars > 5 {
		return ErrInvalidStars
	}
	return s.store.Add(ctx, restaurantID, stars)
}

// Average is derived from the running totals, never stored. A restaurant
// with no ratings has average 0.
func (s *Service) Average(ctx context.Context, restaurantID types.ID) (float64, error) {
	count, score, err := s.store.Totals(ctx, restaurantID)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}
	return float64(score) / float64(count), nil
}
