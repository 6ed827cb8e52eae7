// README: Rating aggregate store backed by PostgreSQL.
package rating

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wajba/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Add increments the running count and sum in a single upsert so that
// concurrent ratings never lose updates.
func (s *Store) Add(ctx context.Context, restaurantID types.ID, stars int) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO rating_aggregates (restaurant_id, total_ratings, total_score)
		VALUES ($1, 1, $2)
		ON CONFLICT (restaurant_id)
		DO UPDATE SET total_ratings = rating_aggregates.total_ratings + 1,
		              total_score = rating_aggregates.total_score + EXCLUDED.total_score`,
		string(restaurantID),
		stars,
	)
	return err
}

// Totals returns (0, 0) for restaurants that have never been rated.
func (s *Store) Totals(ctx context.Context, restaurantID types.ID) (count, score int64, err error) {
	row := s.db.QueryRow(ctx, `
		SELECT total_ratings, total_score
		FROM rating_aggregates
		WHERE restaurant_id = $1`, string(restaurantID),
	)
	err = row.Scan(&count, &score)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, nil
	}
	return count, score, err
}
