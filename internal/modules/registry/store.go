// README: Order store backed by PostgreSQL.
package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

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

// Create assigns the restaurant's next sequence number and persists the
// order in one transaction, so concurrent orders to the same restaurant
// never produce gaps or duplicate numbers.
func (s *Store) Create(ctx context.Context, o *Order) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		INSERT INTO restaurant_counters (restaurant_id, seq)
		VALUES ($1, 1)
		ON CONFLICT (restaurant_id)
		DO UPDATE SET seq = restaurant_counters.seq + 1
		RETURNING seq`,
		string(o.RestaurantID),
	)
	if err := row.Scan(&o.SequenceNo); err != nil {
		return err
	}

	cart, err := json.Marshal(o.Cart)
	if err != nil {
		return err
	}
	var lat, lng *float64
	if o.Geo != nil {
		lat, lng = &o.Geo.Lat, &o.Geo.Lng
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO orders (
			id, seq_no, customer_id, restaurant_id,
			cart, notes, total_price, currency,
			address, geo_lat, geo_lng, status, created_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8,
			$9, $10, $11, $12, $13
		)`,
		string(o.ID),
		o.SequenceNo,
		string(o.CustomerID),
		string(o.RestaurantID),
		cart,
		o.Notes,
		o.TotalPrice.Amount,
		o.TotalPrice.Currency,
		o.Address,
		lat, lng,
		string(o.Status),
		o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Order, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, seq_no, customer_id, restaurant_id,
		       cart, notes, total_price, currency,
		       address, geo_lat, geo_lng, status, created_at
		FROM orders
		WHERE id = $1`, string(id),
	)

	var o Order
	var cart []byte
	var lat, lng sql.NullFloat64
	err := row.Scan(
		&o.ID, &o.SequenceNo, &o.CustomerID, &o.RestaurantID,
		&cart, &o.Notes, &o.TotalPrice.Amount, &o.TotalPrice.Currency,
		&o.Address, &lat, &lng, &o.Status, &o.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(cart, &o.Cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if lat.Valid && lng.Valid {
		o.Geo = &types.Point{Lat: lat.Float64, Lng: lng.Float64}
	}
	return &o, nil
}

// UpdateStatus moves an order to the given status unless it already sits in
// a terminal status. Returns false when nothing changed.
func (s *Store) UpdateStatus(ctx context.Context, id types.ID, to Status) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE orders
		SET status = $1
		WHERE id = $2
		  AND status NOT IN ('delivered','customer_cancelled','operator_rejected','report_cancelled')`,
		string(to),
		string(id),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ResetCounters zeroes every restaurant's display counter; order rows are
// untouched.
func (s *Store) ResetCounters(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `UPDATE restaurant_counters SET seq = 0`)
	return err
}
