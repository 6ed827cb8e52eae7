// README: Read-only catalog queries backed by PostgreSQL; administration lives elsewhere.
package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wajba/internal/types"
)

var ErrNotFound = errors.New("catalog row not found")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Provinces(ctx context.Context) ([]Province, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name FROM provinces ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Province
	for rows.Next() {
		var p Province
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) Cities(ctx context.Context, provinceID types.ID) ([]City, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, province_id, name FROM cities
		WHERE province_id = $1 ORDER BY name`, string(provinceID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []City
	for rows.Next() {
		var c City
		if err := rows.Scan(&c.ID, &c.ProvinceID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Restaurants(ctx context.Context, cityID types.ID) ([]Restaurant, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, city_id, name FROM restaurants
		WHERE city_id = $1 ORDER BY name`, string(cityID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Restaurant
	for rows.Next() {
		var r Restaurant
		if err := rows.Scan(&r.ID, &r.CityID, &r.Name); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Restaurant(ctx context.Context, id types.ID) (*Restaurant, error) {
	row := s.db.QueryRow(ctx, `SELECT id, city_id, name FROM restaurants WHERE id = $1`, string(id))
	var r Restaurant
	err := row.Scan(&r.ID, &r.CityID, &r.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) Categories(ctx context.Context, restaurantID types.ID) ([]Category, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, restaurant_id, name FROM categories
		WHERE restaurant_id = $1 ORDER BY name`, string(restaurantID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.RestaurantID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Meals(ctx context.Context, categoryID types.ID) ([]Meal, error) {
	rows, err := s.db.Query(ctx, `
		SELECT m.id, m.category_id, m.name, v.label, v.price, v.currency
		FROM meals m
		JOIN meal_sizes v ON v.meal_id = m.id
		WHERE m.category_id = $1
		ORDER BY m.name, v.price`, string(categoryID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[types.ID]*Meal)
	var order []types.ID
	for rows.Next() {
		var (
			id, catID types.ID
			name      string
			size      MealSize
		)
		if err := rows.Scan(&id, &catID, &name, &size.Label, &size.Price.Amount, &size.Price.Currency); err != nil {
			return nil, err
		}
		m, ok := byID[id]
		if !ok {
			m = &Meal{ID: id, CategoryID: catID, Name: name}
			byID[id] = m
			order = append(order, id)
		}
		m.Sizes = append(m.Sizes, size)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]Meal, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out, nil
}

func (s *Store) Meal(ctx context.Context, id types.ID) (*Meal, error) {
	rows, err := s.db.Query(ctx, `
		SELECT m.id, m.category_id, m.name, v.label, v.price, v.currency
		FROM meals m
		JOIN meal_sizes v ON v.meal_id = m.id
		WHERE m.id = $1
		ORDER BY v.price`, string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var m *Meal
	for rows.Next() {
		var (
			mealID, catID types.ID
			name          string
			size          MealSize
		)
		if err := rows.Scan(&mealID, &catID, &name, &size.Label, &size.Price.Amount, &size.Price.Currency); err != nil {
			return nil, err
		}
		if m == nil {
			m = &Meal{ID: mealID, CategoryID: catID, Name: name}
		}
		m.Sizes = append(m.Sizes, size)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNotFound
	}
	return m, nil
}
