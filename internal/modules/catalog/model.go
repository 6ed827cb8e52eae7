// README: Catalog read models (provinces, cities, restaurants, meals).
package catalog

import "wajba/internal/types"

type Province struct {
	ID   types.ID
	Name string
}

type City struct {
	ID         types.ID
	ProvinceID types.ID
	Name       string
}

type Restaurant struct {
	ID     types.ID
	CityID types.ID
	Name   string
}

type Category struct {
	ID           types.ID
	RestaurantID types.ID
	Name         string
}

// MealSize is one orderable variant of a meal ("small/large" etc.) with its
// own price.
type MealSize struct {
	Label string
	Price types.Money
}

type Meal struct {
	ID         types.ID
	CategoryID types.ID
	Name       string
	Sizes      []MealSize
}
