// README: Common value objects shared across modules.
package types

// ID identifies customers, restaurants, and catalog rows. Customer IDs are
// the chat platform's numeric ids rendered as strings.
type ID string

type Point struct {
	Lat float64
	Lng float64
}

type Money struct {
	Amount   int64
	Currency string
}
