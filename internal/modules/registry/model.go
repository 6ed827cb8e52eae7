// README: Order aggregate and status definitions.
package registry

import (
	"time"

	"wajba/internal/types"
)

type Status string

const (
	StatusPending           Status = "pending"
	StatusPreparing         Status = "preparing"
	StatusDelivered         Status = "delivered"
	StatusCustomerCancelled Status = "customer_cancelled"
	StatusOperatorRejected  Status = "operator_rejected"
	StatusReportCancelled   Status = "report_cancelled"
)

// TerminalStatuses have no outgoing transitions; UpdateStatus refuses to
// move an order out of them.
var TerminalStatuses = []Status{
	StatusDelivered,
	StatusCustomerCancelled,
	StatusOperatorRejected,
	StatusReportCancelled,
}

func IsTerminal(s Status) bool {
	for _, t := range TerminalStatuses {
		if s == t {
			return true
		}
	}
	return false
}

type CartItem struct {
	MealID types.ID    `json:"meal_id"`
	Name   string      `json:"name"`
	Size   string      `json:"size"`
	Price  types.Money `json:"price"`
}

type Order struct {
	ID           types.ID
	SequenceNo   int
	CustomerID   types.ID
	RestaurantID types.ID
	Cart         []CartItem
	Notes        string
	TotalPrice   types.Money
	Address      string
	Geo          *types.Point
	Status       Status
	CreatedAt    time.Time
}
