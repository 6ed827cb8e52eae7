// README: Session model; per-customer conversation state and typed scratch fields.
package session

import (
	"sync"
	"time"

	"wajba/internal/modules/registry"
	"wajba/internal/types"
)

type State string

const (
	StateNew State = "new"

	// registration
	StateAskName     State = "ask_name"
	StateAskPhone    State = "ask_phone"
	StateAskCode     State = "ask_code"
	StateAskProvince State = "ask_province"
	StateAskCity     State = "ask_city"
	StateAskLocation State = "ask_location"

	// ordering
	StateMainMenu           State = "main_menu"
	StateChoosingRestaurant State = "choosing_restaurant"
	StateBrowsingMenu       State = "browsing_menu"
	StateBuildingCart       State = "building_cart"
	StateAddingNotes        State = "adding_notes"
	StateConfirmAddress     State = "confirm_address"
	StateConfirmOrder       State = "confirm_order"

	// post-order
	StateAwaitingPreparation State = "awaiting_preparation"
	StateAwaitingDelivery    State = "awaiting_delivery"
	StateCancelFlow          State = "cancel_flow"
	StateRatingFlow          State = "rating_flow"
)

// Scratch holds everything a conversation needs mid-flow. Registration
// fields survive order resets; order-scoped fields are cleared on every
// terminal transition.
type Scratch struct {
	// registration, kept across orders
	Name       string
	Phone      string
	ProvinceID types.ID
	CityID     types.ID
	Address    string
	Geo        *types.Point
	Registered bool
	VerifyCode string

	// order-scoped
	RestaurantID   types.ID
	RestaurantName string
	PendingMealID  types.ID
	Cart           []registry.CartItem
	Notes          string
	OrderID        types.ID
	OrderSeq       int
	OrderCreatedAt time.Time
	ReminderUsed   bool
	LastRemindAt   time.Time

	// set by the admin collaborator while a sensitive edit is pending;
	// blocks top-level entry points until released
	SensitiveEdit bool
}

type Session struct {
	mu         sync.Mutex
	CustomerID types.ID
	State      State
	Scratch    Scratch
}

// clearOrderScratch resets order-scoped fields after a terminal transition.
// Registration data stays for the next order. keepRestaurant preserves the
// restaurant reference so the rating sub-flow can still attribute stars.
func (s *Session) clearOrderScratch(keepRestaurant bool) {
	if !keepRestaurant {
		s.Scratch.RestaurantID = ""
		s.Scratch.RestaurantName = ""
	}
	s.Scratch.PendingMealID = ""
	s.Scratch.Cart = nil
	s.Scratch.Notes = ""
	s.Scratch.OrderID = ""
	s.Scratch.OrderSeq = 0
	s.Scratch.OrderCreatedAt = time.Time{}
	s.Scratch.ReminderUsed = false
	s.Scratch.LastRemindAt = time.Time{}
}
