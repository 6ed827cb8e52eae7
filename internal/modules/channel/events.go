// README: Typed operator events; the real interface between free text and the state machine.
package channel

import "wajba/internal/types"

// Event is the typed union produced by the decoder. The regex layer is an
// adapter; everything downstream works on these.
type Event interface{ isEvent() }

type OrderRejected struct {
	OrderID types.ID
}

type PreparationStarted struct {
	OrderID types.ID
}

type ComplaintCancelled struct {
	OrderID types.ID
	Reason  string
}

type RemainingTimeAnswer struct {
	CustomerID types.ID
	OrderID    types.ID
	Minutes    int
}

type GenericStatusUpdate struct {
	OrderID types.ID
	Text    string
}

type Unrecognized struct{}

func (OrderRejected) isEvent()       {}
func (PreparationStarted) isEvent()  {}
func (ComplaintCancelled) isEvent()  {}
func (RemainingTimeAnswer) isEvent() {}
func (GenericStatusUpdate) isEvent() {}
func (Unrecognized) isEvent()        {}
