// README: Session events; customer input and operator-side notifications as one typed stream.
package session

import "wajba/internal/types"

type Kind int

const (
	// customer input
	KindText Kind = iota
	KindCallback
	KindLocation
	KindPhoto
	// operator-side events, delivered by the channel dispatcher
	KindOperatorRejected
	KindPreparationStarted
	KindComplaintCancelled
	KindRemainingTime
	KindOperatorNote
)

type Event struct {
	Kind Kind
	Text string
	Data string

	// OrderID names the order an operator-side event concerns; events for
	// an order the session no longer tracks are dropped.
	OrderID types.ID

	Point   *types.Point
	Minutes int
	Reason  string
}
