// README: Routes decoded operator events to the owning customer's session.
package channel

import (
	"context"
	"errors"
	"log"

	"wajba/internal/ai"
	"wajba/internal/modules/correlate"
	"wajba/internal/modules/registry"
	"wajba/internal/modules/session"
	"wajba/internal/transport"
	"wajba/internal/types"
)

const msgReplyFormat = "الرجاء الرد بعدد الدقائق فقط (0-150)."

type Orders interface {
	Get(ctx context.Context, id types.ID) (*registry.Order, error)
	UpdateStatus(ctx context.Context, id types.ID, to registry.Status) (bool, error)
}

type Sessions interface {
	HandleOperatorEvent(ctx context.Context, customerID types.ID, ev session.Event) error
}

type Correlations interface {
	Resolve(ctx context.Context, messageRef string) (correlate.Entry, error)
	Forget(ctx context.Context, messageRef string) error
}

type Dispatcher struct {
	orders       Orders
	sessions     Sessions
	correl       Correlations
	sender       transport.Sender
	classifier   ai.Classifier // optional
	operatorChat types.ID
}

type DispatcherDeps struct {
	Orders       Orders
	Sessions     Sessions
	Correlations Correlations
	Sender       transport.Sender
	Classifier   ai.Classifier
	OperatorChat types.ID
}

func NewDispatcher(deps DispatcherDeps) *Dispatcher {
	return &Dispatcher{
		orders:       deps.Orders,
		sessions:     deps.Sessions,
		correl:       deps.Correlations,
		sender:       deps.Sender,
		classifier:   deps.Classifier,
		operatorChat: deps.OperatorChat,
	}
}

// HandleChannelPost processes one operator-channel message. The channel
// carries unrelated chatter too, so anything unresolvable is logged and
// dropped rather than answered.
func (d *Dispatcher) HandleChannelPost(ctx context.Context, post transport.ChannelPost) error {
	ev := Decode(post.Text)

	switch ev.(type) {
	case OrderRejected, PreparationStarted, ComplaintCancelled:
		return d.dispatch(ctx, ev)
	}

	// The remaining-time reply protocol sits between complaint and generic
	// priority: a reply to a remembered question must be a bare integer.
	if post.ReplyTo != "" {
		entry, err := d.correl.Resolve(ctx, string(post.ReplyTo))
		if err == nil {
			minutes, ok := ParseRemainingMinutes(post.Text)
			if !ok {
				// Malformed reply is corrected, not silently dropped.
				if _, err := d.sender.SendMessage(ctx, d.operatorChat, msgReplyFormat, nil); err != nil {
					log.Printf("send format correction: %v", err)
				}
				return nil
			}
			if err := d.correl.Forget(ctx, string(post.ReplyTo)); err != nil {
				log.Printf("forget correlation %s: %v", post.ReplyTo, err)
			}
			return d.dispatch(ctx, RemainingTimeAnswer{
				CustomerID: entry.CustomerID,
				OrderID:    entry.OrderID,
				Minutes:    minutes,
			})
		}
		if !errors.Is(err, correlate.ErrNotFound) {
			return err
		}
	}

	switch ev.(type) {
	case GenericStatusUpdate:
		return d.dispatch(ctx, ev)
	}

	if d.classifier != nil {
		if ev, ok := d.classify(ctx, post.Text); ok {
			return d.dispatch(ctx, ev)
		}
	}
	return nil
}

func (d *Dispatcher) dispatch(ctx context.Context, ev Event) error {
	var (
		orderID    types.ID
		toStatus   registry.Status
		sessionEv  session.Event
		mustChange bool
	)

	switch e := ev.(type) {
	case OrderRejected:
		orderID = e.OrderID
		toStatus = registry.StatusOperatorRejected
		sessionEv = session.Event{Kind: session.KindOperatorRejected, OrderID: e.OrderID}
		mustChange = true
	case PreparationStarted:
		orderID = e.OrderID
		toStatus = registry.StatusPreparing
		sessionEv = session.Event{Kind: session.KindPreparationStarted, OrderID: e.OrderID}
		mustChange = true
	case ComplaintCancelled:
		orderID = e.OrderID
		toStatus = registry.StatusReportCancelled
		sessionEv = session.Event{Kind: session.KindComplaintCancelled, OrderID: e.OrderID, Reason: e.Reason}
		mustChange = true
	case RemainingTimeAnswer:
		return d.sessions.HandleOperatorEvent(ctx, e.CustomerID, session.Event{
			Kind:    session.KindRemainingTime,
			OrderID: e.OrderID,
			Minutes: e.Minutes,
		})
	case GenericStatusUpdate:
		orderID = e.OrderID
		sessionEv = session.Event{Kind: session.KindOperatorNote, OrderID: e.OrderID, Text: e.Text}
	default:
		return nil
	}

	o, err := d.orders.Get(ctx, orderID)
	if errors.Is(err, registry.ErrNotFound) {
		// Unrelated chatter may carry token-like strings.
		log.Printf("channel: order %s not found, dropping", orderID)
		return nil
	}
	if err != nil {
		return err
	}

	if toStatus != "" {
		changed, err := d.orders.UpdateStatus(ctx, orderID, toStatus)
		if err != nil {
			return err
		}
		if !changed && mustChange {
			// Terminal statuses are final; a late event is a no-op.
			log.Printf("channel: order %s already terminal, dropping %T", orderID, ev)
			return nil
		}
	}
	return d.sessions.HandleOperatorEvent(ctx, o.CustomerID, sessionEv)
}

// classify asks the optional model for a second opinion on text the regex
// decoder could not place.
func (d *Dispatcher) classify(ctx context.Context, text string) (Event, bool) {
	res, err := d.classifier.ClassifyOperatorText(ctx, text)
	if err != nil {
		log.Printf("channel classifier: %v", err)
		return nil, false
	}
	if res.OrderID == "" {
		return nil, false
	}
	id := types.ID(res.OrderID)
	switch res.Kind {
	case "rejected":
		return OrderRejected{OrderID: id}, true
	case "preparing":
		return PreparationStarted{OrderID: id}, true
	case "complaint_cancelled":
		return ComplaintCancelled{OrderID: id, Reason: res.Reason}, true
	case "status_update":
		return GenericStatusUpdate{OrderID: id, Text: text}, true
	}
	return nil, false
}
