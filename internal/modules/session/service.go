// README: Session service; owns the per-customer conversation state machine.
package session

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"wajba/internal/modules/catalog"
	"wajba/internal/modules/correlate"
	"wajba/internal/modules/registry"
	"wajba/internal/transport"
	"wajba/internal/types"
)

type Orders interface {
	Create(ctx context.Context, cmd registry.CreateCommand) (*registry.Order, error)
	Get(ctx context.Context, id types.ID) (*registry.Order, error)
	UpdateStatus(ctx context.Context, id types.ID, to registry.Status) (bool, error)
}

type Menu interface {
	Provinces(ctx context.Context) ([]catalog.Province, error)
	Cities(ctx context.Context, provinceID types.ID) ([]catalog.City, error)
	Restaurants(ctx context.Context, cityID types.ID) ([]catalog.Restaurant, error)
	Restaurant(ctx context.Context, id types.ID) (*catalog.Restaurant, error)
	Categories(ctx context.Context, restaurantID types.ID) ([]catalog.Category, error)
	Meals(ctx context.Context, categoryID types.ID) ([]catalog.Meal, error)
	Meal(ctx context.Context, id types.ID) (*catalog.Meal, error)
}

type Gate interface {
	Allow(customerID types.ID, now time.Time) (bool, time.Duration, string)
	RecordCancellation(customerID types.ID, at time.Time)
}

type Ratings interface {
	Submit(ctx context.Context, restaurantID types.ID, stars int) error
}

type Correlations interface {
	Remember(ctx context.Context, messageRef string, e correlate.Entry) error
}

type Geocoder interface {
	ReverseGeocode(ctx context.Context, p types.Point) (string, error)
}

type Deps struct {
	Orders       Orders
	Menu         Menu
	Gate         Gate
	Ratings      Ratings
	Correlations Correlations
	Sender       transport.Sender
	Geocoder     Geocoder // optional
	OperatorChat types.ID
}

type Service struct {
	mu       sync.Mutex
	sessions map[types.ID]*Session

	orders       Orders
	menu         Menu
	gate         Gate
	ratings      Ratings
	correl       Correlations
	sender       transport.Sender
	geocoder     Geocoder
	operatorChat types.ID
	now          func() time.Time
}

func NewService(deps Deps) *Service {
	return &Service{
		sessions:     make(map[types.ID]*Session),
		orders:       deps.Orders,
		menu:         deps.Menu,
		gate:         deps.Gate,
		ratings:      deps.Ratings,
		correl:       deps.Correlations,
		sender:       deps.Sender,
		geocoder:     deps.Geocoder,
		operatorChat: deps.OperatorChat,
		now:          time.Now,
	}
}

// session returns the customer's session, creating it on first contact.
// Exactly one session exists per customer.
func (s *Service) session(customerID types.ID) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[customerID]
	if !ok {
		sess = &Session{CustomerID: customerID, State: StateNew}
		s.sessions[customerID] = sess
	}
	return sess
}

// MarkSensitiveEdit is called by the admin collaborator while a price/size
// edit is pending for this customer; top-level entry points refuse until
// it is released.
func (s *Service) MarkSensitiveEdit(customerID types.ID, pending bool) {
	sess := s.session(customerID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.Scratch.SensitiveEdit = pending
}

// Handle processes one inbound customer update. Unrecognized input in a
// state gets a clarifying reply and the state does not change.
func (s *Service) Handle(ctx context.Context, up transport.Update) error {
	ev := fromUpdate(up)
	sess := s.session(up.ChatID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if ev.Kind == KindText && strings.TrimSpace(ev.Text) == "/start" {
		return s.restart(ctx, sess)
	}
	if sess.State == StateNew {
		return s.begin(ctx, sess)
	}
	return s.apply(ctx, sess, ev)
}

// HandleOperatorEvent delivers a decoded operator-channel event to the
// customer's session.
func (s *Service) HandleOperatorEvent(ctx context.Context, customerID types.ID, ev Event) error {
	sess := s.session(customerID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.apply(ctx, sess, ev)
}

func (s *Service) apply(ctx context.Context, sess *Session, ev Event) error {
	// An operator event about an order this session no longer tracks (the
	// customer restarted and ordered again) must not touch the current
	// order's conversation.
	if isOperatorKind(ev.Kind) && ev.OrderID != "" && ev.OrderID != sess.Scratch.OrderID {
		log.Printf("session %s: dropping operator event kind=%d for order %s, current order %q", sess.CustomerID, ev.Kind, ev.OrderID, sess.Scratch.OrderID)
		return nil
	}

	act, ok := transitions[sess.State][ev.Kind]
	if !ok {
		if isOperatorKind(ev.Kind) {
			log.Printf("session %s: dropping operator event kind=%d in state %s", sess.CustomerID, ev.Kind, sess.State)
			return nil
		}
		s.say(ctx, sess.CustomerID, msgUnrecognized, nil)
		return nil
	}
	next, err := act(s, ctx, sess, ev)
	if err != nil {
		// The in-flight action is aborted without advancing the state so
		// the customer can retry cleanly.
		log.Printf("session %s state %s: %v", sess.CustomerID, sess.State, err)
		s.say(ctx, sess.CustomerID, msgSendFailure, nil)
		return err
	}
	sess.State = next
	return nil
}

func (s *Service) restart(ctx context.Context, sess *Session) error {
	if sess.Scratch.SensitiveEdit {
		s.say(ctx, sess.CustomerID, msgEditPending, nil)
		return nil
	}
	if !sess.Scratch.Registered {
		return s.begin(ctx, sess)
	}
	sess.clearOrderScratch(false)
	s.say(ctx, sess.CustomerID, msgMainMenu, mainMenuButtons())
	sess.State = StateMainMenu
	return nil
}

func (s *Service) begin(ctx context.Context, sess *Session) error {
	if sess.Scratch.SensitiveEdit {
		s.say(ctx, sess.CustomerID, msgEditPending, nil)
		return nil
	}
	s.say(ctx, sess.CustomerID, msgWelcome, nil)
	sess.State = StateAskName
	return nil
}

// say sends to the customer and logs delivery failures; conversation
// prompts are not worth failing a transition over.
func (s *Service) say(ctx context.Context, chat types.ID, text string, buttons []transport.Button) {
	if _, err := s.sender.SendMessage(ctx, chat, text, buttons); err != nil {
		log.Printf("send to %s: %v", chat, err)
	}
}

func fromUpdate(up transport.Update) Event {
	switch {
	case up.Callback != "":
		return Event{Kind: KindCallback, Data: up.Callback}
	case up.Location != nil:
		return Event{Kind: KindLocation, Point: up.Location}
	case up.PhotoURL != "":
		return Event{Kind: KindPhoto, Text: up.PhotoURL}
	default:
		return Event{Kind: KindText, Text: up.Text}
	}
}

func isOperatorKind(k Kind) bool {
	switch k {
	case KindOperatorRejected, KindPreparationStarted, KindComplaintCancelled, KindRemainingTime, KindOperatorNote:
		return true
	}
	return false
}
