// README: Explicit transition table (state, event kind) -> action; guards enforced here, not in copy.
package session

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"wajba/internal/modules/catalog"
	"wajba/internal/modules/correlate"
	"wajba/internal/modules/registry"
	"wajba/internal/modules/throttle"
	"wajba/internal/transport"
	"wajba/internal/types"
)

// Domain time windows.
const (
	// direct customer cancel allowed only before this
	cancelWindow = 10 * time.Minute
	// complaint report allowed only after this
	reportAfter = 30 * time.Minute
	// sliding cooldown of the second reminder action
	urgeCooldown = 15 * time.Minute
)

type action func(s *Service, ctx context.Context, sess *Session, ev Event) (State, error)

// transitions is the single place conversation flow is defined. A missing
// (state, kind) pair means the input is rejected with a clarifying message
// and the state does not change.
var transitions = map[State]map[Kind]action{
	StateAskName:  {KindText: (*Service).regName},
	StateAskPhone: {KindText: (*Service).regPhone},
	StateAskCode:  {KindText: (*Service).regCode},
	StateAskProvince: {
		KindCallback: (*Service).regProvince,
	},
	StateAskCity: {
		KindCallback: (*Service).regCity,
	},
	StateAskLocation: {
		KindLocation: (*Service).regLocationPin,
		KindText:     (*Service).regAddressText,
	},
	StateMainMenu: {
		KindCallback: (*Service).menuSelect,
	},
	StateChoosingRestaurant: {
		KindCallback: (*Service).pickRestaurant,
	},
	StateBrowsingMenu: {
		KindCallback: (*Service).browseSelect,
	},
	StateBuildingCart: {
		KindCallback: (*Service).cartSelect,
	},
	StateAddingNotes: {
		KindText:     (*Service).notesText,
		KindCallback: (*Service).notesSkip,
	},
	StateConfirmAddress: {
		KindCallback: (*Service).addrKeep,
		KindLocation: (*Service).addrPin,
		KindText:     (*Service).addrText,
	},
	StateConfirmOrder: {
		KindCallback: (*Service).confirmSelect,
	},
	StateAwaitingPreparation: {
		KindCallback:           (*Service).prepSelect,
		KindOperatorRejected:   (*Service).opRejected,
		KindPreparationStarted: (*Service).opPreparing,
		KindComplaintCancelled: (*Service).opComplaint,
		KindRemainingTime:      (*Service).opRemaining,
		KindOperatorNote:       (*Service).opNote,
	},
	StateAwaitingDelivery: {
		KindCallback:           (*Service).deliverySelect,
		KindOperatorRejected:   (*Service).opRejected,
		KindComplaintCancelled: (*Service).opComplaint,
		KindRemainingTime:      (*Service).opRemaining,
		KindOperatorNote:       (*Service).opNote,
	},
	StateCancelFlow: {
		KindCallback:           (*Service).cancelDecide,
		KindOperatorRejected:   (*Service).opRejected,
		KindPreparationStarted: (*Service).opPreparing,
		KindComplaintCancelled: (*Service).opComplaint,
		KindRemainingTime:      (*Service).opRemaining,
		KindOperatorNote:       (*Service).opNote,
	},
	StateRatingFlow: {
		KindCallback: (*Service).ratingSelect,
	},
}

// --- registration ---

func (s *Service) regName(ctx context.Context, sess *Session, ev Event) (State, error) {
	name := strings.TrimSpace(ev.Text)
	if name == "" {
		s.say(ctx, sess.CustomerID, msgUnrecognized, nil)
		return sess.State, nil
	}
	sess.Scratch.Name = name
	s.say(ctx, sess.CustomerID, msgAskPhone, nil)
	return StateAskPhone, nil
}

func (s *Service) regPhone(ctx context.Context, sess *Session, ev Event) (State, error) {
	phone := strings.NewReplacer(" ", "", "-", "", "+", "").Replace(strings.TrimSpace(ev.Text))
	if !isDigits(phone) || len(phone) < 9 || len(phone) > 15 {
		s.say(ctx, sess.CustomerID, msgPhoneInvalid, nil)
		return sess.State, nil
	}
	sess.Scratch.Phone = phone
	sess.Scratch.VerifyCode = registry.NewDigitCode(4)
	s.say(ctx, sess.CustomerID, "رمز التحقق: "+sess.Scratch.VerifyCode, nil)
	s.say(ctx, sess.CustomerID, msgAskCode, nil)
	return StateAskCode, nil
}

func (s *Service) regCode(ctx context.Context, sess *Session, ev Event) (State, error) {
	if strings.TrimSpace(ev.Text) != sess.Scratch.VerifyCode {
		s.say(ctx, sess.CustomerID, msgCodeWrong, nil)
		return sess.State, nil
	}
	provinces, err := s.menu.Provinces(ctx)
	if err != nil {
		return sess.State, err
	}
	buttons := make([]transport.Button, len(provinces))
	for i, p := range provinces {
		buttons[i] = transport.Button{Label: p.Name, Data: "prov:" + string(p.ID)}
	}
	s.say(ctx, sess.CustomerID, msgAskProvince, buttons)
	return StateAskProvince, nil
}

func (s *Service) regProvince(ctx context.Context, sess *Session, ev Event) (State, error) {
	id, ok := callbackArg(ev.Data, "prov")
	if !ok {
		s.say(ctx, sess.CustomerID, msgUnrecognized, nil)
		return sess.State, nil
	}
	sess.Scratch.ProvinceID = types.ID(id)
	cities, err := s.menu.Cities(ctx, sess.Scratch.ProvinceID)
	if err != nil {
		return sess.State, err
	}
	buttons := make([]transport.Button, len(cities))
	for i, c := range cities {
		buttons[i] = transport.Button{Label: c.Name, Data: "city:" + string(c.ID)}
	}
	s.say(ctx, sess.CustomerID, msgAskCity, buttons)
	return StateAskCity, nil
}

func (s *Service) regCity(ctx context.Context, sess *Session, ev Event) (State, error) {
	id, ok := callbackArg(ev.Data, "city")
	if !ok {
		s.say(ctx, sess.CustomerID, msgUnrecognized, nil)
		return sess.State, nil
	}
	sess.Scratch.CityID = types.ID(id)
	s.say(ctx, sess.CustomerID, msgAskLocation, nil)
	return StateAskLocation, nil
}

func (s *Service) regLocationPin(ctx context.Context, sess *Session, ev Event) (State, error) {
	sess.Scratch.Geo = ev.Point
	sess.Scratch.Address = s.resolveAddress(ctx, *ev.Point)
	sess.Scratch.Registered = true
	s.say(ctx, sess.CustomerID, msgMainMenu, mainMenuButtons())
	return StateMainMenu, nil
}

func (s *Service) regAddressText(ctx context.Context, sess *Session, ev Event) (State, error) {
	addr := strings.TrimSpace(ev.Text)
	if addr == "" {
		s.say(ctx, sess.CustomerID, msgUnrecognized, nil)
		return sess.State, nil
	}
	sess.Scratch.Address = addr
	sess.Scratch.Registered = true
	s.say(ctx, sess.CustomerID, msgMainMenu, mainMenuButtons())
	return StateMainMenu, nil
}

// --- ordering ---

func (s *Service) menuSelect(ctx context.Context, sess *Session, ev Event) (State, error) {
	if ev.Data != "order" {
		s.say(ctx, sess.CustomerID, msgUnrecognized, nil)
		return sess.State, nil
	}
	ok, wait, reason := s.gate.Allow(sess.CustomerID, s.now())
	if !ok {
		s.say(ctx, sess.CustomerID, fmt.Sprintf(msgCooldown, reason, throttle.RemainingMinutes(wait)), nil)
		return sess.State, nil
	}
	restaurants, err := s.menu.Restaurants(ctx, sess.Scratch.CityID)
	if err != nil {
		return sess.State, err
	}
	buttons := make([]transport.Button, len(restaurants))
	for i, r := range restaurants {
		buttons[i] = transport.Button{Label: r.Name, Data: "rest:" + string(r.ID)}
	}
	s.say(ctx, sess.CustomerID, msgChooseRest, buttons)
	return StateChoosingRestaurant, nil
}

func (s *Service) pickRestaurant(ctx context.Context, sess *Session, ev Event) (State, error) {
	id, ok := callbackArg(ev.Data, "rest")
	if !ok {
		s.say(ctx, sess.CustomerID, msgUnrecognized, nil)
		return sess.State, nil
	}
	r, err := s.menu.Restaurant(ctx, types.ID(id))
	if err != nil {
		return sess.State, err
	}
	sess.Scratch.RestaurantID = r.ID
	sess.Scratch.RestaurantName = r.Name
	return s.showCategories(ctx, sess)
}

func (s *Service) showCategories(ctx context.Context, sess *Session) (State, error) {
	categories, err := s.menu.Categories(ctx, sess.Scratch.RestaurantID)
	if err != nil {
		return sess.State, err
	}
	buttons := make([]transport.Button, len(categories))
	for i, c := range categories {
		buttons[i] = transport.Button{Label: c.Name, Data: "cat:" + string(c.ID)}
	}
	s.say(ctx, sess.CustomerID, msgChooseCategory, buttons)
	return StateBrowsingMenu, nil
}

func (s *Service) browseSelect(ctx context.Context, sess *Session, ev Event) (State, error) {
	switch {
	case strings.HasPrefix(ev.Data, "cat:"):
		id, _ := callbackArg(ev.Data, "cat")
		meals, err := s.menu.Meals(ctx, types.ID(id))
		if err != nil {
			return sess.State, err
		}
		buttons := make([]transport.Button, len(meals))
		for i, m := range meals {
			buttons[i] = transport.Button{Label: m.Name, Data: "meal:" + string(m.ID)}
		}
		s.say(ctx, sess.CustomerID, msgChooseMeal, buttons)
		return sess.State, nil

	case strings.HasPrefix(ev.Data, "meal:"):
		id, _ := callbackArg(ev.Data, "meal")
		m, err := s.menu.Meal(ctx, types.ID(id))
		if err != nil {
			return sess.State, err
		}
		if len(m.Sizes) == 1 {
			return s.addToCart(ctx, sess, m.Name, m.ID, m.Sizes[0])
		}
		buttons := make([]transport.Button, len(m.Sizes))
		for i, size := range m.Sizes {
			buttons[i] = transport.Button{
				Label: fmt.Sprintf("%s — %s", size.Label, fmtMoney(size.Price)),
				Data:  fmt.Sprintf("size:%s:%d", m.ID, i),
			}
		}
		s.say(ctx, sess.CustomerID, msgChooseSize, buttons)
		return sess.State, nil

	case strings.HasPrefix(ev.Data, "size:"):
		parts := strings.SplitN(ev.Data, ":", 3)
		if len(parts) != 3 {
			s.say(ctx, sess.CustomerID, msgUnrecognized, nil)
			return sess.State, nil
		}
		m, err := s.menu.Meal(ctx, types.ID(parts[1]))
		if err != nil {
			return sess.State, err
		}
		idx, err := strconv.Atoi(parts[2])
		if err != nil || idx < 0 || idx >= len(m.Sizes) {
			s.say(ctx, sess.CustomerID, msgUnrecognized, nil)
			return sess.State, nil
		}
		return s.addToCart(ctx, sess, m.Name, m.ID, m.Sizes[idx])
	}
	s.say(ctx, sess.CustomerID, msgUnrecognized, nil)
	return sess.State, nil
}

func (s *Service) addToCart(ctx context.Context, sess *Session, name string, mealID types.ID, size catalog.MealSize) (State, error) {
	sess.Scratch.Cart = append(sess.Scratch.Cart, registry.CartItem{
		MealID: mealID,
		Name:   name,
		Size:   size.Label,
		Price:  size.Price,
	})
	s.say(ctx, sess.CustomerID, msgCartUpdated+"\n"+fmtCart(sess.Scratch.Cart), cartButtons())
	return StateBuildingCart, nil
}

func (s *Service) cartSelect(ctx context.Context, sess *Session, ev Event) (State, error) {
	switch ev.Data {
	case "more":
		return s.showCategories(ctx, sess)
	case "checkout":
		if len(sess.Scratch.Cart) == 0 {
			s.say(ctx, sess.CustomerID, msgCartEmpty, nil)
			return sess.State, nil
		}
		s.say(ctx, sess.CustomerID, msgAskNotes, []transport.Button{{Label: "تجاوز", Data: "skip_notes"}})
		return StateAddingNotes, nil
	}
	s.say(ctx, sess.CustomerID, msgUnrecognized, nil)
	return sess.State, nil
}

func (s *Service) notesText(ctx context.Context, sess *Session, ev Event) (State, error) {
	sess.Scratch.Notes = strings.TrimSpace(ev.Text)
	return s.promptAddress(ctx, sess)
}

func (s *Service) notesSkip(ctx context.Context, sess *Session, ev Event) (State, error) {
	if ev.Data != "skip_notes" {
		s.say(ctx, sess.CustomerID, msgUnrecognized, nil)
		return sess.State, nil
	}
	return s.promptAddress(ctx, sess)
}

func (s *Service) promptAddress(ctx context.Context, sess *Session) (State, error) {
	s.say(ctx, sess.CustomerID, fmt.Sprintf(msgConfirmAddr, sess.Scratch.Address),
		[]transport.Button{{Label: "نعم، هذا عنواني", Data: "addr_ok"}})
	return StateConfirmAddress, nil
}

func (s *Service) addrKeep(ctx context.Context, sess *Session, ev Event) (State, error) {
	if ev.Data != "addr_ok" {
		s.say(ctx, sess.CustomerID, msgUnrecognized, nil)
		return sess.State, nil
	}
	return s.promptSummary(ctx, sess)
}

func (s *Service) addrPin(ctx context.Context, sess *Session, ev Event) (State, error) {
	sess.Scratch.Geo = ev.Point
	sess.Scratch.Address = s.resolveAddress(ctx, *ev.Point)
	return s.promptSummary(ctx, sess)
}

func (s *Service) addrText(ctx context.Context, sess *Session, ev Event) (State, error) {
	addr := strings.TrimSpace(ev.Text)
	if addr == "" {
		s.say(ctx, sess.CustomerID, msgUnrecognized, nil)
		return sess.State, nil
	}
	sess.Scratch.Address = addr
	return s.promptSummary(ctx, sess)
}

func (s *Service) promptSummary(ctx context.Context, sess *Session) (State, error) {
	summary := fmtOrderSummary(sess.Scratch.Cart, sess.Scratch.Notes, sess.Scratch.Address)
	s.say(ctx, sess.CustomerID, summary, []transport.Button{
		{Label: "تأكيد الطلب", Data: "confirm"},
		{Label: "إلغاء", Data: "abort"},
	})
	return StateConfirmOrder, nil
}

func (s *Service) confirmSelect(ctx context.Context, sess *Session, ev Event) (State, error) {
	switch ev.Data {
	case "abort":
		sess.clearOrderScratch(false)
		s.say(ctx, sess.CustomerID, msgOrderAborted, nil)
		s.say(ctx, sess.CustomerID, msgMainMenu, mainMenuButtons())
		return StateMainMenu, nil

	case "confirm":
		o, err := s.orders.Create(ctx, registry.CreateCommand{
			CustomerID:   sess.CustomerID,
			RestaurantID: sess.Scratch.RestaurantID,
			Cart:         sess.Scratch.Cart,
			Notes:        sess.Scratch.Notes,
			Address:      sess.Scratch.Address,
			Geo:          sess.Scratch.Geo,
		})
		if err != nil {
			// Store failure: the customer can retry from the same state;
			// the operator channel has not been notified.
			log.Printf("create order for %s: %v", sess.CustomerID, err)
			s.say(ctx, sess.CustomerID, msgStoreFailure, nil)
			return sess.State, nil
		}

		notice := fmtOrderNotice(o, sess.Scratch.Name, sess.Scratch.Phone)
		if _, err := s.sender.SendMessage(ctx, s.operatorChat, notice, nil); err != nil {
			log.Printf("notify operator channel for order %s: %v", o.ID, err)
		}
		if o.Geo != nil {
			if _, err := s.sender.SendLocation(ctx, s.operatorChat, *o.Geo); err != nil {
				log.Printf("send geo pin for order %s: %v", o.ID, err)
			}
		}

		sess.Scratch.OrderID = o.ID
		sess.Scratch.OrderSeq = o.SequenceNo
		sess.Scratch.OrderCreatedAt = o.CreatedAt
		s.say(ctx, sess.CustomerID, fmt.Sprintf(msgOrderPlaced, o.SequenceNo), prepButtons())
		return StateAwaitingPreparation, nil
	}
	s.say(ctx, sess.CustomerID, msgUnrecognized, nil)
	return sess.State, nil
}

// --- post-order ---

func (s *Service) prepSelect(ctx context.Context, sess *Session, ev Event) (State, error) {
	switch ev.Data {
	case "cancel_order":
		if s.now().Sub(sess.Scratch.OrderCreatedAt) >= cancelWindow {
			s.say(ctx, sess.CustomerID, msgCancelTooLate, nil)
			return sess.State, nil
		}
		s.say(ctx, sess.CustomerID, msgCancelConfirm, []transport.Button{
			{Label: "نعم", Data: "cancel_yes"},
			{Label: "لا", Data: "cancel_no"},
		})
		return StateCancelFlow, nil
	case "remind":
		return s.doRemind(ctx, sess)
	case "urge":
		return s.doUrge(ctx, sess)
	case "howlong":
		return s.doHowLong(ctx, sess)
	case "report":
		return s.doReport(ctx, sess)
	}
	s.say(ctx, sess.CustomerID, msgUnrecognized, nil)
	return sess.State, nil
}

func (s *Service) deliverySelect(ctx context.Context, sess *Session, ev Event) (State, error) {
	switch ev.Data {
	case "delivered":
		changed, err := s.orders.UpdateStatus(ctx, sess.Scratch.OrderID, registry.StatusDelivered)
		if err != nil {
			return sess.State, err
		}
		if !changed {
			s.say(ctx, sess.CustomerID, msgOrderFinal, nil)
			sess.clearOrderScratch(false)
			s.say(ctx, sess.CustomerID, msgMainMenu, mainMenuButtons())
			return StateMainMenu, nil
		}
		sess.clearOrderScratch(true)
		s.say(ctx, sess.CustomerID, msgAskRating, ratingButtons())
		return StateRatingFlow, nil
	case "urge":
		return s.doUrge(ctx, sess)
	case "howlong":
		return s.doHowLong(ctx, sess)
	case "report":
		return s.doReport(ctx, sess)
	}
	s.say(ctx, sess.CustomerID, msgUnrecognized, nil)
	return sess.State, nil
}

func (s *Service) cancelDecide(ctx context.Context, sess *Session, ev Event) (State, error) {
	switch ev.Data {
	case "cancel_no":
		s.say(ctx, sess.CustomerID, msgCancelKept, prepButtons())
		return StateAwaitingPreparation, nil

	case "cancel_yes":
		changed, err := s.orders.UpdateStatus(ctx, sess.Scratch.OrderID, registry.StatusCustomerCancelled)
		if err != nil {
			return sess.State, err
		}
		if changed {
			// Only customer-confirmed cancellations feed the rate limiter.
			s.gate.RecordCancellation(sess.CustomerID, s.now())
			notice := fmt.Sprintf(msgOpCancel, sess.Scratch.OrderSeq, sess.Scratch.OrderID)
			if _, err := s.sender.SendMessage(ctx, s.operatorChat, notice, nil); err != nil {
				log.Printf("notify cancel for order %s: %v", sess.Scratch.OrderID, err)
			}
			s.say(ctx, sess.CustomerID, msgCancelled, nil)
		} else {
			s.say(ctx, sess.CustomerID, msgOrderFinal, nil)
		}
		sess.clearOrderScratch(false)
		s.say(ctx, sess.CustomerID, msgMainMenu, mainMenuButtons())
		return StateMainMenu, nil
	}
	s.say(ctx, sess.CustomerID, msgUnrecognized, nil)
	return sess.State, nil
}

// doRemind is the one-shot reminder: usable exactly once per order, no
// matter how much time has passed.
func (s *Service) doRemind(ctx context.Context, sess *Session) (State, error) {
	if sess.Scratch.ReminderUsed {
		s.say(ctx, sess.CustomerID, msgReminderUsed, nil)
		return sess.State, nil
	}
	notice := fmt.Sprintf(msgOpReminder, sess.Scratch.OrderSeq, sess.Scratch.OrderID)
	if _, err := s.sender.SendMessage(ctx, s.operatorChat, notice, nil); err != nil {
		return sess.State, err
	}
	sess.Scratch.ReminderUsed = true
	s.say(ctx, sess.CustomerID, msgReminderSent, nil)
	return sess.State, nil
}

// doUrge is the second, independent reminder action with a 15-minute
// sliding cooldown. The two throttles are deliberately not merged.
func (s *Service) doUrge(ctx context.Context, sess *Session) (State, error) {
	if !sess.Scratch.LastRemindAt.IsZero() {
		if since := s.now().Sub(sess.Scratch.LastRemindAt); since < urgeCooldown {
			s.say(ctx, sess.CustomerID, fmt.Sprintf(msgUrgeCooldown, throttle.RemainingMinutes(urgeCooldown-since)), nil)
			return sess.State, nil
		}
	}
	notice := fmt.Sprintf(msgOpUrge, sess.Scratch.OrderSeq, sess.Scratch.OrderID)
	if _, err := s.sender.SendMessage(ctx, s.operatorChat, notice, nil); err != nil {
		return sess.State, err
	}
	sess.Scratch.LastRemindAt = s.now()
	s.say(ctx, sess.CustomerID, msgReminderSent, nil)
	return sess.State, nil
}

// doHowLong posts the remaining-time question and remembers the message
// reference so the operator's reply can be correlated back.
func (s *Service) doHowLong(ctx context.Context, sess *Session) (State, error) {
	question := fmt.Sprintf(msgOpHowLong, sess.Scratch.OrderSeq, sess.Scratch.OrderID)
	ref, err := s.sender.SendMessage(ctx, s.operatorChat, question, nil)
	if err != nil {
		return sess.State, err
	}
	err = s.correl.Remember(ctx, string(ref), correlate.Entry{
		CustomerID:   sess.CustomerID,
		OrderID:      sess.Scratch.OrderID,
		RestaurantID: sess.Scratch.RestaurantID,
		CreatedAt:    s.now(),
	})
	if err != nil {
		log.Printf("remember correlation for order %s: %v", sess.Scratch.OrderID, err)
	}
	s.say(ctx, sess.CustomerID, msgHowLongSent, nil)
	return sess.State, nil
}

func (s *Service) doReport(ctx context.Context, sess *Session) (State, error) {
	elapsed := s.now().Sub(sess.Scratch.OrderCreatedAt)
	if elapsed < reportAfter {
		s.say(ctx, sess.CustomerID, fmt.Sprintf(msgReportTooEarly, throttle.RemainingMinutes(reportAfter-elapsed)), nil)
		return sess.State, nil
	}
	changed, err := s.orders.UpdateStatus(ctx, sess.Scratch.OrderID, registry.StatusReportCancelled)
	if err != nil {
		return sess.State, err
	}
	if changed {
		notice := fmt.Sprintf(msgOpReport, sess.Scratch.OrderSeq, sess.Scratch.OrderID)
		if _, err := s.sender.SendMessage(ctx, s.operatorChat, notice, nil); err != nil {
			log.Printf("notify report for order %s: %v", sess.Scratch.OrderID, err)
		}
		s.say(ctx, sess.CustomerID, msgReportDone, nil)
	} else {
		s.say(ctx, sess.CustomerID, msgOrderFinal, nil)
	}
	sess.clearOrderScratch(false)
	s.say(ctx, sess.CustomerID, msgMainMenu, mainMenuButtons())
	return StateMainMenu, nil
}

func (s *Service) ratingSelect(ctx context.Context, sess *Session, ev Event) (State, error) {
	if n, ok := callbackArg(ev.Data, "star"); ok {
		stars, err := strconv.Atoi(n)
		if err != nil {
			s.say(ctx, sess.CustomerID, msgUnrecognized, nil)
			return sess.State, nil
		}
		if err := s.ratings.Submit(ctx, sess.Scratch.RestaurantID, stars); err != nil {
			return sess.State, err
		}
		s.say(ctx, sess.CustomerID, msgThanksRating, nil)
		sess.clearOrderScratch(false)
		s.say(ctx, sess.CustomerID, msgMainMenu, mainMenuButtons())
		return StateMainMenu, nil
	}
	if ev.Data == "skip_rating" {
		sess.clearOrderScratch(false)
		s.say(ctx, sess.CustomerID, msgMainMenu, mainMenuButtons())
		return StateMainMenu, nil
	}
	s.say(ctx, sess.CustomerID, msgUnrecognized, nil)
	return sess.State, nil
}

// --- operator-side ---

func (s *Service) opRejected(ctx context.Context, sess *Session, ev Event) (State, error) {
	s.say(ctx, sess.CustomerID, msgRejected, nil)
	sess.clearOrderScratch(false)
	s.say(ctx, sess.CustomerID, msgMainMenu, mainMenuButtons())
	return StateMainMenu, nil
}

func (s *Service) opPreparing(ctx context.Context, sess *Session, ev Event) (State, error) {
	s.say(ctx, sess.CustomerID, msgPreparing, deliveryButtons())
	return StateAwaitingDelivery, nil
}

func (s *Service) opComplaint(ctx context.Context, sess *Session, ev Event) (State, error) {
	s.say(ctx, sess.CustomerID, fmt.Sprintf(msgComplaintDone, ev.Reason), nil)
	sess.clearOrderScratch(false)
	s.say(ctx, sess.CustomerID, msgMainMenu, mainMenuButtons())
	return StateMainMenu, nil
}

func (s *Service) opRemaining(ctx context.Context, sess *Session, ev Event) (State, error) {
	s.say(ctx, sess.CustomerID, fmt.Sprintf(msgRemaining, ev.Minutes), nil)
	return sess.State, nil
}

func (s *Service) opNote(ctx context.Context, sess *Session, ev Event) (State, error) {
	s.say(ctx, sess.CustomerID, ev.Text, nil)
	return sess.State, nil
}

// --- helpers ---

func (s *Service) resolveAddress(ctx context.Context, p types.Point) string {
	if s.geocoder != nil {
		if addr, err := s.geocoder.ReverseGeocode(ctx, p); err == nil {
			return addr
		} else {
			log.Printf("reverse geocode: %v", err)
		}
	}
	return fmt.Sprintf("%.5f, %.5f", p.Lat, p.Lng)
}

func callbackArg(data, prefix string) (string, bool) {
	if !strings.HasPrefix(data, prefix+":") {
		return "", false
	}
	arg := data[len(prefix)+1:]
	if arg == "" {
		return "", false
	}
	return arg, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func mainMenuButtons() []transport.Button {
	return []transport.Button{{Label: "طلب سريع", Data: "order"}}
}

func cartButtons() []transport.Button {
	return []transport.Button{
		{Label: "إضافة المزيد", Data: "more"},
		{Label: "إتمام الطلب", Data: "checkout"},
	}
}

func prepButtons() []transport.Button {
	return []transport.Button{
		{Label: "إلغاء الطلب", Data: "cancel_order"},
		{Label: "تذكير المطعم", Data: "remind"},
		{Label: "استعجال", Data: "urge"},
		{Label: "كم تبقى؟", Data: "howlong"},
		{Label: "شكوى", Data: "report"},
	}
}

func deliveryButtons() []transport.Button {
	return []transport.Button{
		{Label: "استلمت الطلب", Data: "delivered"},
		{Label: "استعجال", Data: "urge"},
		{Label: "كم تبقى؟", Data: "howlong"},
		{Label: "شكوى", Data: "report"},
	}
}

func ratingButtons() []transport.Button {
	b := make([]transport.Button, 0, 6)
	for i := 1; i <= 5; i++ {
		b = append(b, transport.Button{Label: strings.Repeat("★", i), Data: fmt.Sprintf("star:%d", i)})
	}
	return append(b, transport.Button{Label: "تجاوز", Data: "skip_rating"})
}
