// README: Dispatcher tests; orders, sessions and correlations faked in-memory.
package channel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"wajba/internal/ai"
	"wajba/internal/modules/correlate"
	"wajba/internal/modules/registry"
	"wajba/internal/modules/session"
	"wajba/internal/transport"
	"wajba/internal/types"
)

const testOperatorChat = types.ID("op-channel")

type fakeOrders struct {
	mu     sync.Mutex
	orders map[types.ID]*registry.Order
}

func (f *fakeOrders) Get(_ context.Context, id types.ID) (*registry.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, registry.ErrNotFound
	}
	return o, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id types.ID, to registry.Status) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return false, registry.ErrNotFound
	}
	if registry.IsTerminal(o.Status) {
		return false, nil
	}
	o.Status = to
	return true, nil
}

type deliveredEvent struct {
	CustomerID types.ID
	Event      session.Event
}

type fakeSessions struct {
	mu        sync.Mutex
	delivered []deliveredEvent
}

func (f *fakeSessions) HandleOperatorEvent(_ context.Context, customerID types.ID, ev session.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delivered = append(f.delivered, deliveredEvent{CustomerID: customerID, Event: ev})
	return nil
}

type fakeCorrelations struct {
	mu      sync.Mutex
	entries map[string]correlate.Entry
}

func (f *fakeCorrelations) Resolve(_ context.Context, ref string) (correlate.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[ref]
	if !ok {
		return correlate.Entry{}, correlate.ErrNotFound
	}
	return e, nil
}

func (f *fakeCorrelations) Forget(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, ref)
	return nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) SendMessage(_ context.Context, _ types.ID, text string, _ []transport.Button) (transport.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return "m1", nil
}

func (f *fakeSender) SendPhoto(context.Context, types.ID, string, string) (transport.MessageRef, error) {
	return "p1", nil
}

func (f *fakeSender) SendLocation(context.Context, types.ID, types.Point) (transport.MessageRef, error) {
	return "l1", nil
}

func (f *fakeSender) EditMessage(context.Context, types.ID, transport.MessageRef, string) error {
	return nil
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *fakeOrders, *fakeSessions, *fakeCorrelations, *fakeSender) {
	t.Helper()
	orders := &fakeOrders{orders: make(map[types.ID]*registry.Order)}
	sessions := &fakeSessions{}
	correl := &fakeCorrelations{entries: make(map[string]correlate.Entry)}
	sender := &fakeSender{}
	d := NewDispatcher(DispatcherDeps{
		Orders:       orders,
		Sessions:     sessions,
		Correlations: correl,
		Sender:       sender,
		OperatorChat: testOperatorChat,
	})
	return d, orders, sessions, correl, sender
}

func seedOrder(orders *fakeOrders, id, customer types.ID, status registry.Status) {
	orders.orders[id] = &registry.Order{
		ID:         id,
		CustomerID: customer,
		Status:     status,
		CreatedAt:  time.Now(),
	}
}

func TestRejectionUpdatesOrderAndSession(t *testing.T) {
	d, orders, sessions, _, _ := newTestDispatcher(t)
	seedOrder(orders, "Ab3dEf7hIj9kLm2", "c1", registry.StatusPending)

	post := transport.ChannelPost{Text: "تم رفض الطلب، معرف الطلب: Ab3dEf7hIj9kLm2"}
	if err := d.HandleChannelPost(context.Background(), post); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if got := orders.orders["Ab3dEf7hIj9kLm2"].Status; got != registry.StatusOperatorRejected {
		t.Fatalf("order status = %s, want operator_rejected", got)
	}
	if len(sessions.delivered) != 1 {
		t.Fatalf("delivered events = %d, want 1", len(sessions.delivered))
	}
	ev := sessions.delivered[0]
	if ev.CustomerID != "c1" || ev.Event.Kind != session.KindOperatorRejected {
		t.Fatalf("delivered = %+v", ev)
	}
	if ev.Event.OrderID != "Ab3dEf7hIj9kLm2" {
		t.Fatalf("delivered event lost its order id: %+v", ev.Event)
	}
}

// TestLateEventAfterTerminalIsDropped: once an order is rejected, a later
// preparation-start post about it must change nothing.
func TestLateEventAfterTerminalIsDropped(t *testing.T) {
	d, orders, sessions, _, _ := newTestDispatcher(t)
	seedOrder(orders, "Ab3dEf7hIj9kLm2", "c1", registry.StatusOperatorRejected)

	post := transport.ChannelPost{Text: "جاري التحضير معرف الطلب: Ab3dEf7hIj9kLm2"}
	if err := d.HandleChannelPost(context.Background(), post); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if got := orders.orders["Ab3dEf7hIj9kLm2"].Status; got != registry.StatusOperatorRejected {
		t.Fatalf("terminal status overwritten to %s", got)
	}
	if len(sessions.delivered) != 0 {
		t.Fatalf("late event still reached the session: %+v", sessions.delivered)
	}
}

func TestUnknownOrderIDDropped(t *testing.T) {
	d, _, sessions, _, _ := newTestDispatcher(t)

	post := transport.ChannelPost{Text: "تم رفض الطلب، معرف الطلب: Zz9Yy8Xx7Ww6Vv5"}
	if err := d.HandleChannelPost(context.Background(), post); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sessions.delivered) != 0 {
		t.Fatalf("unknown order reached a session: %+v", sessions.delivered)
	}
}

func TestRemainingTimeReplyResolvesToCustomer(t *testing.T) {
	d, orders, sessions, correl, _ := newTestDispatcher(t)
	seedOrder(orders, "Ab3dEf7hIj9kLm2", "c1", registry.StatusPending)
	correl.entries["m7"] = correlate.Entry{CustomerID: "c1", OrderID: "Ab3dEf7hIj9kLm2"}

	post := transport.ChannelPost{ReplyTo: "m7", Text: "20"}
	if err := d.HandleChannelPost(context.Background(), post); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(sessions.delivered) != 1 {
		t.Fatalf("delivered events = %d, want 1", len(sessions.delivered))
	}
	ev := sessions.delivered[0]
	if ev.CustomerID != "c1" || ev.Event.Kind != session.KindRemainingTime || ev.Event.Minutes != 20 {
		t.Fatalf("delivered = %+v", ev)
	}
	if ev.Event.OrderID != "Ab3dEf7hIj9kLm2" {
		t.Fatalf("delivered event lost its order id: %+v", ev.Event)
	}
	if _, ok := correl.entries["m7"]; ok {
		t.Fatal("answered correlation was not forgotten")
	}
}

func TestMalformedReplyGetsFormatCorrection(t *testing.T) {
	d, _, sessions, correl, sender := newTestDispatcher(t)
	correl.entries["m7"] = correlate.Entry{CustomerID: "c1", OrderID: "Ab3dEf7hIj9kLm2"}

	post := transport.ChannelPost{ReplyTo: "m7", Text: "حوالي نص ساعة"}
	if err := d.HandleChannelPost(context.Background(), post); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(sender.sent) != 1 || sender.sent[0] != msgReplyFormat {
		t.Fatalf("sent = %v, want one format correction", sender.sent)
	}
	if len(sessions.delivered) != 0 {
		t.Fatalf("malformed reply reached a session: %+v", sessions.delivered)
	}
	// The question stays answerable.
	if _, ok := correl.entries["m7"]; !ok {
		t.Fatal("correlation was dropped on a malformed reply")
	}
}

func TestReplyToUnknownMessageFallsThrough(t *testing.T) {
	d, orders, sessions, _, sender := newTestDispatcher(t)
	seedOrder(orders, "Ab3dEf7hIj9kLm2", "c1", registry.StatusPending)

	// A reply to some unrelated channel message that happens to mention an
	// order id decodes as a generic status note.
	post := transport.ChannelPost{ReplyTo: "unknown", Text: "الطلب Ab3dEf7hIj9kLm2 سيتأخر قليلاً"}
	if err := d.HandleChannelPost(context.Background(), post); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(sender.sent) != 0 {
		t.Fatalf("unexpected correction sent: %v", sender.sent)
	}
	if len(sessions.delivered) != 1 || sessions.delivered[0].Event.Kind != session.KindOperatorNote {
		t.Fatalf("delivered = %+v, want one operator note", sessions.delivered)
	}
}

func TestGenericUpdateKeepsOrderStatus(t *testing.T) {
	d, orders, sessions, _, _ := newTestDispatcher(t)
	seedOrder(orders, "Ab3dEf7hIj9kLm2", "c1", registry.StatusPreparing)

	post := transport.ChannelPost{Text: "الطلب Ab3dEf7hIj9kLm2 خرج للتوصيل الآن"}
	if err := d.HandleChannelPost(context.Background(), post); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if got := orders.orders["Ab3dEf7hIj9kLm2"].Status; got != registry.StatusPreparing {
		t.Fatalf("generic note changed order status to %s", got)
	}
	if len(sessions.delivered) != 1 || sessions.delivered[0].Event.Kind != session.KindOperatorNote {
		t.Fatalf("delivered = %+v", sessions.delivered)
	}
}

func TestUnrelatedChatterIgnored(t *testing.T) {
	d, _, sessions, _, sender := newTestDispatcher(t)

	post := transport.ChannelPost{Text: "صباح الخير، كيف الشغل اليوم؟"}
	if err := d.HandleChannelPost(context.Background(), post); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sessions.delivered) != 0 || len(sender.sent) != 0 {
		t.Fatal("chatter produced side effects")
	}
}

type fakeClassifier struct {
	result *ai.Classification
	err    error
	asked  []string
}

func (f *fakeClassifier) ClassifyOperatorText(_ context.Context, text string) (*ai.Classification, error) {
	f.asked = append(f.asked, text)
	return f.result, f.err
}

func TestClassifierFallbackOnUndecodableText(t *testing.T) {
	d, orders, sessions, _, _ := newTestDispatcher(t)
	seedOrder(orders, "Ab3dEf7hIj9kLm2", "c1", registry.StatusPending)

	clf := &fakeClassifier{result: &ai.Classification{Kind: "rejected", OrderID: "Ab3dEf7hIj9kLm2"}}
	d.classifier = clf

	// No marker, no extractable id: the regex decoder gives up and the
	// classifier gets the text.
	post := transport.ChannelPost{Text: "ما نكدر نسوي هذا الطلب اليوم"}
	if err := d.HandleChannelPost(context.Background(), post); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(clf.asked) != 1 {
		t.Fatalf("classifier calls = %d, want 1", len(clf.asked))
	}
	if got := orders.orders["Ab3dEf7hIj9kLm2"].Status; got != registry.StatusOperatorRejected {
		t.Fatalf("order status = %s, want operator_rejected", got)
	}
	if len(sessions.delivered) != 1 || sessions.delivered[0].Event.Kind != session.KindOperatorRejected {
		t.Fatalf("delivered = %+v", sessions.delivered)
	}
}

func TestClassifierNotAskedWhenDecoderSucceeds(t *testing.T) {
	d, orders, _, _, _ := newTestDispatcher(t)
	seedOrder(orders, "Ab3dEf7hIj9kLm2", "c1", registry.StatusPending)

	clf := &fakeClassifier{result: &ai.Classification{Kind: "unrelated"}}
	d.classifier = clf

	post := transport.ChannelPost{Text: "تم رفض الطلب، معرف الطلب: Ab3dEf7hIj9kLm2"}
	if err := d.HandleChannelPost(context.Background(), post); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(clf.asked) != 0 {
		t.Fatal("classifier consulted despite a decoder verdict")
	}
}

func TestClassifierErrorsAreSwallowed(t *testing.T) {
	d, _, sessions, _, _ := newTestDispatcher(t)

	clf := &fakeClassifier{err: errors.New("quota exceeded")}
	d.classifier = clf

	post := transport.ChannelPost{Text: "رسالة غامضة بدون معرف"}
	if err := d.HandleChannelPost(context.Background(), post); err != nil {
		t.Fatalf("classifier error must not fail the webhook: %v", err)
	}
	if len(sessions.delivered) != 0 {
		t.Fatalf("delivered = %+v, want none", sessions.delivered)
	}
}

func TestComplaintCarriesReasonToSession(t *testing.T) {
	d, orders, sessions, _, _ := newTestDispatcher(t)
	seedOrder(orders, "Ab3dEf7hIj9kLm2", "c1", registry.StatusPreparing)

	post := transport.ChannelPost{Text: "إلغاء بشكوى معرف الطلب: Ab3dEf7hIj9kLm2 السبب: تأخر التوصيل"}
	if err := d.HandleChannelPost(context.Background(), post); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if got := orders.orders["Ab3dEf7hIj9kLm2"].Status; got != registry.StatusReportCancelled {
		t.Fatalf("order status = %s, want report_cancelled", got)
	}
	ev := sessions.delivered[0]
	if ev.Event.Kind != session.KindComplaintCancelled || ev.Event.Reason != "تأخر التوصيل" {
		t.Fatalf("delivered = %+v", ev)
	}
}
