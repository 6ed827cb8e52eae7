// README: Chat transport port; outbound message contract and inbound update types.
package transport

import (
	"context"
	"errors"

	"wajba/internal/types"
)

// ErrTransport marks a transient delivery failure after retries are
// exhausted; callers surface it instead of retrying forever.
var ErrTransport = errors.New("transport send failed")

// MessageRef identifies an outbound message so later events (edits,
// replies) can be tied back to it.
type MessageRef string

// Button is one inline choice presented to the user; Data comes back in a
// callback update when pressed.
type Button struct {
	Label string `json:"label"`
	Data  string `json:"data"`
}

// Sender is the outbound contract the chat platform adapter implements.
type Sender interface {
	SendMessage(ctx context.Context, chat types.ID, text string, buttons []Button) (MessageRef, error)
	SendPhoto(ctx context.Context, chat types.ID, photoURL, caption string) (MessageRef, error)
	SendLocation(ctx context.Context, chat types.ID, p types.Point) (MessageRef, error)
	EditMessage(ctx context.Context, chat types.ID, ref MessageRef, text string) error
}

// Update is one inbound customer event: text, a pressed button, a shared
// location, or a photo.
type Update struct {
	ChatID   types.ID
	Text     string
	Callback string
	Location *types.Point
	PhotoURL string
}

// ChannelPost is one message appearing in the operator channel.
type ChannelPost struct {
	MessageRef MessageRef
	ReplyTo    MessageRef
	Text       string
}
