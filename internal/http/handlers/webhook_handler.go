// README: Webhook handlers; inbound customer updates and operator-channel posts.
package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"wajba/internal/modules/channel"
	"wajba/internal/modules/session"
	"wajba/internal/transport"
	"wajba/internal/types"
)

type WebhookHandler struct {
	sessions   *session.Service
	dispatcher *channel.Dispatcher
}

func NewWebhookHandler(sessions *session.Service, dispatcher *channel.Dispatcher) *WebhookHandler {
	return &WebhookHandler{sessions: sessions, dispatcher: dispatcher}
}

type customerUpdateReq struct {
	ChatID   string    `json:"chat_id"`
	Text     string    `json:"text"`
	Callback string    `json:"callback"`
	Location *pointReq `json:"location"`
	PhotoURL string    `json:"photo_url"`
}

type pointReq struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Customer receives one inbound customer update. Each conversation is
// handled as an independent task; the webhook acks immediately.
func (h *WebhookHandler) Customer(c *gin.Context) {
	var req customerUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ChatID == "" {
		writeError(c, http.StatusBadRequest, "missing chat_id")
		return
	}

	up := transport.Update{
		ChatID:   types.ID(req.ChatID),
		Text:     req.Text,
		Callback: req.Callback,
		PhotoURL: req.PhotoURL,
	}
	if req.Location != nil {
		up.Location = &types.Point{Lat: req.Location.Lat, Lng: req.Location.Lng}
	}

	// Detached from the request context: the webhook acks immediately and
	// the conversation turn finishes on its own.
	go func() {
		if err := h.sessions.Handle(context.Background(), up); err != nil {
			log.Printf("customer update %s: %v", req.ChatID, err)
		}
	}()
	c.Status(http.StatusAccepted)
}

type channelPostReq struct {
	MessageRef string `json:"message_ref"`
	ReplyTo    string `json:"reply_to"`
	Text       string `json:"text"`
}

// Channel receives one operator-channel post.
func (h *WebhookHandler) Channel(c *gin.Context) {
	var req channelPostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	post := transport.ChannelPost{
		MessageRef: transport.MessageRef(req.MessageRef),
		ReplyTo:    transport.MessageRef(req.ReplyTo),
		Text:       req.Text,
	}
	go func() {
		if err := h.dispatcher.HandleChannelPost(context.Background(), post); err != nil {
			log.Printf("channel post %s: %v", req.MessageRef, err)
		}
	}()
	c.Status(http.StatusAccepted)
}
