// README: Generic HTTP JSON client for the chat transport gateway.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"wajba/internal/types"
)

// Client posts generic JSON payloads to a transport gateway; the concrete
// chat platform's wire format lives behind that gateway.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type sendResponse struct {
	MessageRef string `json:"message_ref"`
}

func (c *Client) SendMessage(ctx context.Context, chat types.ID, text string, buttons []Button) (MessageRef, error) {
	return c.post(ctx, "/send_message", map[string]any{
		"chat_id": string(chat),
		"text":    text,
		"buttons": buttons,
	})
}

func (c *Client) SendPhoto(ctx context.Context, chat types.ID, photoURL, caption string) (MessageRef, error) {
	return c.post(ctx, "/send_photo", map[string]any{
		"chat_id": string(chat),
		"photo":   photoURL,
		"caption": caption,
	})
}

func (c *Client) SendLocation(ctx context.Context, chat types.ID, p types.Point) (MessageRef, error) {
	return c.post(ctx, "/send_location", map[string]any{
		"chat_id": string(chat),
		"lat":     p.Lat,
		"lng":     p.Lng,
	})
}

func (c *Client) EditMessage(ctx context.Context, chat types.ID, ref MessageRef, text string) error {
	_, err := c.post(ctx, "/edit_message", map[string]any{
		"chat_id":     string(chat),
		"message_ref": string(ref),
		"text":        text,
	})
	return err
}

func (c *Client) post(ctx context.Context, path string, payload map[string]any) (MessageRef, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("transport gateway %s: status %d", path, resp.StatusCode)
	}
	var out sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return MessageRef(out.MessageRef), nil
}
