package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClassifier implements Classifier using Google's Gemini models.
type GeminiClassifier struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClassifier initializes a new Gemini client.
// apiKey should be provided from environment variables.
func NewGeminiClassifier(ctx context.Context, apiKey string) (*GeminiClassifier, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	// Flash keeps latency and cost low for a per-message call.
	model := client.GenerativeModel("gemini-2.0-flash")
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.1)

	return &GeminiClassifier{client: client, model: model}, nil
}

// Close cleans up the Gemini client resources.
func (c *GeminiClassifier) Close() {
	c.client.Close()
}

const classifyPrompt = `Role: you read free-text messages restaurant staff post into an order channel (usually Arabic) and classify them.
Respond with JSON only: {"kind": ..., "order_id": ..., "reason": ...}
kind must be one of:
- "rejected": the staff refuses/rejects an order
- "preparing": the staff started preparing an order
- "complaint_cancelled": an order is cancelled because of a customer complaint; put the stated reason in "reason"
- "status_update": any other remark about a specific order
- "unrelated": chatter that concerns no order
order_id is the 15-character alphanumeric token mentioned in the text, or omitted if none.

Message: %s`

func (c *GeminiClassifier) ClassifyOperatorText(ctx context.Context, text string) (*Classification, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(fmt.Sprintf(classifyPrompt, text)))
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response candidates from Gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}

	cleanJSON := cleanJSONString(responseText.String())
	var result Classification
	if err := json.Unmarshal([]byte(cleanJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w. Raw: %s", err, cleanJSON)
	}
	return &result, nil
}

// cleanJSONString strips markdown code fences the model sometimes emits
// even in JSON mode.
func cleanJSONString(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
