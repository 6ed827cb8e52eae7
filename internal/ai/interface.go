package ai

import (
	"context"
)

// Classifier gives the channel dispatcher a second opinion on operator
// text that the regex decoder could not place. Implementations must be
// safe to skip; the decoder's verdict always wins when it has one.
type Classifier interface {
	// ClassifyOperatorText extracts a structured reading of a free-text
	// operator message.
	ClassifyOperatorText(ctx context.Context, text string) (*Classification, error)
}

// Classification is the structured output of the model.
type Classification struct {
	// Kind is one of "rejected", "preparing", "complaint_cancelled",
	// "status_update", "unrelated".
	Kind string `json:"kind"`

	// OrderID is the order token mentioned in the text, if any.
	OrderID string `json:"order_id,omitempty"`

	// Reason carries the complaint reason when Kind is "complaint_cancelled".
	Reason string `json:"reason,omitempty"`
}
