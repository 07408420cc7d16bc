// Package moderation gates text through a content moderation provider before
// it reaches the embedding or completion providers.
package moderation

import (
	"context"
	"fmt"
)

// FlaggedContentError is returned when the moderation provider flags text.
type FlaggedContentError struct {
	// Preview is a short prefix of the flagged text for logging; the full
	// text is never echoed back.
	Preview string
}

func (e *FlaggedContentError) Error() string {
	if e.Preview == "" {
		return "content flagged by moderation provider"
	}
	return fmt.Sprintf("content flagged by moderation provider: %q", e.Preview)
}

// Gate submits text to a moderation provider and rejects flagged content.
type Gate interface {
	// Check returns a *FlaggedContentError when the provider flags the text,
	// nil when it passes, or another error when the provider call fails.
	Check(ctx context.Context, text string) error

	// Close releases any resources held by the gate.
	Close() error
}

// previewLen caps the text prefix carried inside FlaggedContentError.
const previewLen = 48

// Preview returns a short prefix of text suitable for error messages and logs.
func Preview(text string) string {
	if len(text) <= previewLen {
		return text
	}
	return text[:previewLen] + "..."
}

// NopGate passes all content. Used when moderation is disabled.
type NopGate struct{}

func (NopGate) Check(context.Context, string) error { return nil }
func (NopGate) Close() error                        { return nil }

var _ Gate = NopGate{}
