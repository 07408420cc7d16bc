package llm

import (
	"context"
	"errors"
)

var (
	// ErrProvider is returned when a completion provider request does not succeed.
	ErrProvider = errors.New("completion provider request failed")

	// ErrEmptyCompletion is returned when the provider returns no choices.
	ErrEmptyCompletion = errors.New("provider returned no completion")
)

// Completer produces a chat completion for a sequence of messages.
type Completer interface {
	// Complete submits the messages and returns the provider's top completion
	// text. Returns ErrEmptyCompletion when the provider returns none.
	Complete(ctx context.Context, messages []Message) (string, error)

	// Close releases any resources held by the completer.
	Close() error
}
