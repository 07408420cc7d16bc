// Package embeddings
package embeddings

import (
	"context"
	"errors"
)

// ErrProvider is returned when an embedding provider request does not succeed.
var ErrProvider = errors.New("embedding provider request failed")

// Result is one embedding with the token count the provider reported for the
// input text. The section store persists the count for budget accounting.
type Result struct {
	Vector     []float32
	TokenCount int
}

// Embedder provides text embedding capabilities.
type Embedder interface {
	// Embed converts text into a vector embedding.
	Embed(ctx context.Context, text string) (*Result, error)

	// Close releases any resources held by the embedder.
	Close() error
}
