package testutils

import (
	"context"
	"fmt"
	"strings"

	"github.com/papercomputeco/folio/pkg/embeddings"
)

// MockEmbedder is a test embedder that returns predictable embeddings
type MockEmbedder struct {
	Embeddings map[string][]float32

	// TokenCounts overrides the reported token count per input text.
	TokenCounts map[string]int

	// FailOn causes Embed to return an error when the input contains it
	FailOn string

	// Err, when set, is returned from every Embed call as-is.
	Err error

	// Calls accumulates every input passed to Embed.
	Calls []string
}

func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		Embeddings:  make(map[string][]float32),
		TokenCounts: make(map[string]int),
	}
}

func (m *MockEmbedder) Embed(_ context.Context, text string) (*embeddings.Result, error) {
	m.Calls = append(m.Calls, text)

	if m.Err != nil {
		return nil, m.Err
	}

	if m.FailOn != "" && strings.Contains(text, m.FailOn) {
		return nil, fmt.Errorf("mock embedding failure for: %s", text)
	}

	vector, ok := m.Embeddings[text]
	if !ok {
		vector = []float32{0.1, 0.2, 0.3}
	}

	tokens, ok := m.TokenCounts[text]
	if !ok {
		tokens = len(strings.Fields(text))
	}

	return &embeddings.Result{Vector: vector, TokenCount: tokens}, nil
}

func (m *MockEmbedder) Close() error {
	return nil
}

var _ embeddings.Embedder = (*MockEmbedder)(nil)
