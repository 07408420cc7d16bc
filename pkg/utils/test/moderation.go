package testutils

import (
	"context"
	"strings"

	"github.com/papercomputeco/folio/pkg/moderation"
)

// MockGate flags content containing any configured substring.
type MockGate struct {
	FlagOn []string

	// Calls accumulates every input passed to Check.
	Calls []string
}

func (m *MockGate) Check(_ context.Context, text string) error {
	m.Calls = append(m.Calls, text)

	for _, needle := range m.FlagOn {
		if strings.Contains(text, needle) {
			return &moderation.FlaggedContentError{Preview: moderation.Preview(text)}
		}
	}
	return nil
}

func (m *MockGate) Close() error { return nil }

var _ moderation.Gate = (*MockGate)(nil)
