package testutils

import (
	"context"

	"github.com/papercomputeco/folio/pkg/llm"
)

// MockCompleter returns a canned completion and records prompts.
type MockCompleter struct {
	Response string

	// Err is returned from Complete when set.
	Err error

	// Prompts accumulates every message slice passed to Complete.
	Prompts [][]llm.Message
}

func (m *MockCompleter) Complete(_ context.Context, messages []llm.Message) (string, error) {
	m.Prompts = append(m.Prompts, messages)

	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func (m *MockCompleter) Close() error { return nil }

var _ llm.Completer = (*MockCompleter)(nil)
