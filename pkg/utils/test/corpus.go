package testutils

import (
	"context"
	"fmt"
	"sort"

	"github.com/papercomputeco/folio/pkg/corpus"
)

// MockCorpus is an in-memory corpus provider keyed by document path.
type MockCorpus struct {
	Documents map[string]string

	// FailRead causes ReadDocument to fail for the given path.
	FailRead string
}

func NewMockCorpus() *MockCorpus {
	return &MockCorpus{Documents: make(map[string]string)}
}

func (m *MockCorpus) ListDocuments(_ context.Context) ([]corpus.Document, error) {
	paths := make([]string, 0, len(m.Documents))
	for path := range m.Documents {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	docs := make([]corpus.Document, 0, len(paths))
	for _, path := range paths {
		docs = append(docs, corpus.Document{Path: path})
	}
	return docs, nil
}

func (m *MockCorpus) ReadDocument(_ context.Context, path string) (string, error) {
	if m.FailRead != "" && path == m.FailRead {
		return "", fmt.Errorf("mock read failure for: %s", path)
	}

	content, ok := m.Documents[path]
	if !ok {
		return "", fmt.Errorf("document not found: %s", path)
	}
	return content, nil
}

var _ corpus.Provider = (*MockCorpus)(nil)
