package testutils

import (
	"context"

	"github.com/papercomputeco/folio/pkg/eventstream"
)

// MockPublisher records every event handed to it.
type MockPublisher struct {
	Events []*eventstream.DocumentSyncedEvent
}

func (m *MockPublisher) PublishDocument(_ context.Context, event *eventstream.DocumentSyncedEvent) error {
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockPublisher) Close() error { return nil }

var _ eventstream.Publisher = (*MockPublisher)(nil)
