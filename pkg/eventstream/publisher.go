package eventstream

import "context"

// Publisher publishes document sync events to an event stream backend.
type Publisher interface {
	PublishDocument(ctx context.Context, event *DocumentSyncedEvent) error
	Close() error
}

// NewEvent fills the envelope fields of a DocumentSyncedEvent.
func NewEvent(path, outcome string) *DocumentSyncedEvent {
	return &DocumentSyncedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeDocumentSynced,
		Path:          path,
		Outcome:       outcome,
	}
}
