// Package eventstream publishes document sync outcomes to an event stream
// backend so downstream consumers can react to index changes.
package eventstream

import "time"

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeDocumentSynced is emitted after a document's index state changes.
	EventTypeDocumentSynced = "folio.document.synced"
)

// Sync outcomes carried in DocumentSyncedEvent.Outcome.
const (
	OutcomeIndexed       = "indexed"
	OutcomeAccessChanged = "access_changed"
	OutcomeDeleted       = "deleted"
	OutcomeErrored       = "errored"
)

// DocumentSyncedEvent is a transport-neutral event payload for one document's
// sync outcome.
type DocumentSyncedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	// Path is the document's corpus path.
	Path string `json:"path"`

	// Outcome is one of the Outcome* constants.
	Outcome string `json:"outcome"`

	// Sections is the number of sections committed, for indexed outcomes.
	Sections int `json:"sections,omitempty"`

	// Error carries the failure message for errored outcomes.
	Error string `json:"error,omitempty"`
}
