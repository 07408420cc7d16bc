// Package store defines the typed repositories backing the vector index.
//
// The engine talks to the store through narrow, named operations, one method
// per query the sync and retrieval paths need, rather than a dynamic query
// builder. Three backends implement Store: postgres (pgvector), sqlitevec
// (sqlite-vec) and inmemory.
package store

import "context"

// DocumentRecord is one stored corpus document.
type DocumentRecord struct {
	// ID is the store-assigned identifier sections reference.
	ID string

	// Path is the document's stable identity within the corpus.
	Path string

	// Checksum is the base64-encoded content hash of the last fully committed
	// body. Nil is the sentinel meaning the document's sections were never
	// fully committed and it must be reprocessed.
	Checksum *string

	// Meta is the document's front matter, serialized as JSON.
	Meta string

	// Public is the access flag derived from directory membership rules.
	Public bool
}

// DocumentUpsert carries the fields written when a document is (re)indexed.
// Checksum is nil at upsert time: the sentinel is only cleared after every
// section has been committed.
type DocumentUpsert struct {
	Checksum *string
	Meta     string
	Public   bool
}

// DocumentUpdate carries a partial update; nil fields are left unchanged.
type DocumentUpdate struct {
	Checksum *string
	Public   *bool
}

// SectionRecord is one paragraph-level chunk of a document.
type SectionRecord struct {
	DocumentID string
	Content    string
	TokenCount int
	Embedding  []float32
}

// MatchParams tunes a nearest-neighbor query.
type MatchParams struct {
	// Threshold is the minimum similarity in [0,1] for a section to match.
	Threshold float64

	// Count caps the number of returned matches.
	Count int

	// MinContentLength drops sections shorter than this many characters.
	MinContentLength int
}

// Match is one ranked nearest-neighbor result.
type Match struct {
	DocumentID string
	Content    string
	Similarity float64
}

// DocumentStore persists corpus documents keyed by path.
type DocumentStore interface {
	// FindByPath returns the document at path, or ErrNotFound.
	FindByPath(ctx context.Context, path string) (*DocumentRecord, error)

	// UpsertByPath creates or replaces the document at path and returns its ID.
	UpsertByPath(ctx context.Context, path string, doc DocumentUpsert) (string, error)

	// UpdateByPath applies a partial update to the document at path.
	UpdateByPath(ctx context.Context, path string, update DocumentUpdate) error

	// DeleteByPath removes the document at path and its sections.
	DeleteByPath(ctx context.Context, path string) error

	// ListAll returns every stored document.
	ListAll(ctx context.Context) ([]DocumentRecord, error)
}

// SectionStore persists document sections and their embeddings.
type SectionStore interface {
	// DeleteByDocumentID removes every section owned by the document.
	DeleteByDocumentID(ctx context.Context, documentID string) error

	// Insert stores one section.
	Insert(ctx context.Context, section SectionRecord) error
}

// Matcher runs the nearest-neighbor similarity query.
type Matcher interface {
	// Match returns sections ranked by descending similarity, filtered by
	// the given parameters. Zero matches is a valid empty result.
	Match(ctx context.Context, embedding []float32, params MatchParams) ([]Match, error)
}

// Store is the full repository surface the engine depends on.
type Store interface {
	DocumentStore
	SectionStore
	Matcher

	// Close releases any resources held by the store.
	Close() error
}
