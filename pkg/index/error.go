package index

import (
	"errors"
	"fmt"
)

// ErrSyncInProgress is returned when a sync pass is requested while another
// is still running. Passes are serialized; overlapping runs are rejected,
// never interleaved.
var ErrSyncInProgress = errors.New("sync pass already in progress")

// ReindexError wraps any failure inside a single document's reindex.
type ReindexError struct {
	Path string
	Err  error
}

func (e *ReindexError) Error() string {
	return fmt.Sprintf("reindexing %s: %v", e.Path, e.Err)
}

func (e *ReindexError) Unwrap() error {
	return e.Err
}

// DanglingCleanupError wraps a failure listing or deleting stray records.
type DanglingCleanupError struct {
	Err error
}

func (e *DanglingCleanupError) Error() string {
	return fmt.Sprintf("dangling cleanup: %v", e.Err)
}

func (e *DanglingCleanupError) Unwrap() error {
	return e.Err
}
