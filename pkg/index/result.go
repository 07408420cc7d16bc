package index

import "fmt"

// Result contains aggregate statistics from one sync pass. Per-document
// outcomes are tallied here rather than propagated as errors; a failing
// document never aborts the pass.
type Result struct {
	// Indexed counts documents handled successfully, including unchanged ones.
	Indexed int

	// Updated counts documents whose index state changed: new content,
	// first-time indexing, or an access flag change.
	Updated int

	// Errored counts documents whose processing failed, plus dangling
	// cleanup failures.
	Errored int

	// Deleted counts dangling records removed because their path left the corpus.
	Deleted int
}

// Summary returns a human-readable summary of the sync result.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"Sync complete: %d indexed (%d updated), %d errored, %d dangling deleted",
		r.Indexed, r.Updated, r.Errored, r.Deleted,
	)
}
