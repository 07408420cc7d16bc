package index

import "github.com/papercomputeco/folio/pkg/store"

// State classifies a scanned document against its stored record. The
// classification is derived on every pass; only the checksum and public flag
// are persisted.
type State int

const (
	// StateNew means no prior record exists: full reindex.
	StateNew State = iota

	// StateUnchanged means checksum and public flag both match: no action.
	StateUnchanged

	// StateAccessChanged means the checksum matches but the public flag
	// differs: update only the access flag.
	StateAccessChanged

	// StateStale means the checksum differs from a prior record: delete the
	// existing sections, then fall through to a full reindex.
	StateStale
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateUnchanged:
		return "unchanged"
	case StateAccessChanged:
		return "access_changed"
	case StateStale:
		return "stale"
	default:
		return "unknown"
	}
}

// Classify derives the sync state for a document given its stored record (nil
// when absent), its current content checksum, and its current public flag.
//
// A stored record with a nil checksum carries the "sections not fully
// committed" sentinel and always classifies as Stale, so an interrupted
// reindex is retried from scratch on the next pass.
func Classify(stored *store.DocumentRecord, checksum string, public bool) State {
	if stored == nil {
		return StateNew
	}

	if stored.Checksum == nil || *stored.Checksum != checksum {
		return StateStale
	}

	if stored.Public != public {
		return StateAccessChanged
	}

	return StateUnchanged
}
