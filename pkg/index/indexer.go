// Package index implements the write path of the vector index: change
// detection, section replacement, embedding upserts, and dangling-record
// cleanup.
//
// Each sync pass walks the corpus in scan order and drives every document
// through a small state machine (see Classify). All provider calls block the
// loop; there is no fan-out across documents or sections. The per-document
// unit of atomicity is delete-all-then-insert-all section replacement,
// guarded by the null-checksum sentinel written before any section work.
package index

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/papercomputeco/folio/pkg/corpus"
	"github.com/papercomputeco/folio/pkg/embeddings"
	"github.com/papercomputeco/folio/pkg/eventstream"
	"github.com/papercomputeco/folio/pkg/moderation"
	"github.com/papercomputeco/folio/pkg/splitter"
	"github.com/papercomputeco/folio/pkg/store"
)

// Indexer orchestrates sync passes over the corpus.
type Indexer struct {
	provider  corpus.Provider
	store     store.Store
	embedder  embeddings.Embedder
	gate      moderation.Gate
	splitter  *splitter.Splitter
	publisher eventstream.Publisher
	logger    *zap.Logger

	// running serializes sync passes; overlapping invocations are rejected.
	running sync.Mutex
}

// Config holds the collaborators an Indexer needs. All fields are required
// except Gate and Publisher, which default to no-ops.
type Config struct {
	Provider  corpus.Provider
	Store     store.Store
	Embedder  embeddings.Embedder
	Gate      moderation.Gate
	Publisher eventstream.Publisher
	Logger    *zap.Logger
}

// Options is the immutable per-pass snapshot of sync settings.
type Options struct {
	// Rules are the directory membership rules applied to this pass.
	Rules corpus.Rules

	// ModerateContent gates document bodies through the moderation provider
	// before they are embedded.
	ModerateContent bool
}

// NewIndexer creates an Indexer from its collaborators.
func NewIndexer(c Config) *Indexer {
	gate := c.Gate
	if gate == nil {
		gate = moderation.NopGate{}
	}

	publisher := c.Publisher
	if publisher == nil {
		publisher = nopPublisher{}
	}

	return &Indexer{
		provider:  c.Provider,
		store:     c.Store,
		embedder:  c.Embedder,
		gate:      gate,
		splitter:  splitter.New(c.Logger),
		publisher: publisher,
		logger:    c.Logger,
	}
}

// outcome tags the result of processing one document. Outcomes are
// accumulated by Sync; errors never cross the per-document boundary.
type outcome int

const (
	outcomeUnchanged outcome = iota
	outcomeAccessChanged
	outcomeReindexed
)

// Sync runs one full pass: scan, per-document processing in scan order, then
// dangling-record cleanup. Per-document failures are logged and counted, not
// propagated. Returns ErrSyncInProgress when another pass is running.
func (ix *Indexer) Sync(ctx context.Context, opts Options) (*Result, error) {
	if !ix.running.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer ix.running.Unlock()

	docs, err := corpus.Scan(ctx, ix.provider, opts.Rules)
	if err != nil {
		return nil, err
	}

	ix.logger.Info("sync pass started", zap.Int("documents", len(docs)))

	result := &Result{}
	scanned := make(map[string]bool, len(docs))

	for _, doc := range docs {
		scanned[doc.Path] = true

		out, sections, content, err := ix.syncDocument(ctx, doc.Path, opts)
		if err != nil {
			ix.recordFailure(ctx, doc.Path, content, err, result)
			continue
		}

		result.Indexed++
		switch out {
		case outcomeAccessChanged:
			result.Updated++
			ix.publish(ctx, doc.Path, eventstream.OutcomeAccessChanged, 0)
		case outcomeReindexed:
			result.Updated++
			ix.publish(ctx, doc.Path, eventstream.OutcomeIndexed, sections)
		}
	}

	ix.cleanupDangling(ctx, scanned, result)

	ix.logger.Info("sync pass finished",
		zap.Int("indexed", result.Indexed),
		zap.Int("updated", result.Updated),
		zap.Int("errored", result.Errored),
		zap.Int("deleted", result.Deleted),
	)

	return result, nil
}

// syncDocument drives one document through the state machine, returning its
// outcome, the number of sections committed on reindex, and the document
// content so failures can be logged with a preview.
func (ix *Indexer) syncDocument(ctx context.Context, path string, opts Options) (outcome, int, string, error) {
	content, err := ix.provider.ReadDocument(ctx, path)
	if err != nil {
		return 0, 0, "", &ReindexError{Path: path, Err: err}
	}

	public := opts.Rules.Public(path)
	checksum := Checksum(content)

	stored, err := ix.store.FindByPath(ctx, path)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return 0, 0, content, &ReindexError{Path: path, Err: err}
	}

	switch Classify(stored, checksum, public) {
	case StateUnchanged:
		return outcomeUnchanged, 0, content, nil

	case StateAccessChanged:
		if err := ix.store.UpdateByPath(ctx, path, store.DocumentUpdate{Public: &public}); err != nil {
			return 0, 0, content, &ReindexError{Path: path, Err: err}
		}
		ix.logger.Debug("access flag updated", zap.String("path", path), zap.Bool("public", public))
		return outcomeAccessChanged, 0, content, nil

	case StateStale:
		// Old sections go first so a failed reindex never leaves a mix of
		// old and new paragraphs behind the sentinel.
		if err := ix.store.DeleteByDocumentID(ctx, stored.ID); err != nil {
			return 0, 0, content, &ReindexError{Path: path, Err: err}
		}
	}

	sections, err := ix.reindex(ctx, path, content, checksum, public, opts)
	if err != nil {
		return 0, 0, content, err
	}

	return outcomeReindexed, sections, content, nil
}

// reindex fully rebuilds a document's index entry. The document row is
// upserted with a null checksum before any section is touched; the checksum
// is only set after every section committed. A crash or error in between
// leaves the sentinel, so the next pass reprocesses the document instead of
// trusting partial data.
func (ix *Indexer) reindex(ctx context.Context, path, content, checksum string, public bool, opts Options) (int, error) {
	if opts.ModerateContent {
		if err := ix.gate.Check(ctx, content); err != nil {
			return 0, &ReindexError{Path: path, Err: err}
		}
	}

	meta, sections := ix.splitter.Split(content)
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return 0, &ReindexError{Path: path, Err: err}
	}

	id, err := ix.store.UpsertByPath(ctx, path, store.DocumentUpsert{
		Checksum: nil,
		Meta:     string(metaJSON),
		Public:   public,
	})
	if err != nil {
		return 0, &ReindexError{Path: path, Err: err}
	}

	for _, section := range sections {
		embedded, err := ix.embedder.Embed(ctx, section)
		if err != nil {
			return 0, &ReindexError{Path: path, Err: err}
		}

		if err := ix.store.Insert(ctx, store.SectionRecord{
			DocumentID: id,
			Content:    section,
			TokenCount: embedded.TokenCount,
			Embedding:  embedded.Vector,
		}); err != nil {
			return 0, &ReindexError{Path: path, Err: err}
		}
	}

	if err := ix.store.UpdateByPath(ctx, path, store.DocumentUpdate{Checksum: &checksum}); err != nil {
		return 0, &ReindexError{Path: path, Err: err}
	}

	ix.logger.Debug("document reindexed",
		zap.String("path", path),
		zap.Int("sections", len(sections)),
	)

	return len(sections), nil
}

// cleanupDangling deletes every stored document whose path was absent from
// the completed scan. This is how corpus deletions propagate to the index.
func (ix *Indexer) cleanupDangling(ctx context.Context, scanned map[string]bool, result *Result) {
	stored, err := ix.store.ListAll(ctx)
	if err != nil {
		cleanupErr := &DanglingCleanupError{Err: err}
		ix.logger.Warn("dangling cleanup failed", zap.Error(cleanupErr))
		result.Errored++
		return
	}

	for _, doc := range stored {
		if scanned[doc.Path] {
			continue
		}

		if err := ix.store.DeleteByPath(ctx, doc.Path); err != nil {
			cleanupErr := &DanglingCleanupError{Err: err}
			ix.logger.Warn("dangling delete failed",
				zap.String("path", doc.Path),
				zap.Error(cleanupErr),
			)
			result.Errored++
			continue
		}

		result.Deleted++
		ix.publish(ctx, doc.Path, eventstream.OutcomeDeleted, 0)
		ix.logger.Debug("dangling document deleted", zap.String("path", doc.Path))
	}
}

func (ix *Indexer) recordFailure(ctx context.Context, path, content string, err error, result *Result) {
	result.Errored++
	ix.logger.Warn("document sync failed",
		zap.String("path", path),
		zap.String("preview", moderation.Preview(content)),
		zap.Error(err),
	)

	event := eventstream.NewEvent(path, eventstream.OutcomeErrored)
	event.Error = err.Error()
	if pubErr := ix.publisher.PublishDocument(ctx, event); pubErr != nil {
		ix.logger.Warn("event publish failed", zap.String("path", path), zap.Error(pubErr))
	}
}

func (ix *Indexer) publish(ctx context.Context, path, outcome string, sections int) {
	event := eventstream.NewEvent(path, outcome)
	event.Sections = sections
	if err := ix.publisher.PublishDocument(ctx, event); err != nil {
		ix.logger.Warn("event publish failed", zap.String("path", path), zap.Error(err))
	}
}

// nopPublisher avoids importing eventstream/nop here and keeps the zero
// Config usable in tests.
type nopPublisher struct{}

func (nopPublisher) PublishDocument(context.Context, *eventstream.DocumentSyncedEvent) error {
	return nil
}
func (nopPublisher) Close() error { return nil }
