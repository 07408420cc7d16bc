// Package search implements the read path: embed a query and rank stored
// sections by cosine similarity against it.
package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/papercomputeco/folio/pkg/embeddings"
	"github.com/papercomputeco/folio/pkg/moderation"
	"github.com/papercomputeco/folio/pkg/store"
)

// Result is one ranked section, hydrated with its parent document.
type Result struct {
	DocumentID   string  `json:"documentId"`
	DocumentPath string  `json:"documentPath"`
	Content      string  `json:"content"`
	Similarity   float64 `json:"similarity"`
}

// RetrievalError wraps a similarity query failure.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed: %v", e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Retriever embeds queries and matches them against the section store.
type Retriever struct {
	store    store.Store
	embedder embeddings.Embedder
	gate     moderation.Gate
	logger   *zap.Logger
}

// Config holds a Retriever's collaborators. Gate is optional and defaults
// to a no-op.
type Config struct {
	Store    store.Store
	Embedder embeddings.Embedder
	Gate     moderation.Gate
	Logger   *zap.Logger
}

// NewRetriever creates a Retriever from its collaborators.
func NewRetriever(c Config) *Retriever {
	gate := c.Gate
	if gate == nil {
		gate = moderation.NopGate{}
	}

	return &Retriever{
		store:    c.Store,
		embedder: c.Embedder,
		gate:     gate,
		logger:   c.Logger,
	}
}

// Retrieve embeds query and returns sections whose similarity clears
// params.Threshold, best first, at most params.Count. Zero matches is a
// valid empty result, not an error. The query is moderated before any
// embedding call is made.
func (r *Retriever) Retrieve(ctx context.Context, query string, params store.MatchParams) ([]Result, error) {
	if err := r.gate.Check(ctx, query); err != nil {
		return nil, err
	}

	// Embedding models treat newlines as strong separators; fold them so the
	// query embeds as one continuous thought.
	folded := strings.ReplaceAll(query, "\n", " ")

	embedded, err := r.embedder.Embed(ctx, folded)
	if err != nil {
		return nil, err
	}

	matches, err := r.store.Match(ctx, embedded.Vector, params)
	if err != nil {
		return nil, &RetrievalError{Err: err}
	}

	results, err := r.hydrate(ctx, matches)
	if err != nil {
		return nil, &RetrievalError{Err: err}
	}

	r.logger.Debug("retrieval complete",
		zap.Int("matches", len(results)),
		zap.Float64("threshold", params.Threshold),
	)

	return results, nil
}

// hydrate joins matches to their parent documents so callers get paths
// alongside section content.
func (r *Retriever) hydrate(ctx context.Context, matches []store.Match) ([]Result, error) {
	if len(matches) == 0 {
		return []Result{}, nil
	}

	docs, err := r.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	paths := make(map[string]string, len(docs))
	for _, doc := range docs {
		paths[doc.ID] = doc.Path
	}

	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		results = append(results, Result{
			DocumentID:   m.DocumentID,
			DocumentPath: paths[m.DocumentID],
			Content:      m.Content,
			Similarity:   m.Similarity,
		})
	}

	return results, nil
}
