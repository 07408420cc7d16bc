// Package inmemory provides a map-backed store for tests and local demos.
package inmemory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/papercomputeco/folio/pkg/store"
)

// Store implements store.Store with in-process maps and an exact cosine scan.
type Store struct {
	mu        sync.RWMutex
	documents map[string]*store.DocumentRecord // keyed by path
	sections  map[string][]store.SectionRecord // keyed by document ID
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		documents: make(map[string]*store.DocumentRecord),
		sections:  make(map[string][]store.SectionRecord),
	}
}

func (s *Store) FindByPath(_ context.Context, path string) (*store.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[path]
	if !ok {
		return nil, store.ErrNotFound
	}

	cp := *doc
	return &cp, nil
}

func (s *Store) UpsertByPath(_ context.Context, path string, doc store.DocumentUpsert) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.documents[path]
	if !ok {
		existing = &store.DocumentRecord{
			ID:   uuid.NewString(),
			Path: path,
		}
		s.documents[path] = existing
	}

	existing.Checksum = doc.Checksum
	existing.Meta = doc.Meta
	existing.Public = doc.Public

	return existing.ID, nil
}

func (s *Store) UpdateByPath(_ context.Context, path string, update store.DocumentUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[path]
	if !ok {
		return store.ErrNotFound
	}

	if update.Checksum != nil {
		doc.Checksum = update.Checksum
	}
	if update.Public != nil {
		doc.Public = *update.Public
	}

	return nil
}

func (s *Store) DeleteByPath(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[path]
	if !ok {
		return nil
	}

	delete(s.sections, doc.ID)
	delete(s.documents, path)
	return nil
}

func (s *Store) ListAll(_ context.Context) ([]store.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]store.DocumentRecord, 0, len(s.documents))
	for _, doc := range s.documents {
		docs = append(docs, *doc)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

func (s *Store) DeleteByDocumentID(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sections, documentID)
	return nil
}

func (s *Store) Insert(_ context.Context, section store.SectionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sections[section.DocumentID] = append(s.sections[section.DocumentID], section)
	return nil
}

// SectionsFor returns the stored sections for a document ID. Tests use this
// to assert atomic section replacement.
func (s *Store) SectionsFor(documentID string) []store.SectionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.SectionRecord, len(s.sections[documentID]))
	copy(out, s.sections[documentID])
	return out
}

func (s *Store) Match(_ context.Context, embedding []float32, params store.MatchParams) ([]store.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []store.Match
	for docID, sections := range s.sections {
		for _, section := range sections {
			if len(section.Content) < params.MinContentLength {
				continue
			}
			sim := cosineSimilarity(embedding, section.Embedding)
			if sim < params.Threshold {
				continue
			}
			matches = append(matches, store.Match{
				DocumentID: docID,
				Content:    section.Content,
				Similarity: sim,
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Similarity > matches[j].Similarity })
	if params.Count > 0 && len(matches) > params.Count {
		matches = matches[:params.Count]
	}

	return matches, nil
}

func (s *Store) Close() error {
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

var _ store.Store = (*Store)(nil)
