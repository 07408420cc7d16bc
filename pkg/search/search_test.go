package search_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/folio/pkg/moderation"
	"github.com/papercomputeco/folio/pkg/search"
	"github.com/papercomputeco/folio/pkg/store"
	"github.com/papercomputeco/folio/pkg/store/inmemory"
	testutils "github.com/papercomputeco/folio/pkg/utils/test"
)

var _ = Describe("Retriever", func() {
	var (
		ctx      context.Context
		db       *inmemory.Store
		embedder *testutils.MockEmbedder
		params   store.MatchParams
	)

	BeforeEach(func() {
		ctx = context.Background()
		db = inmemory.NewStore()
		embedder = testutils.NewMockEmbedder()
		params = store.MatchParams{Threshold: 0.5, Count: 10}
	})

	newRetriever := func(gate moderation.Gate) *search.Retriever {
		return search.NewRetriever(search.Config{
			Store:    db,
			Embedder: embedder,
			Gate:     gate,
			Logger:   zap.NewNop(),
		})
	}

	seed := func(path, content string, embedding []float32) {
		id, err := db.UpsertByPath(ctx, path, store.DocumentUpsert{})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.Insert(ctx, store.SectionRecord{
			DocumentID: id,
			Content:    content,
			Embedding:  embedding,
		})).To(Succeed())
	}

	It("returns ranked matches hydrated with document paths", func() {
		seed("notes/a.md", "aligned section", []float32{1, 0, 0})
		seed("notes/b.md", "angled section", []float32{1, 1, 0})
		embedder.Embeddings["tell me about alignment"] = []float32{1, 0, 0}

		results, err := newRetriever(nil).Retrieve(ctx, "tell me about alignment", params)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(2))
		Expect(results[0].DocumentPath).To(Equal("notes/a.md"))
		Expect(results[0].Similarity).To(BeNumerically(">", results[1].Similarity))
	})

	It("returns an empty slice when nothing matches", func() {
		seed("a.md", "content", []float32{0, 1, 0})
		embedder.Embeddings["unrelated"] = []float32{1, 0, 0}

		results, err := newRetriever(nil).Retrieve(ctx, "unrelated", params)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(BeEmpty())
	})

	It("folds newlines out of the query before embedding", func() {
		_, err := newRetriever(nil).Retrieve(ctx, "line one\nline two", params)
		Expect(err).NotTo(HaveOccurred())
		Expect(embedder.Calls).To(ConsistOf("line one line two"))
	})

	It("rejects flagged queries before any embedding call", func() {
		gate := &testutils.MockGate{FlagOn: []string{"forbidden"}}

		_, err := newRetriever(gate).Retrieve(ctx, "forbidden question", params)

		var flagged *moderation.FlaggedContentError
		Expect(err).To(BeAssignableToTypeOf(flagged))
		Expect(embedder.Calls).To(BeEmpty())
	})

	It("wraps store failures in a RetrievalError", func() {
		failing := &failingMatcher{Store: db}
		r := search.NewRetriever(search.Config{
			Store:    failing,
			Embedder: embedder,
			Logger:   zap.NewNop(),
		})

		_, err := r.Retrieve(ctx, "anything", params)

		var retrievalErr *search.RetrievalError
		Expect(err).To(BeAssignableToTypeOf(retrievalErr))
	})
})

// failingMatcher wraps a store and fails every similarity query.
type failingMatcher struct {
	*inmemory.Store
}

func (f *failingMatcher) Match(context.Context, []float32, store.MatchParams) ([]store.Match, error) {
	return nil, store.ErrFetch
}
