package index_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/papercomputeco/folio/pkg/corpus"
	"github.com/papercomputeco/folio/pkg/embeddings"
	"github.com/papercomputeco/folio/pkg/eventstream"
	"github.com/papercomputeco/folio/pkg/index"
	"github.com/papercomputeco/folio/pkg/store"
	"github.com/papercomputeco/folio/pkg/store/inmemory"
	testutils "github.com/papercomputeco/folio/pkg/utils/test"
)

var _ = Describe("Indexer", func() {
	var (
		ctx       context.Context
		vault     *testutils.MockCorpus
		db        *inmemory.Store
		embedder  *testutils.MockEmbedder
		publisher *testutils.MockPublisher
		indexer   *index.Indexer
		opts      index.Options
	)

	newIndexer := func() *index.Indexer {
		return index.NewIndexer(index.Config{
			Provider:  vault,
			Store:     db,
			Embedder:  embedder,
			Publisher: publisher,
			Logger:    zap.NewNop(),
		})
	}

	BeforeEach(func() {
		ctx = context.Background()
		vault = testutils.NewMockCorpus()
		db = inmemory.NewStore()
		embedder = testutils.NewMockEmbedder()
		publisher = &testutils.MockPublisher{}
		opts = index.Options{}
		indexer = newIndexer()
	})

	It("indexes new documents with one section per paragraph", func() {
		vault.Documents["a.md"] = "first paragraph\n\nsecond paragraph"

		result, err := indexer.Sync(ctx, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Indexed).To(Equal(1))
		Expect(result.Updated).To(Equal(1))
		Expect(result.Errored).To(BeZero())

		doc, err := db.FindByPath(ctx, "a.md")
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Checksum).NotTo(BeNil())
		Expect(db.SectionsFor(doc.ID)).To(HaveLen(2))
	})

	It("is idempotent when nothing changed", func() {
		vault.Documents["a.md"] = "stable content"

		_, err := indexer.Sync(ctx, opts)
		Expect(err).NotTo(HaveOccurred())
		embeds := len(embedder.Calls)

		result, err := indexer.Sync(ctx, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Indexed).To(Equal(1))
		Expect(result.Updated).To(BeZero())
		Expect(embedder.Calls).To(HaveLen(embeds))
	})

	It("replaces all sections when content changes", func() {
		vault.Documents["a.md"] = "old one\n\nold two\n\nold three"
		_, err := indexer.Sync(ctx, opts)
		Expect(err).NotTo(HaveOccurred())

		vault.Documents["a.md"] = "the single new paragraph"
		result, err := indexer.Sync(ctx, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Updated).To(Equal(1))

		doc, err := db.FindByPath(ctx, "a.md")
		Expect(err).NotTo(HaveOccurred())

		sections := db.SectionsFor(doc.ID)
		Expect(sections).To(HaveLen(1))
		Expect(sections[0].Content).To(Equal("the single new paragraph"))
	})

	It("updates only the access flag when directory rules change", func() {
		vault.Documents["shared/a.md"] = "stable content"
		_, err := indexer.Sync(ctx, opts)
		Expect(err).NotTo(HaveOccurred())
		embeds := len(embedder.Calls)

		publicOpts := index.Options{Rules: corpus.Rules{PublicDirs: []string{"shared"}}}
		result, err := indexer.Sync(ctx, publicOpts)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Updated).To(Equal(1))

		doc, err := db.FindByPath(ctx, "shared/a.md")
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Public).To(BeTrue())
		Expect(embedder.Calls).To(HaveLen(embeds))
	})

	It("deletes index records whose document left the corpus", func() {
		vault.Documents["a.md"] = "staying"
		vault.Documents["b.md"] = "leaving"
		_, err := indexer.Sync(ctx, opts)
		Expect(err).NotTo(HaveOccurred())

		delete(vault.Documents, "b.md")
		result, err := indexer.Sync(ctx, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Deleted).To(Equal(1))

		_, err = db.FindByPath(ctx, "b.md")
		Expect(err).To(MatchError(store.ErrNotFound))
	})

	It("skips excluded directories entirely", func() {
		vault.Documents["drafts/a.md"] = "hidden"
		vault.Documents["b.md"] = "visible"

		result, err := indexer.Sync(ctx, index.Options{
			Rules: corpus.Rules{ExcludedDirs: []string{"drafts"}},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Indexed).To(Equal(1))

		_, err = db.FindByPath(ctx, "drafts/a.md")
		Expect(err).To(MatchError(store.ErrNotFound))
	})

	Describe("embedding failures", func() {
		It("counts the document as errored and keeps the null-checksum sentinel", func() {
			vault.Documents["a.md"] = "fine paragraph\n\nbad paragraph"
			vault.Documents["b.md"] = "healthy document"
			embedder.FailOn = "bad"

			result, err := indexer.Sync(ctx, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Errored).To(Equal(1))
			Expect(result.Indexed).To(Equal(1))

			doc, err := db.FindByPath(ctx, "a.md")
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.Checksum).To(BeNil())
		})

		It("retries the interrupted document on the next pass", func() {
			vault.Documents["a.md"] = "fine paragraph\n\nbad paragraph"
			embedder.FailOn = "bad"

			_, err := indexer.Sync(ctx, opts)
			Expect(err).NotTo(HaveOccurred())

			embedder.FailOn = ""
			result, err := indexer.Sync(ctx, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Errored).To(BeZero())
			Expect(result.Updated).To(Equal(1))

			doc, err := db.FindByPath(ctx, "a.md")
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.Checksum).NotTo(BeNil())
			Expect(db.SectionsFor(doc.ID)).To(HaveLen(2))
		})
	})

	Describe("moderation during indexing", func() {
		It("blocks flagged documents before any embedding", func() {
			vault.Documents["a.md"] = "andouille recipes"
			gate := &testutils.MockGate{FlagOn: []string{"andouille"}}

			moderated := index.NewIndexer(index.Config{
				Provider:  vault,
				Store:     db,
				Embedder:  embedder,
				Gate:      gate,
				Publisher: publisher,
				Logger:    zap.NewNop(),
			})

			result, err := moderated.Sync(ctx, index.Options{ModerateContent: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Errored).To(Equal(1))
			Expect(embedder.Calls).To(BeEmpty())
		})
	})

	Describe("overlapping passes", func() {
		It("rejects a second pass while one is running", func() {
			vault.Documents["a.md"] = "held paragraph"
			blocker := &blockingEmbedder{
				entered: make(chan struct{}),
				release: make(chan struct{}),
			}

			busy := index.NewIndexer(index.Config{
				Provider:  vault,
				Store:     db,
				Embedder:  blocker,
				Publisher: publisher,
				Logger:    zap.NewNop(),
			})

			done := make(chan error, 1)
			go func() {
				_, err := busy.Sync(ctx, opts)
				done <- err
			}()

			<-blocker.entered
			_, err := busy.Sync(ctx, opts)
			Expect(err).To(MatchError(index.ErrSyncInProgress))

			close(blocker.release)
			Eventually(done).Should(Receive(BeNil()))
		})
	})

	Describe("failure logging", func() {
		It("logs failed documents with a content preview", func() {
			core, logs := observer.New(zapcore.WarnLevel)
			vault.Documents["a.md"] = "the quick brown fox jumps over the lazy dog"
			embedder.Err = errors.New("provider returned status 500")

			noisy := index.NewIndexer(index.Config{
				Provider:  vault,
				Store:     db,
				Embedder:  embedder,
				Publisher: publisher,
				Logger:    zap.New(core),
			})

			result, err := noisy.Sync(ctx, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Errored).To(Equal(1))

			entries := logs.FilterMessage("document sync failed").All()
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].ContextMap()).To(HaveKeyWithValue(
				"preview", "the quick brown fox jumps over the lazy dog",
			))
		})
	})

	Describe("dangling cleanup failures", func() {
		It("counts a failed listing as errored", func() {
			vault.Documents["a.md"] = "content"

			broken := index.NewIndexer(index.Config{
				Provider:  vault,
				Store:     &listFailStore{Store: db},
				Embedder:  embedder,
				Publisher: publisher,
				Logger:    zap.NewNop(),
			})

			result, err := broken.Sync(ctx, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Indexed).To(Equal(1))
			Expect(result.Errored).To(Equal(1))
		})

		It("counts each failed dangling delete as errored", func() {
			vault.Documents["a.md"] = "staying"
			vault.Documents["b.md"] = "leaving"
			_, err := indexer.Sync(ctx, opts)
			Expect(err).NotTo(HaveOccurred())

			delete(vault.Documents, "b.md")
			broken := index.NewIndexer(index.Config{
				Provider:  vault,
				Store:     &deleteFailStore{Store: db},
				Embedder:  embedder,
				Publisher: publisher,
				Logger:    zap.NewNop(),
			})

			result, err := broken.Sync(ctx, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Errored).To(Equal(1))
			Expect(result.Deleted).To(BeZero())

			_, err = db.FindByPath(ctx, "b.md")
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("event publication", func() {
		It("publishes outcomes for indexed and deleted documents", func() {
			vault.Documents["a.md"] = "content"
			_, err := indexer.Sync(ctx, opts)
			Expect(err).NotTo(HaveOccurred())

			delete(vault.Documents, "a.md")
			_, err = indexer.Sync(ctx, opts)
			Expect(err).NotTo(HaveOccurred())

			outcomes := make([]string, 0, len(publisher.Events))
			for _, e := range publisher.Events {
				outcomes = append(outcomes, e.Outcome)
			}
			Expect(outcomes).To(Equal([]string{
				eventstream.OutcomeIndexed,
				eventstream.OutcomeDeleted,
			}))
		})
	})
})

// blockingEmbedder parks the first Embed call until release is closed so a
// pass can be held mid-flight.
type blockingEmbedder struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingEmbedder) Embed(context.Context, string) (*embeddings.Result, error) {
	close(b.entered)
	<-b.release
	return &embeddings.Result{Vector: []float32{0.1, 0.2, 0.3}, TokenCount: 1}, nil
}

func (b *blockingEmbedder) Close() error { return nil }

// listFailStore wraps a store and fails every full listing.
type listFailStore struct {
	*inmemory.Store
}

func (s *listFailStore) ListAll(context.Context) ([]store.DocumentRecord, error) {
	return nil, store.ErrFetch
}

// deleteFailStore wraps a store and fails every delete by path.
type deleteFailStore struct {
	*inmemory.Store
}

func (s *deleteFailStore) DeleteByPath(context.Context, string) error {
	return store.ErrFetch
}
