package inmemory_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/folio/pkg/store"
	"github.com/papercomputeco/folio/pkg/store/inmemory"
)

var _ = Describe("Store", func() {
	var (
		s   *inmemory.Store
		ctx context.Context
	)

	BeforeEach(func() {
		s = inmemory.NewStore()
		ctx = context.Background()
	})

	Describe("documents", func() {
		It("returns ErrNotFound for an unknown path", func() {
			_, err := s.FindByPath(ctx, "missing.md")
			Expect(err).To(MatchError(store.ErrNotFound))
		})

		It("upserts and finds a document by path", func() {
			checksum := "abc"
			id, err := s.UpsertByPath(ctx, "notes/a.md", store.DocumentUpsert{
				Checksum: &checksum,
				Meta:     `{"title":"A"}`,
				Public:   true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(id).NotTo(BeEmpty())

			doc, err := s.FindByPath(ctx, "notes/a.md")
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.ID).To(Equal(id))
			Expect(*doc.Checksum).To(Equal("abc"))
			Expect(doc.Public).To(BeTrue())
		})

		It("keeps the ID stable across upserts of the same path", func() {
			first, err := s.UpsertByPath(ctx, "a.md", store.DocumentUpsert{})
			Expect(err).NotTo(HaveOccurred())

			second, err := s.UpsertByPath(ctx, "a.md", store.DocumentUpsert{})
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
		})

		It("applies partial updates without touching other fields", func() {
			checksum := "v1"
			_, err := s.UpsertByPath(ctx, "a.md", store.DocumentUpsert{Checksum: &checksum, Public: false})
			Expect(err).NotTo(HaveOccurred())

			public := true
			Expect(s.UpdateByPath(ctx, "a.md", store.DocumentUpdate{Public: &public})).To(Succeed())

			doc, err := s.FindByPath(ctx, "a.md")
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.Public).To(BeTrue())
			Expect(*doc.Checksum).To(Equal("v1"))
		})

		It("deletes a document and its sections", func() {
			id, err := s.UpsertByPath(ctx, "a.md", store.DocumentUpsert{})
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Insert(ctx, store.SectionRecord{DocumentID: id, Content: "text"})).To(Succeed())

			Expect(s.DeleteByPath(ctx, "a.md")).To(Succeed())

			_, err = s.FindByPath(ctx, "a.md")
			Expect(err).To(MatchError(store.ErrNotFound))
			Expect(s.SectionsFor(id)).To(BeEmpty())
		})

		It("lists documents ordered by path", func() {
			_, err := s.UpsertByPath(ctx, "b.md", store.DocumentUpsert{})
			Expect(err).NotTo(HaveOccurred())
			_, err = s.UpsertByPath(ctx, "a.md", store.DocumentUpsert{})
			Expect(err).NotTo(HaveOccurred())

			docs, err := s.ListAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(2))
			Expect(docs[0].Path).To(Equal("a.md"))
		})
	})

	Describe("Match", func() {
		var docID string

		BeforeEach(func() {
			var err error
			docID, err = s.UpsertByPath(ctx, "a.md", store.DocumentUpsert{})
			Expect(err).NotTo(HaveOccurred())

			insert := func(content string, embedding []float32) {
				Expect(s.Insert(ctx, store.SectionRecord{
					DocumentID: docID,
					Content:    content,
					Embedding:  embedding,
				})).To(Succeed())
			}

			// Aligned, orthogonal, and opposite vectors relative to the query.
			insert("a long enough section that points the same way as the query vector", []float32{1, 0, 0})
			insert("a long enough section that is orthogonal to the query vector here", []float32{0, 1, 0})
			insert("a long enough section pointing the opposite way from the query", []float32{-1, 0, 0})
			insert("short", []float32{1, 0, 0})
		})

		It("returns only sections above the similarity threshold", func() {
			matches, err := s.Match(ctx, []float32{1, 0, 0}, store.MatchParams{
				Threshold: 0.9,
				Count:     10,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(matches).To(HaveLen(2))
			for _, m := range matches {
				Expect(m.Similarity).To(BeNumerically(">=", 0.9))
			}
		})

		It("filters sections below the minimum content length", func() {
			matches, err := s.Match(ctx, []float32{1, 0, 0}, store.MatchParams{
				Threshold:        0.9,
				Count:            10,
				MinContentLength: 50,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(matches).To(HaveLen(1))
			Expect(matches[0].Content).NotTo(Equal("short"))
		})

		It("orders matches best first and caps at the count", func() {
			matches, err := s.Match(ctx, []float32{1, 1, 0}, store.MatchParams{
				Threshold: -1,
				Count:     2,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(matches).To(HaveLen(2))
			Expect(matches[0].Similarity).To(BeNumerically(">=", matches[1].Similarity))
		})

		It("returns an empty result when nothing clears the threshold", func() {
			matches, err := s.Match(ctx, []float32{0, 0, 1}, store.MatchParams{
				Threshold: 0.5,
				Count:     10,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(matches).To(BeEmpty())
		})
	})
})
