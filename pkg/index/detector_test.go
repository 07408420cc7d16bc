package index_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/folio/pkg/index"
	"github.com/papercomputeco/folio/pkg/store"
)

var _ = Describe("Classify", func() {
	checksum := index.Checksum("current content")

	record := func(sum *string, public bool) *store.DocumentRecord {
		return &store.DocumentRecord{ID: "doc-1", Path: "a.md", Checksum: sum, Public: public}
	}

	It("classifies a document without a stored record as new", func() {
		Expect(index.Classify(nil, checksum, false)).To(Equal(index.StateNew))
	})

	It("classifies a matching checksum and access flag as unchanged", func() {
		Expect(index.Classify(record(&checksum, true), checksum, true)).To(Equal(index.StateUnchanged))
	})

	It("classifies a matching checksum with a differing access flag as access changed", func() {
		Expect(index.Classify(record(&checksum, false), checksum, true)).To(Equal(index.StateAccessChanged))
	})

	It("classifies a differing checksum as stale", func() {
		old := index.Checksum("previous content")
		Expect(index.Classify(record(&old, true), checksum, true)).To(Equal(index.StateStale))
	})

	It("classifies a nil stored checksum as stale regardless of access flag", func() {
		Expect(index.Classify(record(nil, true), checksum, true)).To(Equal(index.StateStale))
	})

	It("prefers stale over access changed when both differ", func() {
		old := index.Checksum("previous content")
		Expect(index.Classify(record(&old, false), checksum, true)).To(Equal(index.StateStale))
	})
})

var _ = Describe("Checksum", func() {
	It("is deterministic", func() {
		Expect(index.Checksum("same")).To(Equal(index.Checksum("same")))
	})

	It("changes with content", func() {
		Expect(index.Checksum("one")).NotTo(Equal(index.Checksum("two")))
	})
})
