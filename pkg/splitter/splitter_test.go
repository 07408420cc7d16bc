package splitter_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/folio/pkg/splitter"
)

var _ = Describe("Split", func() {
	var s *splitter.Splitter

	BeforeEach(func() {
		s = splitter.New(zap.NewNop())
	})

	It("parses front matter and splits the body into paragraphs", func() {
		doc := "---\ntitle: Garden Notes\ntags:\n  - garden\n---\nFirst paragraph here.\n\nSecond paragraph here."

		meta, sections := s.Split(doc)
		Expect(meta).To(HaveKeyWithValue("title", "Garden Notes"))
		Expect(sections).To(Equal([]string{
			"First paragraph here.",
			"Second paragraph here.",
		}))
	})

	It("returns empty metadata for documents without front matter", func() {
		meta, sections := s.Split("Just a body.\n\nTwo paragraphs.")
		Expect(meta).To(BeEmpty())
		Expect(sections).To(HaveLen(2))
	})

	It("treats an unterminated fence as plain body", func() {
		doc := "---\ntitle: broken\nno closing fence\n\nstill the body"

		meta, sections := s.Split(doc)
		Expect(meta).To(BeEmpty())
		Expect(sections[0]).To(ContainSubstring("---"))
	})

	It("recovers from malformed YAML with empty metadata", func() {
		doc := "---\ntitle: [unclosed\n---\nThe body survives."

		meta, sections := s.Split(doc)
		Expect(meta).To(BeEmpty())
		Expect(sections).To(Equal([]string{"The body survives."}))
	})

	It("strips a leading byte order mark before the fence", func() {
		doc := "\ufeff---\ntitle: marked\n---\nbody text"

		meta, sections := s.Split(doc)
		Expect(meta).To(HaveKeyWithValue("title", "marked"))
		Expect(sections).To(Equal([]string{"body text"}))
	})

	It("handles windows line endings around the fences", func() {
		doc := "---\r\ntitle: crlf\r\n---\r\nbody text"

		meta, sections := s.Split(doc)
		Expect(meta).To(HaveKeyWithValue("title", "crlf"))
		Expect(sections).To(Equal([]string{"body text"}))
	})
})

var _ = Describe("SplitParagraphs", func() {
	It("splits on blank lines including whitespace-only ones", func() {
		body := "one\n\ntwo\n   \nthree"
		Expect(splitter.SplitParagraphs(body)).To(Equal([]string{"one", "two", "three"}))
	})

	It("drops empty segments and trims whitespace", func() {
		body := "\n\n  padded  \n\n\n"
		Expect(splitter.SplitParagraphs(body)).To(Equal([]string{"padded"}))
	})

	It("returns no sections for an empty body", func() {
		Expect(splitter.SplitParagraphs("")).To(BeEmpty())
	})

	It("keeps single-newline lines in the same paragraph", func() {
		body := "line one\nline two\n\nnext"
		sections := splitter.SplitParagraphs(body)
		Expect(sections).To(HaveLen(2))
		Expect(sections[0]).To(Equal("line one\nline two"))
	})
})
