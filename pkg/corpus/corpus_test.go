package corpus_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/folio/pkg/corpus"
)

var _ = Describe("Rules", func() {
	rules := corpus.Rules{
		ExcludedDirs: []string{"drafts", "private/journal"},
		PublicDirs:   []string{"shared"},
	}

	It("excludes documents under an excluded prefix", func() {
		Expect(rules.Excluded("drafts/wip.md")).To(BeTrue())
		Expect(rules.Excluded("private/journal/2026/jan.md")).To(BeTrue())
	})

	It("does not exclude siblings that merely share a name prefix", func() {
		Expect(rules.Excluded("drafts2/done.md")).To(BeFalse())
	})

	It("marks documents under a public prefix", func() {
		Expect(rules.Public("shared/howto.md")).To(BeTrue())
		Expect(rules.Public("private/howto.md")).To(BeFalse())
	})

	It("normalizes separators and leading dots before matching", func() {
		Expect(rules.Excluded("./drafts/wip.md")).To(BeTrue())
		Expect(rules.Excluded(`drafts\wip.md`)).To(BeTrue())
	})
})

var _ = Describe("Scan", func() {
	It("drops excluded documents while preserving provider order", func() {
		provider := &staticProvider{paths: []string{"b.md", "drafts/x.md", "a.md"}}

		docs, err := corpus.Scan(context.Background(), provider, corpus.Rules{
			ExcludedDirs: []string{"drafts"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(docs).To(Equal([]corpus.Document{{Path: "b.md"}, {Path: "a.md"}}))
	})
})

var _ = Describe("FilesystemProvider", func() {
	var root string

	writeFile := func(rel, content string) {
		path := filepath.Join(root, filepath.FromSlash(rel))
		Expect(os.MkdirAll(filepath.Dir(path), 0o755)).To(Succeed())
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
	}

	BeforeEach(func() {
		root = GinkgoT().TempDir()
	})

	It("errors when the root does not exist", func() {
		_, err := corpus.NewFilesystemProvider(filepath.Join(root, "nope"))
		Expect(err).To(HaveOccurred())
	})

	It("lists only text documents, skipping dotfiles and dot-directories", func() {
		writeFile("a.md", "alpha")
		writeFile("sub/b.txt", "beta")
		writeFile("sub/c.png", "binary")
		writeFile(".obsidian/cache.md", "hidden")
		writeFile(".hidden.md", "hidden")

		provider, err := corpus.NewFilesystemProvider(root)
		Expect(err).NotTo(HaveOccurred())

		docs, err := provider.ListDocuments(context.Background())
		Expect(err).NotTo(HaveOccurred())

		paths := make([]string, 0, len(docs))
		for _, d := range docs {
			paths = append(paths, d.Path)
		}
		Expect(paths).To(ConsistOf("a.md", "sub/b.txt"))
	})

	It("reads a document by its slash-relative path", func() {
		writeFile("sub/b.md", "the content")

		provider, err := corpus.NewFilesystemProvider(root)
		Expect(err).NotTo(HaveOccurred())

		content, err := provider.ReadDocument(context.Background(), "sub/b.md")
		Expect(err).NotTo(HaveOccurred())
		Expect(content).To(Equal("the content"))
	})
})

// staticProvider serves a fixed list of paths in order.
type staticProvider struct {
	paths []string
}

func (p *staticProvider) ListDocuments(context.Context) ([]corpus.Document, error) {
	docs := make([]corpus.Document, 0, len(p.paths))
	for _, path := range p.paths {
		docs = append(docs, corpus.Document{Path: path})
	}
	return docs, nil
}

func (p *staticProvider) ReadDocument(_ context.Context, path string) (string, error) {
	return "", os.ErrNotExist
}
