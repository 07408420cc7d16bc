// Package corpus provides access to the document corpus being indexed.
//
// The engine never reaches into the host filesystem on its own: a Provider is
// injected at construction and is the only way documents are enumerated and
// read. Rules describe the directory-membership policy (exclusion and public
// classification) applied during a scan.
package corpus

import (
	"context"
	"path"
	"strings"
)

// Document identifies one corpus item by its stable path. The path is the
// document's sole identity across scans.
type Document struct {
	Path string
}

// Provider enumerates and reads corpus documents.
type Provider interface {
	// ListDocuments returns all documents in the corpus, in a stable order.
	ListDocuments(ctx context.Context) ([]Document, error)

	// ReadDocument returns the raw text content of the document at path.
	ReadDocument(ctx context.Context, path string) (string, error)
}

// Rules holds the directory membership rules applied during a scan.
type Rules struct {
	// ExcludedDirs are path prefixes skipped entirely.
	ExcludedDirs []string

	// PublicDirs are path prefixes whose documents are marked public.
	PublicDirs []string
}

// normalizePath canonicalizes a path for prefix comparison: forward slashes,
// no leading "./", no trailing "/".
func normalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(p)
	p = strings.TrimPrefix(p, "./")
	if p == "." {
		return ""
	}
	return strings.TrimSuffix(p, "/")
}

// Excluded reports whether the document path falls under any excluded prefix.
func (r Rules) Excluded(docPath string) bool {
	return matchesAny(docPath, r.ExcludedDirs)
}

// Public reports whether the document path falls under any public prefix.
func (r Rules) Public(docPath string) bool {
	return matchesAny(docPath, r.PublicDirs)
}

func matchesAny(docPath string, prefixes []string) bool {
	p := normalizePath(docPath)
	for _, prefix := range prefixes {
		n := normalizePath(prefix)
		if n == "" {
			continue
		}
		if p == n || strings.HasPrefix(p, n+"/") {
			return true
		}
	}
	return false
}

// Scan enumerates the provider's documents and drops those under an excluded
// prefix, preserving the provider's order. It has no side effects.
func Scan(ctx context.Context, provider Provider, rules Rules) ([]Document, error) {
	docs, err := provider.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}

	kept := make([]Document, 0, len(docs))
	for _, doc := range docs {
		if rules.Excluded(doc.Path) {
			continue
		}
		kept = append(kept, doc)
	}

	return kept, nil
}
