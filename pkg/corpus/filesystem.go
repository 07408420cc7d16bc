package corpus

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// textExtensions are the file extensions the filesystem provider treats as
// corpus documents.
var textExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
}

// FilesystemProvider serves a corpus from a directory tree on disk.
// Document paths are slash-separated and relative to the root.
type FilesystemProvider struct {
	root string
}

// NewFilesystemProvider creates a provider rooted at the given directory.
func NewFilesystemProvider(root string) (*FilesystemProvider, error) {
	if root == "" {
		return nil, fmt.Errorf("corpus root is required")
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("corpus root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus root %s is not a directory", root)
	}

	return &FilesystemProvider{root: root}, nil
}

// Root returns the root directory this provider scans.
func (p *FilesystemProvider) Root() string {
	return p.root
}

// ListDocuments walks the root and returns every text document, in lexical
// walk order. Dotfiles and dot-directories are skipped.
func (p *FilesystemProvider) ListDocuments(ctx context.Context) ([]Document, error) {
	var docs []Document

	err := filepath.WalkDir(p.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		name := d.Name()
		if d.IsDir() {
			if path != p.root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}
		if !textExtensions[strings.ToLower(filepath.Ext(name))] {
			return nil
		}

		rel, err := filepath.Rel(p.root, path)
		if err != nil {
			return err
		}

		docs = append(docs, Document{Path: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking corpus root %s: %w", p.root, err)
	}

	return docs, nil
}

// ReadDocument reads the raw content of the document at the given
// root-relative path.
func (p *FilesystemProvider) ReadDocument(_ context.Context, docPath string) (string, error) {
	data, err := os.ReadFile(filepath.Join(p.root, filepath.FromSlash(docPath)))
	if err != nil {
		return "", fmt.Errorf("reading document %s: %w", docPath, err)
	}
	return string(data), nil
}

var _ Provider = (*FilesystemProvider)(nil)
