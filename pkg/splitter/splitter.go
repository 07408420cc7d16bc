// Package splitter parses documents into front matter and paragraph sections.
//
// A document may open with a YAML front-matter block delimited by `---` lines.
// The block is parsed best-effort into key/value metadata; the remaining body
// is split on blank-line boundaries into the paragraph sections that become
// the units of embedding and retrieval.
package splitter

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// delimiter is the front-matter fence line.
const delimiter = "---"

var blankLines = regexp.MustCompile(`\n\s*\n`)

// Splitter parses raw document text.
type Splitter struct {
	logger *zap.Logger
}

// New creates a Splitter.
func New(logger *zap.Logger) *Splitter {
	return &Splitter{logger: logger}
}

// Split extracts optional front matter from raw and splits the remaining body
// into trimmed, non-empty paragraph sections in source order. A malformed
// front-matter block yields empty metadata; the parse error is logged, never
// fatal.
func (s *Splitter) Split(raw string) (map[string]any, []string) {
	meta, body := s.extractFrontMatter(raw)
	return meta, SplitParagraphs(body)
}

// extractFrontMatter returns the parsed front-matter metadata and the body
// that follows it. Documents without a leading fence pass through unchanged.
func (s *Splitter) extractFrontMatter(raw string) (map[string]any, string) {
	trimmed := strings.TrimPrefix(raw, "\uFEFF")

	lines := strings.SplitN(trimmed, "\n", 2)
	if strings.TrimRight(lines[0], "\r") != delimiter || len(lines) < 2 {
		return map[string]any{}, raw
	}

	rest := lines[1]
	end, ok := findFence(rest)
	if !ok {
		// Unterminated fence: treat the whole document as body.
		return map[string]any{}, raw
	}

	block := rest[:end.start]
	body := rest[end.afterEnd:]

	meta := map[string]any{}
	if err := yaml.Unmarshal([]byte(block), &meta); err != nil {
		s.logger.Warn("failed to parse front matter", zap.Error(err))
		return map[string]any{}, body
	}
	if meta == nil {
		meta = map[string]any{}
	}

	return meta, body
}

type fencePos struct {
	start    int
	afterEnd int
}

// findFence locates the closing `---` line in text, returning the offset of
// the line and the offset just past it.
func findFence(text string) (fencePos, bool) {
	offset := 0
	for {
		idx := strings.Index(text[offset:], "\n")
		var line string
		lineStart := offset
		if idx < 0 {
			line = text[offset:]
		} else {
			line = text[offset : offset+idx]
		}

		if strings.TrimRight(line, "\r") == delimiter {
			after := lineStart + len(line)
			if idx >= 0 {
				after = lineStart + idx + 1
			}
			return fencePos{start: lineStart, afterEnd: after}, true
		}

		if idx < 0 {
			return fencePos{}, false
		}
		offset += idx + 1
	}
}

// SplitParagraphs splits body text on blank-line boundaries into trimmed,
// non-empty paragraphs, preserving source order.
func SplitParagraphs(body string) []string {
	parts := blankLines.Split(body, -1)
	sections := make([]string, 0, len(parts))
	for _, part := range parts {
		if p := strings.TrimSpace(part); p != "" {
			sections = append(sections, p)
		}
	}
	return sections
}
