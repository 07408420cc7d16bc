package answer

import "strings"

// Tokenizer estimates the token cost of a text for budget accounting.
type Tokenizer interface {
	Count(text string) int
}

// HeuristicTokenizer approximates model tokenization without a model
// vocabulary: the larger of word count and len/4, which tracks closely
// enough for budgeting prose.
type HeuristicTokenizer struct{}

func (HeuristicTokenizer) Count(text string) int {
	words := len(strings.Fields(text))
	chars := len(text) / 4
	if chars > words {
		return chars
	}
	return words
}

var _ Tokenizer = HeuristicTokenizer{}
