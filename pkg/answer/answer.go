// Package answer assembles retrieved sections into a token-budgeted context
// and asks a completion model to answer from that context alone.
package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/papercomputeco/folio/pkg/llm"
	"github.com/papercomputeco/folio/pkg/search"
)

// ErrNoAnswer means the model produced no usable completion.
var ErrNoAnswer = errors.New("no answer produced")

// DefaultPreamble frames the model's task before the assembled context.
const DefaultPreamble = `You are a helpful assistant. Answer the question using only the context sections below. If the context does not contain the answer, say you do not know.`

// sectionDelimiter separates context sections in the prompt.
const sectionDelimiter = "\n---\n"

// Assembler builds grounded prompts from retrieval results and completes
// them with an LLM.
type Assembler struct {
	completer llm.Completer
	tokenizer Tokenizer
	preamble  string
	budget    int
	logger    *zap.Logger
}

// Config holds an Assembler's collaborators and prompt settings. Tokenizer
// defaults to the heuristic counter; Preamble and TokenBudget default when
// zero.
type Config struct {
	Completer   llm.Completer
	Tokenizer   Tokenizer
	Preamble    string
	TokenBudget int
	Logger      *zap.Logger
}

// DefaultTokenBudget caps the assembled context when none is configured.
const DefaultTokenBudget = 1500

// NewAssembler creates an Assembler from its collaborators.
func NewAssembler(c Config) *Assembler {
	tokenizer := c.Tokenizer
	if tokenizer == nil {
		tokenizer = HeuristicTokenizer{}
	}

	preamble := c.Preamble
	if preamble == "" {
		preamble = DefaultPreamble
	}

	budget := c.TokenBudget
	if budget <= 0 {
		budget = DefaultTokenBudget
	}

	return &Assembler{
		completer: c.Completer,
		tokenizer: tokenizer,
		preamble:  preamble,
		budget:    budget,
		logger:    c.Logger,
	}
}

// AssembleContext packs sections into the token budget in ranked order. A
// section is excluded when adding it would reach or exceed the budget;
// packing stops at the first excluded section so the context stays a prefix
// of the ranking.
func (a *Assembler) AssembleContext(results []search.Result) string {
	var parts []string
	total := 0

	for _, r := range results {
		tokens := a.tokenizer.Count(r.Content)
		if total+tokens >= a.budget {
			break
		}
		total += tokens
		parts = append(parts, r.Content)
	}

	return strings.Join(parts, sectionDelimiter)
}

// Answer completes a grounded response to query from the given retrieval
// results. Returns ErrNoAnswer when the model yields nothing.
func (a *Assembler) Answer(ctx context.Context, query string, results []search.Result) (string, error) {
	contextText := a.AssembleContext(results)

	prompt := fmt.Sprintf("%s\n\nContext sections:\n%s\n\nQuestion: %s", a.preamble, contextText, query)

	a.logger.Debug("prompt assembled",
		zap.Int("sections", len(results)),
		zap.Int("promptChars", len(prompt)),
	)

	completion, err := a.completer.Complete(ctx, []llm.Message{llm.NewTextMessage(llm.RoleUser, prompt)})
	if err != nil {
		if errors.Is(err, llm.ErrEmptyCompletion) {
			return "", ErrNoAnswer
		}
		return "", err
	}

	if strings.TrimSpace(completion) == "" {
		return "", ErrNoAnswer
	}

	return completion, nil
}
