package answer_test

import (
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/folio/pkg/answer"
	"github.com/papercomputeco/folio/pkg/llm"
	"github.com/papercomputeco/folio/pkg/search"
	testutils "github.com/papercomputeco/folio/pkg/utils/test"
)

// fixedTokenizer charges a flat rate per section regardless of content.
type fixedTokenizer struct {
	perSection int
}

func (t fixedTokenizer) Count(string) int { return t.perSection }

var _ = Describe("Assembler", func() {
	var completer *testutils.MockCompleter

	BeforeEach(func() {
		completer = &testutils.MockCompleter{Response: "the answer"}
	})

	newAssembler := func(budget, perSectionTokens int) *answer.Assembler {
		return answer.NewAssembler(answer.Config{
			Completer:   completer,
			Tokenizer:   fixedTokenizer{perSection: perSectionTokens},
			TokenBudget: budget,
			Logger:      zap.NewNop(),
		})
	}

	results := func(contents ...string) []search.Result {
		out := make([]search.Result, 0, len(contents))
		for _, c := range contents {
			out = append(out, search.Result{Content: c})
		}
		return out
	}

	Describe("AssembleContext", func() {
		It("excludes the section that would reach the budget", func() {
			a := newAssembler(1500, 600)

			assembled := a.AssembleContext(results("one", "two", "three"))
			Expect(assembled).To(Equal("one\n---\ntwo"))
		})

		It("admits sections that stay strictly under the budget", func() {
			a := newAssembler(1501, 500)

			assembled := a.AssembleContext(results("one", "two", "three"))
			Expect(strings.Count(assembled, "\n---\n")).To(Equal(2))
		})

		It("stops at the first excluded section to keep a ranking prefix", func() {
			a := answer.NewAssembler(answer.Config{
				Completer:   completer,
				TokenBudget: 10,
				Logger:      zap.NewNop(),
			})

			long := strings.Repeat("word ", 50)
			assembled := a.AssembleContext(results("tiny", long, "tiny"))
			Expect(assembled).To(Equal("tiny"))
		})

		It("returns an empty context for no results", func() {
			Expect(newAssembler(1500, 600).AssembleContext(nil)).To(BeEmpty())
		})
	})

	Describe("Answer", func() {
		It("sends one user message carrying preamble, context, and question", func() {
			a := newAssembler(1500, 10)

			text, err := a.Answer(context.Background(), "what is folio?", results("a section"))
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("the answer"))

			Expect(completer.Prompts).To(HaveLen(1))
			messages := completer.Prompts[0]
			Expect(messages).To(HaveLen(1))
			Expect(messages[0].Role).To(Equal(llm.RoleUser))
			Expect(messages[0].Content).To(ContainSubstring("a section"))
			Expect(messages[0].Content).To(ContainSubstring("what is folio?"))
		})

		It("translates an empty completion into ErrNoAnswer", func() {
			completer.Err = llm.ErrEmptyCompletion
			a := newAssembler(1500, 10)

			_, err := a.Answer(context.Background(), "question", nil)
			Expect(err).To(MatchError(answer.ErrNoAnswer))
		})

		It("treats a whitespace-only completion as no answer", func() {
			completer.Response = "   \n"
			a := newAssembler(1500, 10)

			_, err := a.Answer(context.Background(), "question", nil)
			Expect(err).To(MatchError(answer.ErrNoAnswer))
		})
	})
})

var _ = Describe("HeuristicTokenizer", func() {
	It("uses the character estimate for dense prose", func() {
		text := strings.Repeat("abcdefgh", 10) // one long word, 80 chars
		Expect(answer.HeuristicTokenizer{}.Count(text)).To(Equal(20))
	})

	It("uses the word count when words are short", func() {
		Expect(answer.HeuristicTokenizer{}.Count("a b c d")).To(Equal(4))
	})
})
