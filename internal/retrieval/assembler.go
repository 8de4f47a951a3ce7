package retrieval

import (
	"fmt"
	"strings"

	"github.com/sandevgo/pitchside/internal/core"
)

// BoundedContext is the prompt-ready slice of retrieval output. Tokens is
// the measured size of Text and never exceeds the budget it was built with.
type BoundedContext struct {
	Results []core.RetrievalResult
	Text    string
	Tokens  int
}

// Assemble greedily packs results, in the engine's ranked order, into a
// context no larger than budget tokens. Snippets are never split across
// documents; the single exception is the top-ranked snippet, which is
// truncated to fit when it alone exceeds the budget. Packing stops at the
// first snippet that would not fit, preserving relative ranking.
func Assemble(results []core.RetrievalResult, budget int, tk Tokenizer) BoundedContext {
	var out BoundedContext
	if budget <= 0 || len(results) == 0 {
		return out
	}

	var sb strings.Builder
	for i, r := range results {
		block := formatBlock(i, r)
		size := tk.Count(block)

		if out.Tokens+size > budget {
			if i > 0 {
				break
			}
			// Top result alone blows the budget: keep a truncated cut so
			// the best match still grounds the answer.
			block = tk.Truncate(block, budget)
			size = tk.Count(block)
			if size > budget || block == "" {
				return out
			}
		}

		sb.WriteString(block)
		out.Tokens += size
		out.Results = append(out.Results, r)
	}

	out.Text = sb.String()
	return out
}

func formatBlock(index int, r core.RetrievalResult) string {
	var sb strings.Builder
	if index > 0 {
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("[%d] %s: %s", index+1, r.Title, r.Snippet))
	return sb.String()
}
