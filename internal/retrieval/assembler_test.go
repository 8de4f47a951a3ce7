package retrieval

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sandevgo/pitchside/internal/core"
)

// wordTokenizer keeps assembler tests deterministic and offline.
type wordTokenizer struct{}

func (wordTokenizer) Count(text string) int {
	return len(strings.Fields(text))
}

func (wordTokenizer) Truncate(text string, maxTokens int) string {
	fields := strings.Fields(text)
	if len(fields) <= maxTokens {
		return text
	}
	return strings.Join(fields[:maxTokens], " ")
}

func result(id int64, title, snippet string) core.RetrievalResult {
	return core.RetrievalResult{DocumentID: id, Title: title, Snippet: snippet}
}

func TestAssembleRespectsBudget(t *testing.T) {
	results := []core.RetrievalResult{
		result(1, "One", "alpha bravo charlie"),
		result(2, "Two", "delta echo foxtrot"),
		result(3, "Three", "golf hotel india"),
	}

	ctx := Assemble(results, 12, wordTokenizer{})
	require.LessOrEqual(t, ctx.Tokens, 12)
	require.Equal(t, ctx.Tokens, wordTokenizer{}.Count(ctx.Text))
}

func TestAssemblePreservesRankingOrder(t *testing.T) {
	results := []core.RetrievalResult{
		result(5, "First", "alpha"),
		result(2, "Second", "bravo"),
		result(9, "Third", "charlie"),
	}

	ctx := Assemble(results, 100, wordTokenizer{})
	require.Len(t, ctx.Results, 3)
	require.Equal(t, int64(5), ctx.Results[0].DocumentID)
	require.Equal(t, int64(2), ctx.Results[1].DocumentID)
	require.Equal(t, int64(9), ctx.Results[2].DocumentID)

	first := strings.Index(ctx.Text, "First")
	second := strings.Index(ctx.Text, "Second")
	third := strings.Index(ctx.Text, "Third")
	require.True(t, first < second && second < third)
}

func TestAssembleStopsAtFirstOversizeSnippet(t *testing.T) {
	results := []core.RetrievalResult{
		result(1, "One", "alpha bravo"),
		result(2, "Two", strings.Repeat("word ", 50)),
		result(3, "Three", "short"),
	}

	ctx := Assemble(results, 10, wordTokenizer{})
	// Packing stops at the oversize snippet; later snippets do not leapfrog.
	require.Len(t, ctx.Results, 1)
	require.Equal(t, int64(1), ctx.Results[0].DocumentID)
}

func TestAssembleTruncatesOversizeTopResult(t *testing.T) {
	results := []core.RetrievalResult{
		result(1, "Epic", strings.Repeat("word ", 100)),
	}

	ctx := Assemble(results, 8, wordTokenizer{})
	require.Len(t, ctx.Results, 1)
	require.LessOrEqual(t, ctx.Tokens, 8)
	require.NotEmpty(t, ctx.Text)
}

func TestAssembleEmptyInputs(t *testing.T) {
	require.Empty(t, Assemble(nil, 100, wordTokenizer{}).Results)
	require.Empty(t, Assemble([]core.RetrievalResult{result(1, "One", "x")}, 0, wordTokenizer{}).Results)
}
