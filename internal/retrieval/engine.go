// Package retrieval turns a chat query into a bounded, ranked grounding
// context drawn from the knowledge corpus.
package retrieval

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sandevgo/pitchside/internal/core"
	"github.com/sandevgo/pitchside/pkg/log"
)

// TeamResolver maps free-text team mentions to team ids. Implemented by the
// enrichment feeds client; failures surface as ok=false so retrieval
// degrades to text-only.
type TeamResolver interface {
	ResolveTeam(ctx context.Context, text string) (teamID string, ok bool)
}

type Engine struct {
	corpus   core.CorpusRepository
	resolver TeamResolver
	topK     int
	now      func() time.Time
}

func NewEngine(corpus core.CorpusRepository, resolver TeamResolver, topK int) *Engine {
	return &Engine{
		corpus:   corpus,
		resolver: resolver,
		topK:     topK,
		now:      time.Now,
	}
}

// Retrieve runs the full-text and structured legs, merges and dedupes the
// hits, and returns at most topK results sorted by score descending with
// document id as the deterministic tie-break. No matches is an empty
// result, never an error; a store failure is wrapped as RetrievalError.
func (e *Engine) Retrieve(ctx context.Context, query string, filters core.CorpusFilters) ([]core.RetrievalResult, error) {
	logger := log.FromCtx(ctx)

	terms := ExtractTerms(query)

	if filters.OnDay == nil {
		if day, ok := DetectOnThisDay(query, e.now()); ok {
			filters.OnDay = &day
		}
	}
	if filters.TeamID == "" && e.resolver != nil {
		if teamID, ok := e.resolver.ResolveTeam(ctx, query); ok {
			filters.TeamID = teamID
		}
	}

	var textHits, structHits []core.RetrievalResult

	g, gctx := errgroup.WithContext(ctx)
	if len(terms) > 0 {
		g.Go(func() error {
			hits, err := e.corpus.Search(gctx, terms, e.topK)
			textHits = hits
			return err
		})
	}
	if !filters.Empty() {
		g.Go(func() error {
			hits, err := e.corpus.Match(gctx, filters, e.topK)
			structHits = hits
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &core.RetrievalError{Err: err}
	}

	merged := mergeResults(textHits, structHits)
	if len(merged) > e.topK {
		merged = merged[:e.topK]
	}

	logger.Debug().
		Int("terms", len(terms)).
		Int("text_hits", len(textHits)).
		Int("struct_hits", len(structHits)).
		Int("returned", len(merged)).
		Msg("retrieval complete")

	return merged, nil
}

// mergeResults dedupes by document id keeping the highest score, then
// orders by score descending, id ascending.
func mergeResults(sets ...[]core.RetrievalResult) []core.RetrievalResult {
	best := make(map[int64]core.RetrievalResult)
	for _, set := range sets {
		for _, r := range set {
			if cur, ok := best[r.DocumentID]; !ok || r.Score > cur.Score {
				best[r.DocumentID] = r
			}
		}
	}

	merged := make([]core.RetrievalResult, 0, len(best))
	for _, r := range best {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return merged[i].DocumentID < merged[j].DocumentID
	})
	return merged
}
