package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sandevgo/pitchside/internal/core"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func seedCorpus(t *testing.T, repo *CorpusRepo) map[string]int64 {
	t.Helper()
	ctx := context.Background()

	ids := make(map[string]int64)
	docs := []core.KnowledgeDocument{
		{
			Kind:      core.KindMoment,
			Title:     "The 1999 Cup Final Comeback",
			Body:      "Two goals in stoppage time turned the 1999 cup final around in front of a stunned crowd.",
			TeamID:    "t1",
			EventDate: date(1999, time.May, 26),
		},
		{
			Kind:   core.KindLegend,
			Title:  "The One-Club Captain",
			Body:   "Eighteen seasons, one club. The captain lifted four league titles before retiring.",
			TeamID: "t1",
		},
		{
			Kind:      core.KindTrivia,
			Title:     "Fastest Hat-Trick",
			Body:      "The fastest hat-trick in club history took just four minutes and twelve seconds.",
			TeamID:    "t2",
			EventDate: date(2015, time.September, 1),
		},
	}
	for _, doc := range docs {
		id, err := repo.Insert(ctx, doc)
		require.NoError(t, err)
		ids[doc.Title] = id
	}
	return ids
}

func TestCorpusTitleRoundTrip(t *testing.T) {
	repo := NewCorpusRepo(newTestDB(t))
	ids := seedCorpus(t, repo)
	ctx := context.Background()

	results, err := repo.Search(ctx, []string{"1999", "cup", "final", "comeback"}, 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	require.Equal(t, ids["The 1999 Cup Final Comeback"], results[0].DocumentID)
}

func TestCorpusSearchScoresNonNegativeAndSorted(t *testing.T) {
	repo := NewCorpusRepo(newTestDB(t))
	seedCorpus(t, repo)
	ctx := context.Background()

	results, err := repo.Search(ctx, []string{"club", "captain", "history"}, 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for i, r := range results {
		require.GreaterOrEqual(t, r.Score, 0.0)
		if i > 0 {
			require.GreaterOrEqual(t, results[i-1].Score, r.Score)
		}
	}
}

func TestCorpusSearchNoMatches(t *testing.T) {
	repo := NewCorpusRepo(newTestDB(t))
	seedCorpus(t, repo)

	results, err := repo.Search(context.Background(), []string{"zzzzqqq"}, 5)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestCorpusMatchByTeam(t *testing.T) {
	repo := NewCorpusRepo(newTestDB(t))
	seedCorpus(t, repo)

	results, err := repo.Match(context.Background(), core.CorpusFilters{TeamID: "t1"}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		require.Equal(t, structuredScore, r.Score)
		require.NotEmpty(t, r.Snippet)
	}
}

func TestCorpusMatchOnDay(t *testing.T) {
	repo := NewCorpusRepo(newTestDB(t))
	ids := seedCorpus(t, repo)

	day := time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC)
	results, err := repo.Match(context.Background(), core.CorpusFilters{OnDay: &day}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, ids["Fastest Hat-Trick"], results[0].DocumentID)
}

func TestCorpusMatchByKind(t *testing.T) {
	repo := NewCorpusRepo(newTestDB(t))
	ids := seedCorpus(t, repo)

	results, err := repo.Match(context.Background(), core.CorpusFilters{
		TeamID: "t1",
		Kinds:  []core.DocumentKind{core.KindLegend},
	}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, ids["The One-Club Captain"], results[0].DocumentID)
}

func TestCorpusGet(t *testing.T) {
	repo := NewCorpusRepo(newTestDB(t))
	ids := seedCorpus(t, repo)
	ctx := context.Background()

	doc, err := repo.Get(ctx, ids["The 1999 Cup Final Comeback"])
	require.NoError(t, err)
	require.NotNil(t, doc)
	require.Equal(t, core.KindMoment, doc.Kind)
	require.Equal(t, "t1", doc.TeamID)
	require.NotNil(t, doc.EventDate)
	require.Equal(t, "1999-05-26", doc.EventDate.Format("2006-01-02"))
	// searchable_text derives from body+metadata at write time.
	require.Contains(t, doc.SearchableText, "stoppage time")
	require.Contains(t, doc.SearchableText, "t1")

	missing, err := repo.Get(ctx, 99999)
	require.NoError(t, err)
	require.Nil(t, missing)
}
