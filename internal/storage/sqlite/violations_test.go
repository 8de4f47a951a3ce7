package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/pitchside/internal/core"
)

func TestViolationsAppendOnlyOrdered(t *testing.T) {
	repo := NewViolationsRepo(newTestDB(t))
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		err := repo.Append(ctx, core.ViolationEvent{
			ID:        uuid.NewString(),
			SessionID: "s1",
			PatternID: fmt.Sprintf("pattern-%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	events, err := repo.BySession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, events, 3)
	for i, e := range events {
		require.Equal(t, fmt.Sprintf("pattern-%d", i), e.PatternID)
	}

	other, err := repo.BySession(ctx, "s2")
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestTurnsAppendAndRead(t *testing.T) {
	repo := NewTurnsRepo(newTestDB(t))
	ctx := context.Background()

	turn := core.ConversationTurn{
		ID:        uuid.NewString(),
		SessionID: "s1",
		PersonaID: "terrace-legend",
		Query:     "who scored in 1999?",
		Response:  "What a night that was.",
		Sources: []core.RetrievalResult{
			{DocumentID: 7, Title: "The Final", Score: 3.2, Snippet: "two goals in stoppage time"},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, repo.Append(ctx, turn))

	turns, err := repo.BySession(ctx, "s1", 10)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	require.Equal(t, turn.Query, turns[0].Query)
	require.Len(t, turns[0].Sources, 1)
	require.Equal(t, int64(7), turns[0].Sources[0].DocumentID)
}
