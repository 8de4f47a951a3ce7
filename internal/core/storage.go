package core

import (
	"context"
	"time"
)

type SessionRepository interface {
	// Load returns nil when no session exists for the id.
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, session Session) error
}

type ViolationRepository interface {
	Append(ctx context.Context, event ViolationEvent) error
}

type TurnRepository interface {
	Append(ctx context.Context, turn ConversationTurn) error
}

// CorpusFilters narrows structured corpus lookups. Zero values mean "no
// constraint" for the respective field.
type CorpusFilters struct {
	TeamID string
	// OnDay matches documents whose event falls on the same month/day in
	// any year ("on this day" queries).
	OnDay *time.Time
	Kinds []DocumentKind
}

func (f CorpusFilters) Empty() bool {
	return f.TeamID == "" && f.OnDay == nil && len(f.Kinds) == 0
}

type CorpusRepository interface {
	// Search runs a relevance-ranked full-text query over searchable text.
	// No matches is an empty slice, not an error.
	Search(ctx context.Context, terms []string, limit int) ([]RetrievalResult, error)
	// Match runs structured exact/range filters against document metadata.
	Match(ctx context.Context, filters CorpusFilters, limit int) ([]RetrievalResult, error)
	Get(ctx context.Context, id int64) (*KnowledgeDocument, error)
	Insert(ctx context.Context, doc KnowledgeDocument) (int64, error)
}
