package core

import (
	"fmt"
	"time"
)

const (
	AppName      = "Pitchside"
	AppVersion   = "0.1.0"
	AppUserAgent = "Pitchside/0.1"
)

// SessionState is the security posture of a conversation session.
type SessionState string

const (
	StateNormal    SessionState = "NORMAL"
	StateWarned    SessionState = "WARNED"
	StateCautious  SessionState = "CAUTIOUS"
	StateEscalated SessionState = "ESCALATED"
	StateProbation SessionState = "PROBATION"
)

// ParseSessionState validates a persisted state value. Anything outside the
// known set is reported so callers can recover the session.
func ParseSessionState(raw string) (SessionState, error) {
	switch s := SessionState(raw); s {
	case StateNormal, StateWarned, StateCautious, StateEscalated, StateProbation:
		return s, nil
	default:
		return "", fmt.Errorf("unknown session state %q", raw)
	}
}

type Session struct {
	ID             string       `json:"id"`
	State          SessionState `json:"state"`
	ViolationCount int          `json:"violation_count"`
	CleanStreak    int          `json:"clean_streak"`
	LastActivity   time.Time    `json:"last_activity"`
}

func NewSession(id string) Session {
	return Session{
		ID:           id,
		State:        StateNormal,
		LastActivity: time.Now().UTC(),
	}
}

// ViolationEvent is one append-only audit record for a flagged query.
type ViolationEvent struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	PatternID string    `json:"pattern_id"`
	CreatedAt time.Time `json:"created_at"`
}

type DocumentKind string

const (
	KindFact    DocumentKind = "fact"
	KindArticle DocumentKind = "article"
	KindTrivia  DocumentKind = "trivia"
	KindLegend  DocumentKind = "legend"
	KindMoment  DocumentKind = "moment"
)

// KnowledgeDocument is a corpus entry. SearchableText is derived from
// body+metadata at write time and feeds the full-text index.
type KnowledgeDocument struct {
	ID             int64        `json:"id"`
	Kind           DocumentKind `json:"kind"`
	Title          string       `json:"title"`
	Body           string       `json:"body"`
	TeamID         string       `json:"team_id,omitempty"`
	EventDate      *time.Time   `json:"event_date,omitempty"`
	SearchableText string       `json:"-"`
	CreatedAt      time.Time    `json:"created_at"`
}

// RetrievalResult is an ephemeral, per-query ranked hit. Score is
// non-negative; higher means a stronger match.
type RetrievalResult struct {
	DocumentID int64   `json:"document_id"`
	Title      string  `json:"title"`
	Score      float64 `json:"score"`
	Snippet    string  `json:"snippet"`
}

type ConversationTurn struct {
	ID        string            `json:"id"`
	SessionID string            `json:"session_id"`
	PersonaID string            `json:"persona_id"`
	Query     string            `json:"query"`
	Response  string            `json:"response"`
	Sources   []RetrievalResult `json:"sources,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Persona is a named response personality. Voice and team compile into
// SystemPrompt once at registration, never per turn.
type Persona struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	TeamID       string `json:"team_id,omitempty"`
	Voice        string `json:"voice"`
	SystemPrompt string `json:"-"`
	Fallback     string `json:"-"`
}
