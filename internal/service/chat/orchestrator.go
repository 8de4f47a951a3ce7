// Package chat sequences the per-turn pipeline: classify, escalate, pay
// the friction delay, retrieve, assemble, generate.
package chat

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/sandevgo/pitchside/internal/core"
	"github.com/sandevgo/pitchside/internal/providers/feeds"
	"github.com/sandevgo/pitchside/internal/retrieval"
	"github.com/sandevgo/pitchside/internal/security"
	"github.com/sandevgo/pitchside/internal/service/persona"
	"github.com/sandevgo/pitchside/pkg/log"
)

type Retriever interface {
	Retrieve(ctx context.Context, query string, filters core.CorpusFilters) ([]core.RetrievalResult, error)
}

type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// FixtureSource supplies optional prompt enrichment; nil disables it.
type FixtureSource interface {
	NextFixture(ctx context.Context, teamID string) (*feeds.Fixture, error)
}

type Config struct {
	RetrievalTimeout  time.Duration
	GenerationTimeout time.Duration
	ContextBudget     int
	MaxQueryLen       int
}

func (c *Config) defaults() {
	if c.RetrievalTimeout <= 0 {
		c.RetrievalTimeout = 3 * time.Second
	}
	if c.GenerationTimeout <= 0 {
		c.GenerationTimeout = 30 * time.Second
	}
	if c.ContextBudget <= 0 {
		c.ContextBudget = 1200
	}
	if c.MaxQueryLen <= 0 {
		c.MaxQueryLen = 2000
	}
}

// TurnResult is what a transport renders back to the user.
type TurnResult struct {
	TurnID       string                 `json:"turn_id"`
	Response     string                 `json:"response"`
	Sources      []core.RetrievalResult `json:"sources,omitempty"`
	StateAfter   core.SessionState      `json:"state_after"`
	DelayApplied time.Duration          `json:"delay_applied"`
}

type Orchestrator struct {
	cfg        Config
	personas   *persona.Registry
	sessions   core.SessionRepository
	violations core.ViolationRepository
	turns      core.TurnRepository
	retriever  Retriever
	tokenizer  retrieval.Tokenizer
	generator  Generator
	fixtures   FixtureSource

	locks     *sessionLocks
	sanitizer *bluemonday.Policy

	// injectable for tests
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

func NewOrchestrator(
	cfg Config,
	personas *persona.Registry,
	sessions core.SessionRepository,
	violations core.ViolationRepository,
	turns core.TurnRepository,
	retriever Retriever,
	tokenizer retrieval.Tokenizer,
	generator Generator,
	fixtures FixtureSource,
) *Orchestrator {
	cfg.defaults()
	return &Orchestrator{
		cfg:        cfg,
		personas:   personas,
		sessions:   sessions,
		violations: violations,
		turns:      turns,
		retriever:  retriever,
		tokenizer:  tokenizer,
		generator:  generator,
		fixtures:   fixtures,
		locks:      newSessionLocks(),
		sanitizer:  bluemonday.StrictPolicy(),
		sleep:      sleepCtx,
		now:        time.Now,
	}
}

// Turn runs one conversation turn. Escalation state committed during the
// turn is authoritative: failures after the state update never roll it
// back, and a generation failure is answered with the persona's fallback
// line rather than an error.
func (o *Orchestrator) Turn(ctx context.Context, sessionID, personaID, query string) (*TurnResult, error) {
	logger := log.FromCtx(ctx)

	// Validation happens before any state mutation.
	p, err := o.personas.Get(personaID)
	if err != nil {
		return nil, err
	}
	query, err = o.cleanQuery(query)
	if err != nil {
		return nil, err
	}
	if sessionID == "" {
		return nil, core.NewValidationError("missing session id")
	}

	verdict := security.Classify(query)

	// The per-session critical section covers only the state
	// read-modify-write, never the slow external calls below.
	release := o.locks.acquire(sessionID)
	session, delay, err := o.applyVerdict(ctx, sessionID, verdict)
	release()
	if err != nil {
		return nil, err
	}

	if verdict.Flagged {
		logger.Info().
			Str("session", sessionID).
			Str("pattern", verdict.PatternID).
			Str("state", string(session.State)).
			Msg("injection attempt flagged")
	}

	// Friction is paid before retrieval begins. A disconnect here leaves
	// the committed transition in place.
	if delay > 0 {
		if err := o.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	bounded := o.gatherContext(ctx, query, p)
	fixtureLine := o.fixtureLine(ctx, p)

	gctx, cancel := context.WithTimeout(ctx, o.cfg.GenerationTimeout)
	response, genErr := o.generator.Generate(gctx, p.SystemPrompt, buildUserPrompt(bounded.Text, fixtureLine, query))
	cancel()
	if genErr != nil {
		logger.Error().Err(genErr).Str("persona", p.ID).Msg("generation failed, serving fallback")
		response = p.Fallback
	}

	turn := core.ConversationTurn{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		PersonaID: p.ID,
		Query:     query,
		Response:  response,
		Sources:   bounded.Results,
		CreatedAt: o.now().UTC(),
	}
	if err := o.turns.Append(ctx, turn); err != nil {
		logger.Error().Err(err).Msg("failed to record conversation turn")
	}

	return &TurnResult{
		TurnID:       turn.ID,
		Response:     response,
		Sources:      bounded.Results,
		StateAfter:   session.State,
		DelayApplied: delay,
	}, nil
}

// applyVerdict is the atomic state step: load or create the session, run
// the transition, persist, and append the audit record for flagged turns.
// Callers must hold the session lock.
func (o *Orchestrator) applyVerdict(ctx context.Context, sessionID string, verdict security.Verdict) (core.Session, time.Duration, error) {
	logger := log.FromCtx(ctx)

	var session core.Session
	loaded, err := o.sessions.Load(ctx, sessionID)
	var cerr *core.SessionCorruptionError
	switch {
	case errors.As(err, &cerr):
		logger.Warn().Str("session", sessionID).Str("raw_state", cerr.RawState).
			Msg("corrupted session state, resetting to NORMAL")
		session = core.NewSession(sessionID)
	case err != nil:
		return core.Session{}, 0, err
	case loaded == nil:
		session = core.NewSession(sessionID)
	default:
		session = *loaded
	}

	next, delay := security.Transition(session, verdict.Flagged)
	next.LastActivity = o.now().UTC()

	if err := o.sessions.Save(ctx, next); err != nil {
		return core.Session{}, 0, err
	}

	if verdict.Flagged {
		event := core.ViolationEvent{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			PatternID: verdict.PatternID,
			CreatedAt: o.now().UTC(),
		}
		// The state transition is already committed; a failed audit write
		// must not fail the turn.
		if err := o.violations.Append(ctx, event); err != nil {
			logger.Error().Err(err).Msg("failed to append violation event")
		}
	}

	return next, delay, nil
}

// gatherContext retrieves and bounds the grounding snippets. A corpus
// failure degrades to an ungrounded turn.
func (o *Orchestrator) gatherContext(ctx context.Context, query string, p core.Persona) retrieval.BoundedContext {
	rctx, cancel := context.WithTimeout(ctx, o.cfg.RetrievalTimeout)
	defer cancel()

	results, err := o.retriever.Retrieve(rctx, query, core.CorpusFilters{TeamID: p.TeamID})
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("retrieval failed, continuing without grounding")
		results = nil
	}
	return retrieval.Assemble(results, o.cfg.ContextBudget, o.tokenizer)
}

func (o *Orchestrator) fixtureLine(ctx context.Context, p core.Persona) string {
	if o.fixtures == nil || p.TeamID == "" {
		return ""
	}
	fixture, err := o.fixtures.NextFixture(ctx, p.TeamID)
	if err != nil {
		log.FromCtx(ctx).Debug().Err(err).Msg("fixture feed unavailable")
		return ""
	}
	return feeds.FixtureLine(fixture)
}

func (o *Orchestrator) cleanQuery(query string) (string, error) {
	// Strip markup, then restore entities the sanitizer escaped so the
	// classifier and retrieval see the text the user actually typed.
	query = html.UnescapeString(o.sanitizer.Sanitize(query))
	query = strings.TrimSpace(query)
	if query == "" {
		return "", core.NewValidationError("empty query")
	}
	if len(query) > o.cfg.MaxQueryLen {
		return "", core.NewValidationError("query exceeds %d characters", o.cfg.MaxQueryLen)
	}
	return query, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
