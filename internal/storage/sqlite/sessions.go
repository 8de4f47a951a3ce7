package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sandevgo/pitchside/internal/core"
)

type SessionsRepo struct {
	db *sql.DB
}

func NewSessionsRepo(db *sql.DB) *SessionsRepo {
	return &SessionsRepo{db: db}
}

// Load returns nil when the session does not exist yet. A persisted state
// outside the known enum comes back as a SessionCorruptionError so the
// caller can recover instead of failing the turn.
func (r *SessionsRepo) Load(ctx context.Context, id string) (*core.Session, error) {
	query := `SELECT state, violation_count, clean_streak, last_activity FROM sessions WHERE id = ?`

	var rawState string
	session := core.Session{ID: id}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rawState, &session.ViolationCount, &session.CleanStreak, &session.LastActivity,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	state, err := core.ParseSessionState(rawState)
	if err != nil {
		return nil, &core.SessionCorruptionError{SessionID: id, RawState: rawState}
	}
	session.State = state

	return &session, nil
}

func (r *SessionsRepo) Save(ctx context.Context, session core.Session) error {
	query := `
		INSERT INTO sessions (id, state, violation_count, clean_streak, last_activity)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			violation_count = excluded.violation_count,
			clean_streak = excluded.clean_streak,
			last_activity = excluded.last_activity`

	_, err := r.db.ExecContext(ctx, query,
		session.ID, string(session.State), session.ViolationCount, session.CleanStreak, session.LastActivity,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
