package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sandevgo/pitchside/internal/core"
)

// TurnsRepo is the append-only conversation history.
type TurnsRepo struct {
	db *sql.DB
}

func NewTurnsRepo(db *sql.DB) *TurnsRepo {
	return &TurnsRepo{db: db}
}

func (r *TurnsRepo) Append(ctx context.Context, turn core.ConversationTurn) error {
	sourcesJSON := ""
	if len(turn.Sources) > 0 {
		data, err := json.Marshal(turn.Sources)
		if err != nil {
			return fmt.Errorf("failed to marshal sources: %w", err)
		}
		sourcesJSON = string(data)
	}

	query := `INSERT INTO turns (id, session_id, persona_id, query, response, sources, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		turn.ID, turn.SessionID, turn.PersonaID, turn.Query, turn.Response, sourcesJSON, turn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append turn: %w", err)
	}
	return nil
}

// BySession returns a session's turns in arrival order.
func (r *TurnsRepo) BySession(ctx context.Context, sessionID string, limit int) ([]core.ConversationTurn, error) {
	query := `SELECT id, session_id, persona_id, query, response, sources, created_at
		FROM turns WHERE session_id = ? ORDER BY created_at, id LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []core.ConversationTurn
	for rows.Next() {
		var t core.ConversationTurn
		var sourcesJSON sql.NullString
		if err := rows.Scan(&t.ID, &t.SessionID, &t.PersonaID, &t.Query, &t.Response, &sourcesJSON, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		if sourcesJSON.Valid && sourcesJSON.String != "" {
			if err := json.Unmarshal([]byte(sourcesJSON.String), &t.Sources); err != nil {
				return nil, fmt.Errorf("failed to unmarshal sources: %w", err)
			}
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}
