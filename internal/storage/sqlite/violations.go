package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandevgo/pitchside/internal/core"
)

// ViolationsRepo is the append-only audit log of flagged queries.
type ViolationsRepo struct {
	db *sql.DB
}

func NewViolationsRepo(db *sql.DB) *ViolationsRepo {
	return &ViolationsRepo{db: db}
}

func (r *ViolationsRepo) Append(ctx context.Context, event core.ViolationEvent) error {
	query := `INSERT INTO violations (id, session_id, pattern_id, created_at) VALUES (?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, event.ID, event.SessionID, event.PatternID, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append violation: %w", err)
	}
	return nil
}

// BySession returns a session's violations in arrival order.
func (r *ViolationsRepo) BySession(ctx context.Context, sessionID string) ([]core.ViolationEvent, error) {
	query := `SELECT id, session_id, pattern_id, created_at FROM violations WHERE session_id = ? ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query violations: %w", err)
	}
	defer rows.Close()

	var events []core.ViolationEvent
	for rows.Next() {
		var e core.ViolationEvent
		if err := rows.Scan(&e.ID, &e.SessionID, &e.PatternID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan violation: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
