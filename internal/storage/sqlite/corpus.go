package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/pitchside/internal/core"
)

// structuredScore is the relevance assigned to a pure metadata match.
// Text hits that also match structurally keep whichever score is higher
// when the engine merges the legs.
const structuredScore = 1.0

const snippetLength = 280

// CorpusRepo reads the knowledge corpus. The full-text leg runs over the
// FTS5 index kept in sync with documents by triggers; the structured leg
// is plain SQL over the metadata columns.
type CorpusRepo struct {
	db *sql.DB
}

func NewCorpusRepo(db *sql.DB) *CorpusRepo {
	return &CorpusRepo{db: db}
}

func (r *CorpusRepo) Search(ctx context.Context, terms []string, limit int) ([]core.RetrievalResult, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	query := `
		SELECT d.id, d.title,
		       bm25(documents_fts) AS rank,
		       snippet(documents_fts, 1, '', '', '...', 32) AS snip
		FROM documents_fts
		JOIN documents d ON d.id = documents_fts.rowid
		WHERE documents_fts MATCH ?
		ORDER BY rank ASC, d.id ASC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, buildMatchExpr(terms), limit)
	if err != nil {
		return nil, fmt.Errorf("full-text search failed: %w", err)
	}
	defer rows.Close()

	var results []core.RetrievalResult
	for rows.Next() {
		var res core.RetrievalResult
		var rank float64
		if err := rows.Scan(&res.DocumentID, &res.Title, &rank, &res.Snippet); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		// bm25 ranks are negative, more negative = better. Flip so the
		// exposed score is non-negative with higher meaning stronger.
		res.Score = -rank
		if res.Score < 0 {
			res.Score = 0
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

func (r *CorpusRepo) Match(ctx context.Context, filters core.CorpusFilters, limit int) ([]core.RetrievalResult, error) {
	if filters.Empty() {
		return nil, nil
	}

	var conds []string
	var args []any

	if filters.TeamID != "" {
		conds = append(conds, "team_id = ?")
		args = append(args, filters.TeamID)
	}
	if filters.OnDay != nil {
		conds = append(conds, "strftime('%m-%d', event_date) = ?")
		args = append(args, filters.OnDay.Format("01-02"))
	}
	if len(filters.Kinds) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(filters.Kinds)), ",")
		conds = append(conds, "kind IN ("+placeholders+")")
		for _, k := range filters.Kinds {
			args = append(args, string(k))
		}
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT id, title, substr(body, 1, %d)
		FROM documents
		WHERE %s
		ORDER BY id ASC
		LIMIT ?`, snippetLength, strings.Join(conds, " AND "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("structured match failed: %w", err)
	}
	defer rows.Close()

	var results []core.RetrievalResult
	for rows.Next() {
		var res core.RetrievalResult
		if err := rows.Scan(&res.DocumentID, &res.Title, &res.Snippet); err != nil {
			return nil, fmt.Errorf("failed to scan match result: %w", err)
		}
		res.Score = structuredScore
		results = append(results, res)
	}
	return results, rows.Err()
}

func (r *CorpusRepo) Get(ctx context.Context, id int64) (*core.KnowledgeDocument, error) {
	query := `SELECT id, kind, title, body, team_id, event_date, searchable_text, created_at
		FROM documents WHERE id = ?`

	var doc core.KnowledgeDocument
	var kind string
	var teamID, eventDate sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID, &kind, &doc.Title, &doc.Body, &teamID, &eventDate, &doc.SearchableText, &doc.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	doc.Kind = core.DocumentKind(kind)
	doc.TeamID = teamID.String
	if eventDate.Valid && eventDate.String != "" {
		if day, err := time.Parse("2006-01-02", eventDate.String); err == nil {
			doc.EventDate = &day
		}
	}
	return &doc, nil
}

// Insert derives searchable_text from body+metadata so the index stays
// consistent with the document at write time.
func (r *CorpusRepo) Insert(ctx context.Context, doc core.KnowledgeDocument) (int64, error) {
	var teamID sql.NullString
	if doc.TeamID != "" {
		teamID = sql.NullString{String: doc.TeamID, Valid: true}
	}
	// Dates are stored as plain YYYY-MM-DD so strftime filters work on them.
	var eventDate sql.NullString
	if doc.EventDate != nil {
		eventDate = sql.NullString{String: doc.EventDate.Format("2006-01-02"), Valid: true}
	}

	query := `INSERT INTO documents (kind, title, body, team_id, event_date, searchable_text)
		VALUES (?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		string(doc.Kind), doc.Title, doc.Body, teamID, eventDate, buildSearchableText(doc),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert document: %w", err)
	}
	return res.LastInsertId()
}

func buildSearchableText(doc core.KnowledgeDocument) string {
	parts := []string{doc.Body}
	if doc.TeamID != "" {
		parts = append(parts, doc.TeamID)
	}
	if doc.Kind != "" {
		parts = append(parts, string(doc.Kind))
	}
	if doc.EventDate != nil {
		parts = append(parts, doc.EventDate.Format("2006-01-02"))
	}
	return strings.Join(parts, "\n")
}

// buildMatchExpr quotes each term so user text cannot inject FTS5 query
// syntax. Terms are ORed: any strong term match should surface a document.
func buildMatchExpr(terms []string) string {
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ReplaceAll(t, `"`, `""`)
		quoted = append(quoted, `"`+t+`"`)
	}
	return strings.Join(quoted, " OR ")
}
