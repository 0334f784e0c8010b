package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/outline-ranker/internal/types"
)

const defaultSearchLimit = 20

// SectionHit is one indexed section returned by SearchSections
type SectionHit struct {
	RunID    uuid.UUID          `json:"run_id"`
	Document string             `json:"document"`
	Title    string             `json:"title"`
	Level    types.HeadingLevel `json:"level"`
	Page     int                `json:"page"`
	Score    float64            `json:"score"`
	Rank     int                `json:"rank,omitempty"`
	Content  string             `json:"content"`
}

// SaveOutline stores the outline of one document for a run, replacing any earlier copy
func (db *DB) SaveOutline(ctx context.Context, runID uuid.UUID, document string, outline *types.Outline) error {
	content, err := json.Marshal(outline)
	if err != nil {
		return fmt.Errorf("failed to marshal outline: %w", err)
	}

	_, err = db.db.ExecContext(ctx,
		`INSERT INTO outlines (run_id, document, title, content) VALUES (?, ?, ?, ?)
		 ON CONFLICT (run_id, document) DO UPDATE SET title = excluded.title, content = excluded.content`,
		runID.String(), document, outline.Title, string(content),
	)
	if err != nil {
		return fmt.Errorf("failed to save outline: %w", err)
	}
	return nil
}

// GetOutline retrieves a stored outline. Returns nil when it does not exist.
func (db *DB) GetOutline(ctx context.Context, runID uuid.UUID, document string) (*types.Outline, error) {
	var content string
	err := db.db.QueryRowContext(ctx,
		`SELECT content FROM outlines WHERE run_id = ? AND document = ?`,
		runID.String(), document,
	).Scan(&content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get outline: %w", err)
	}

	var outline types.Outline
	if err := json.Unmarshal([]byte(content), &outline); err != nil {
		return nil, fmt.Errorf("failed to unmarshal outline: %w", err)
	}
	return &outline, nil
}

// SaveSections indexes scored sections for a run in one transaction
func (db *DB) SaveSections(ctx context.Context, runID uuid.UUID, sections []types.ScoredSection) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sections (run_id, document, title, level, page, score, rank, content)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare section insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range sections {
		if _, err := stmt.ExecContext(ctx, runID.String(), s.DocumentID, s.Title, string(s.Level),
			s.StartPage, s.Score, s.Rank, s.Content); err != nil {
			return fmt.Errorf("failed to save section %q: %w", s.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sections: %w", err)
	}
	return nil
}

// SearchSections finds indexed sections whose title or content contains query,
// case-insensitively, highest score first.
func (db *DB) SearchSections(ctx context.Context, query string, limit int) ([]SectionHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is empty")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	rows, err := db.db.QueryContext(ctx,
		`SELECT run_id, document, title, level, page, score, rank, content
		 FROM sections
		 WHERE lower(title) LIKE ? ESCAPE '\' OR lower(content) LIKE ? ESCAPE '\'
		 ORDER BY score DESC, id ASC
		 LIMIT ?`,
		pattern, pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search sections: %w", err)
	}
	defer rows.Close()

	var hits []SectionHit
	for rows.Next() {
		var (
			hit   SectionHit
			runID string
			level string
		)
		if err := rows.Scan(&runID, &hit.Document, &hit.Title, &level, &hit.Page, &hit.Score, &hit.Rank, &hit.Content); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		if hit.RunID, err = uuid.Parse(runID); err != nil {
			return nil, fmt.Errorf("invalid run id %q: %w", runID, err)
		}
		hit.Level = types.HeadingLevel(level)
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
