package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/reviewledger/internal/domain/model"
	"github.com/ericfisherdev/reviewledger/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.FindingStore = (*FindingRepo)(nil)

// FindingRepo is the SQLite implementation of the FindingStore port interface.
type FindingRepo struct {
	db *DB
}

// NewFindingRepo creates a new FindingRepo backed by the given DB.
func NewFindingRepo(db *DB) *FindingRepo {
	return &FindingRepo{db: db}
}

// Upsert inserts a finding or refreshes its run association and location.
// created_at keeps the time the hash was first seen.
func (r *FindingRepo) Upsert(ctx context.Context, finding model.Finding) error {
	const query = `
		INSERT INTO findings (hash, run_name, checker_id, file_path, line, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO UPDATE SET
			run_name = excluded.run_name,
			checker_id = excluded.checker_id,
			file_path = excluded.file_path,
			line = excluded.line,
			message = excluded.message
	`

	createdAt := finding.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		finding.Hash, finding.RunName, finding.CheckerID, finding.FilePath,
		finding.Line, finding.Message, formatTime(createdAt),
	)
	if err != nil {
		return fmt.Errorf("upsert finding %q: %w", finding.Hash, err)
	}

	return nil
}

// Get returns the finding for the given hash, or model.ErrNotFound.
func (r *FindingRepo) Get(ctx context.Context, hash string) (model.Finding, error) {
	const query = `
		SELECT hash, run_name, checker_id, file_path, line, message, created_at
		FROM findings
		WHERE hash = ?
	`

	finding, err := scanFinding(r.db.Reader.QueryRowContext(ctx, query, hash))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Finding{}, fmt.Errorf("get finding %q: %w", hash, model.ErrNotFound)
	}
	if err != nil {
		return model.Finding{}, fmt.Errorf("get finding %q: %w", hash, err)
	}

	return finding, nil
}

// ListByRun returns all findings last seen in the given run, ordered by hash.
func (r *FindingRepo) ListByRun(ctx context.Context, runName string) ([]model.Finding, error) {
	const query = `
		SELECT hash, run_name, checker_id, file_path, line, message, created_at
		FROM findings
		WHERE run_name = ?
		ORDER BY hash
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, runName)
	if err != nil {
		return nil, fmt.Errorf("query findings for run %q: %w", runName, err)
	}
	defer rows.Close()

	var findings []model.Finding
	for rows.Next() {
		finding, err := scanFinding(rows)
		if err != nil {
			return nil, fmt.Errorf("scan finding: %w", err)
		}
		findings = append(findings, finding)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate findings: %w", err)
	}

	return findings, nil
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanFinding(s scanner) (model.Finding, error) {
	var f model.Finding
	var createdAt string

	if err := s.Scan(&f.Hash, &f.RunName, &f.CheckerID, &f.FilePath, &f.Line, &f.Message, &createdAt); err != nil {
		return model.Finding{}, err
	}

	parsed, err := parseTime(createdAt)
	if err != nil {
		return model.Finding{}, fmt.Errorf("parse created_at for finding %q: %w", f.Hash, err)
	}
	f.CreatedAt = parsed

	return f, nil
}
