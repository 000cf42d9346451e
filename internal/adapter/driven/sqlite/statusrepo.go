package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ericfisherdev/reviewledger/internal/domain/model"
	"github.com/ericfisherdev/reviewledger/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.StatusRegistry = (*StatusRepo)(nil)

// StatusRepo is the SQLite implementation of the StatusRegistry port interface.
// Every row carries a version that is bumped on each successful write; the
// version is the optimistic-concurrency token for CompareAndSet.
type StatusRepo struct {
	db *DB
}

// NewStatusRepo creates a new StatusRepo backed by the given DB.
func NewStatusRepo(db *DB) *StatusRepo {
	return &StatusRepo{db: db}
}

// Get returns the stored record for the hash, or the default record when the
// finding exists but has never been reviewed.
func (r *StatusRepo) Get(ctx context.Context, hash string) (model.ReviewRecord, error) {
	const query = `
		SELECT f.hash, r.status, r.comment, r.author, r.updated_at, r.version
		FROM findings f
		LEFT JOIN review_statuses r ON r.finding_hash = f.hash
		WHERE f.hash = ?
	`

	var (
		findingHash string
		status      sql.NullString
		comment     sql.NullString
		author      sql.NullString
		updatedAt   sql.NullString
		version     sql.NullInt64
	)

	err := r.db.Reader.QueryRowContext(ctx, query, hash).Scan(
		&findingHash, &status, &comment, &author, &updatedAt, &version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ReviewRecord{}, fmt.Errorf("get review status %q: %w", hash, model.ErrNotFound)
	}
	if err != nil {
		return model.ReviewRecord{}, fmt.Errorf("get review status %q: %w", hash, err)
	}

	if !version.Valid {
		return model.DefaultReviewRecord(findingHash), nil
	}

	record := model.ReviewRecord{
		FindingHash: findingHash,
		Status:      model.ReviewStatus(status.String),
		Comment:     comment.String,
		Author:      author.String,
		Version:     version.Int64,
	}

	if updatedAt.Valid {
		record.UpdatedAt, err = parseTime(updatedAt.String)
		if err != nil {
			return model.ReviewRecord{}, fmt.Errorf("parse updated_at for %q: %w", hash, err)
		}
	}

	return record, nil
}

// CompareAndSet stores next only when the stored version still equals
// expected.Version. Version 0 means no row exists yet, in which case the row
// is inserted with version 1.
func (r *StatusRepo) CompareAndSet(ctx context.Context, expected, next model.ReviewRecord) (bool, error) {
	hash := expected.FindingHash
	if next.FindingHash != hash {
		return false, fmt.Errorf("compare-and-set review status: hash mismatch %q != %q", hash, next.FindingHash)
	}

	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM findings WHERE hash = ?`, hash).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("compare-and-set review status %q: %w", hash, model.ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("check finding %q: %w", hash, err)
	}

	var res sql.Result
	if expected.Version == 0 {
		const insert = `
			INSERT INTO review_statuses (finding_hash, status, comment, author, updated_at, version)
			VALUES (?, ?, ?, ?, ?, 1)
			ON CONFLICT(finding_hash) DO NOTHING
		`
		res, err = tx.ExecContext(ctx, insert,
			hash, string(next.Status), next.Comment, next.Author, formatTime(next.UpdatedAt),
		)
	} else {
		const update = `
			UPDATE review_statuses
			SET status = ?, comment = ?, author = ?, updated_at = ?, version = version + 1
			WHERE finding_hash = ? AND version = ?
		`
		res, err = tx.ExecContext(ctx, update,
			string(next.Status), next.Comment, next.Author, formatTime(next.UpdatedAt),
			hash, expected.Version,
		)
	}
	if err != nil {
		return false, fmt.Errorf("write review status %q: %w", hash, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected for review status %q: %w", hash, err)
	}
	if affected == 0 {
		return false, nil
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit review status %q: %w", hash, err)
	}

	return true, nil
}
