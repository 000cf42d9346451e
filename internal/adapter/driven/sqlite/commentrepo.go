package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ericfisherdev/reviewledger/internal/domain/model"
	"github.com/ericfisherdev/reviewledger/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CommentLedger = (*CommentRepo)(nil)

// CommentRepo is the SQLite implementation of the CommentLedger port interface.
// Rows are only ever inserted; the autoincrement ID defines insertion order.
type CommentRepo struct {
	db *DB
}

// NewCommentRepo creates a new CommentRepo backed by the given DB.
func NewCommentRepo(db *DB) *CommentRepo {
	return &CommentRepo{db: db}
}

// Append stores the comment and returns it with its assigned ID. A zero
// CreatedAt is replaced with the current time.
func (r *CommentRepo) Append(ctx context.Context, comment model.Comment) (model.Comment, error) {
	const query = `
		INSERT INTO comments (finding_hash, kind, author, body, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	comment.CreatedAt = comment.CreatedAt.UTC()

	res, err := r.db.Writer.ExecContext(ctx, query,
		comment.FindingHash, string(comment.Kind), comment.Author, comment.Text, formatTime(comment.CreatedAt),
	)
	if err != nil {
		return model.Comment{}, fmt.Errorf("append %s comment for %q: %w", comment.Kind, comment.FindingHash, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.Comment{}, fmt.Errorf("last insert id for comment on %q: %w", comment.FindingHash, err)
	}
	comment.ID = id

	return comment, nil
}

// List returns every comment for the hash in insertion order.
func (r *CommentRepo) List(ctx context.Context, hash string) ([]model.Comment, error) {
	const query = `
		SELECT id, finding_hash, kind, author, body, created_at
		FROM comments
		WHERE finding_hash = ?
		ORDER BY id
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, hash)
	if err != nil {
		return nil, fmt.Errorf("query comments for %q: %w", hash, err)
	}
	return scanComments(rows)
}

// ListByKind returns comments of the given kind for the hash in insertion order.
func (r *CommentRepo) ListByKind(ctx context.Context, hash string, kind model.CommentKind) ([]model.Comment, error) {
	const query = `
		SELECT id, finding_hash, kind, author, body, created_at
		FROM comments
		WHERE finding_hash = ? AND kind = ?
		ORDER BY id
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, hash, string(kind))
	if err != nil {
		return nil, fmt.Errorf("query %s comments for %q: %w", kind, hash, err)
	}
	return scanComments(rows)
}

func scanComments(rows *sql.Rows) ([]model.Comment, error) {
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		var kind, createdAt string
		if err := rows.Scan(&c.ID, &c.FindingHash, &kind, &c.Author, &c.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.Kind = model.CommentKind(kind)

		parsed, err := parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at for comment %d: %w", c.ID, err)
		}
		c.CreatedAt = parsed

		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return comments, nil
}
