package driven

import (
	"context"

	"github.com/ericfisherdev/reviewledger/internal/domain/model"
)

// CommentLedger defines the driven port for the append-only comment stream of each finding.
type CommentLedger interface {
	// Append stores the comment and returns it with its assigned ID and timestamp.
	Append(ctx context.Context, comment model.Comment) (model.Comment, error)

	// List returns every comment for the hash in insertion order.
	List(ctx context.Context, hash string) ([]model.Comment, error)

	// ListByKind returns comments of the given kind for the hash in insertion order.
	ListByKind(ctx context.Context, hash string, kind model.CommentKind) ([]model.Comment, error)
}
