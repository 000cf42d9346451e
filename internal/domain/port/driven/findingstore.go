package driven

import (
	"context"

	"github.com/ericfisherdev/reviewledger/internal/domain/model"
)

// FindingStore defines the driven port for the finding references that
// review data hangs off. It is the authority on which hashes exist.
type FindingStore interface {
	// Upsert inserts a finding or refreshes its run association and location.
	// Existing review data for the hash is left untouched.
	Upsert(ctx context.Context, finding model.Finding) error

	// Get returns the finding for the given hash, or model.ErrNotFound.
	Get(ctx context.Context, hash string) (model.Finding, error)

	// ListByRun returns all findings last seen in the given run, ordered by hash.
	ListByRun(ctx context.Context, runName string) ([]model.Finding, error)
}
