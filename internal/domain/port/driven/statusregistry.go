package driven

import (
	"context"

	"github.com/ericfisherdev/reviewledger/internal/domain/model"
)

// StatusRegistry defines the driven port for the current review record of each finding.
type StatusRegistry interface {
	// Get returns the stored record for the hash, or model.DefaultReviewRecord
	// when no change has been recorded yet. Returns model.ErrNotFound when the
	// hash is not a known finding.
	Get(ctx context.Context, hash string) (model.ReviewRecord, error)

	// CompareAndSet stores next only if the stored record still has
	// expected.Version. It returns false without writing when another writer
	// got there first. The stored version becomes expected.Version+1 on success.
	CompareAndSet(ctx context.Context, expected, next model.ReviewRecord) (bool, error)
}
