package driven

import (
	"context"

	"github.com/ericfisherdev/reviewledger/internal/domain/model"
)

// ChangePublisher defines the driven port for broadcasting committed review changes.
type ChangePublisher interface {
	Publish(ctx context.Context, change model.ReviewChange) error
}
