package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/ericfisherdev/reviewledger/internal/domain/model"
	"github.com/ericfisherdev/reviewledger/internal/domain/port/driven"
)

const (
	defaultMaxRetries  = 3
	defaultLockTimeout = 5 * time.Second

	tracerName = "github.com/ericfisherdev/reviewledger/internal/application"
)

// ReviewStatusConfig tunes the concurrency behavior of ReviewStatusService.
// Zero values fall back to defaults.
type ReviewStatusConfig struct {
	// MaxRetries bounds the compare-and-set attempts per call.
	MaxRetries int

	// LockTimeout bounds the wait for the per-finding lock.
	LockTimeout time.Duration

	Tracer trace.Tracer
	Now    func() time.Time
}

// ReviewStatusService owns every write to the status registry and the SYSTEM
// comment stream. Changes to one finding are serialized by a per-hash lock in
// this process and by the registry's version check across processes.
type ReviewStatusService struct {
	findings  driven.FindingStore
	registry  driven.StatusRegistry
	ledger    driven.CommentLedger
	publisher driven.ChangePublisher
	locks     *hashLocks
	cfg       ReviewStatusConfig
	logger    *slog.Logger
}

// NewReviewStatusService creates a ReviewStatusService. publisher may be nil.
func NewReviewStatusService(
	findings driven.FindingStore,
	registry driven.StatusRegistry,
	ledger driven.CommentLedger,
	publisher driven.ChangePublisher,
	cfg ReviewStatusConfig,
	logger *slog.Logger,
) *ReviewStatusService {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = defaultLockTimeout
	}
	if cfg.Tracer == nil {
		cfg.Tracer = noop.NewTracerProvider().Tracer(tracerName)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ReviewStatusService{
		findings:  findings,
		registry:  registry,
		ledger:    ledger,
		publisher: publisher,
		locks:     newHashLocks(),
		cfg:       cfg,
		logger:    logger,
	}
}

// ChangeReviewStatus sets the review status and comment of a finding on behalf
// of author. It returns true when a meaningful change was applied and one
// SYSTEM comment recorded, and false with a nil error when the proposed pair
// equals the stored one.
func (s *ReviewStatusService) ChangeReviewStatus(
	ctx context.Context,
	author, hash string,
	status model.ReviewStatus,
	comment string,
) (changed bool, err error) {
	ctx, span := s.cfg.Tracer.Start(ctx, "reviewstatus.change", trace.WithAttributes(
		attribute.String("finding.hash", hash),
		attribute.String("review.status", string(status)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if !status.IsValid() {
		return false, fmt.Errorf("%w: %q", model.ErrInvalidStatus, status)
	}

	release, err := s.locks.acquire(ctx, hash, s.cfg.LockTimeout)
	if err != nil {
		return false, fmt.Errorf("%w: finding %q: %w", model.ErrConcurrentModification, hash, err)
	}
	defer release()

	for attempt := 1; attempt <= s.cfg.MaxRetries; attempt++ {
		span.SetAttributes(attribute.Int("review.attempts", attempt))

		current, err := s.registry.Get(ctx, hash)
		if err != nil {
			return false, storageError("read review status", err)
		}

		decision, err := Decide(current, status, comment)
		if err != nil {
			return false, err
		}
		if decision.NoOp {
			span.SetAttributes(attribute.String("review.outcome", "noop"))
			s.logger.Debug("review status unchanged", "hash", hash, "status", status)
			return false, nil
		}

		next := decision.Record
		next.Author = author
		next.UpdatedAt = s.cfg.Now().UTC()

		ok, err := s.registry.CompareAndSet(ctx, current, next)
		if err != nil {
			return false, storageError("write review status", err)
		}
		if !ok {
			s.logger.Debug("review status changed concurrently, retrying",
				"hash", hash,
				"attempt", attempt,
				"expected_version", current.Version,
			)
			continue
		}
		next.Version = current.Version + 1

		if _, err := s.ledger.Append(ctx, model.Comment{
			FindingHash: hash,
			Kind:        model.CommentKindSystem,
			Author:      author,
			Text:        decision.AuditText,
			CreatedAt:   next.UpdatedAt,
		}); err != nil {
			s.rollback(ctx, current, next)
			return false, storageError("append system comment", err)
		}

		span.SetAttributes(attribute.String("review.outcome", "applied"))
		s.logger.Info("review status changed",
			"hash", hash,
			"author", author,
			"from", current.Status,
			"to", next.Status,
			"version", next.Version,
		)

		s.publish(ctx, model.ReviewChange{
			FindingHash: hash,
			OldStatus:   current.Status,
			NewStatus:   next.Status,
			OldComment:  current.Comment,
			NewComment:  next.Comment,
			Author:      author,
			AuditText:   decision.AuditText,
			Version:     next.Version,
			ChangedAt:   next.UpdatedAt,
		})

		return true, nil
	}

	span.SetAttributes(attribute.String("review.outcome", "conflict"))
	return false, fmt.Errorf("%w: finding %q: gave up after %d attempts",
		model.ErrConcurrentModification, hash, s.cfg.MaxRetries)
}

// GetCurrentReview returns the review record of a finding, or the default
// record if it was never reviewed.
func (s *ReviewStatusService) GetCurrentReview(ctx context.Context, hash string) (model.ReviewRecord, error) {
	record, err := s.registry.Get(ctx, hash)
	if err != nil {
		return model.ReviewRecord{}, storageError("read review status", err)
	}
	return record, nil
}

// ListSystemComments returns the audit trail of a finding in insertion order.
func (s *ReviewStatusService) ListSystemComments(ctx context.Context, hash string) ([]model.Comment, error) {
	return s.listComments(ctx, hash, model.CommentKindSystem)
}

// ListComments returns every comment of a finding in insertion order. An
// empty kind returns all kinds.
func (s *ReviewStatusService) ListComments(ctx context.Context, hash string, kind model.CommentKind) ([]model.Comment, error) {
	return s.listComments(ctx, hash, kind)
}

func (s *ReviewStatusService) listComments(ctx context.Context, hash string, kind model.CommentKind) ([]model.Comment, error) {
	if _, err := s.findings.Get(ctx, hash); err != nil {
		return nil, storageError("read finding", err)
	}

	var (
		comments []model.Comment
		err      error
	)
	if kind == "" {
		comments, err = s.ledger.List(ctx, hash)
	} else {
		comments, err = s.ledger.ListByKind(ctx, hash, kind)
	}
	if err != nil {
		return nil, storageError("list comments", err)
	}

	return comments, nil
}

// GetReport returns the finding reference together with its review data.
func (s *ReviewStatusService) GetReport(ctx context.Context, hash string) (model.Report, error) {
	finding, err := s.findings.Get(ctx, hash)
	if err != nil {
		return model.Report{}, storageError("read finding", err)
	}

	record, err := s.registry.Get(ctx, hash)
	if err != nil {
		return model.Report{}, storageError("read review status", err)
	}

	return model.Report{Finding: finding, Review: record}, nil
}

// rollback restores the record that was replaced by applied, so a call that
// fails after the registry write leaves no visible change behind.
func (s *ReviewStatusService) rollback(ctx context.Context, previous, applied model.ReviewRecord) {
	restore := previous
	restore.Version = applied.Version

	// The caller's context may already be cancelled; the rollback must still run.
	ok, err := s.registry.CompareAndSet(context.WithoutCancel(ctx), applied, restore)
	switch {
	case err != nil:
		s.logger.Error("failed to roll back review status", "hash", previous.FindingHash, "error", err)
	case !ok:
		s.logger.Error("review status moved before rollback", "hash", previous.FindingHash, "version", applied.Version)
	default:
		s.logger.Warn("rolled back review status after ledger failure", "hash", previous.FindingHash)
	}
}

func (s *ReviewStatusService) publish(ctx context.Context, change model.ReviewChange) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), change); err != nil {
		s.logger.Warn("failed to publish review change", "hash", change.FindingHash, "error", err)
	}
}

// storageError tags unexpected store failures with model.ErrStorage. Domain
// errors pass through unchanged.
func storageError(op string, err error) error {
	if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", model.ErrStorage, op, err)
}
