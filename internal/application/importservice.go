package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ericfisherdev/reviewledger/internal/domain/model"
	"github.com/ericfisherdev/reviewledger/internal/domain/port/driven"
)

// ImportSummary reports the outcome of a single report import.
type ImportSummary struct {
	RunName  string
	Imported int
	Skipped  int
}

// ImportService registers the findings of an analysis run so their hashes can
// be reviewed. Review data of already-known hashes is never touched.
type ImportService struct {
	parser   driven.ReportParser
	findings driven.FindingStore
	logger   *slog.Logger
}

// NewImportService creates a new ImportService with the required dependencies.
func NewImportService(parser driven.ReportParser, findings driven.FindingStore, logger *slog.Logger) *ImportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportService{
		parser:   parser,
		findings: findings,
		logger:   logger,
	}
}

// Import parses r and upserts every finding under runName. Duplicate hashes
// within one report are stored once.
func (s *ImportService) Import(ctx context.Context, runName string, r io.Reader) (ImportSummary, error) {
	runName = strings.TrimSpace(runName)
	if runName == "" {
		return ImportSummary{}, fmt.Errorf("%w: run name is required", model.ErrInvalidReport)
	}

	findings, skipped, err := s.parser.Parse(r, runName)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("%w: run %q: %w", model.ErrInvalidReport, runName, err)
	}

	seen := make(map[string]struct{}, len(findings))
	summary := ImportSummary{RunName: runName, Skipped: skipped}

	for _, f := range findings {
		if _, dup := seen[f.Hash]; dup {
			continue
		}
		seen[f.Hash] = struct{}{}

		if err := s.findings.Upsert(ctx, f); err != nil {
			return summary, storageError("upsert finding", err)
		}
		summary.Imported++
	}

	s.logger.Info("report imported",
		"run", runName,
		"imported", summary.Imported,
		"skipped", summary.Skipped,
	)

	return summary, nil
}

// ListRun returns the findings last seen in runName.
func (s *ImportService) ListRun(ctx context.Context, runName string) ([]model.Finding, error) {
	findings, err := s.findings.ListByRun(ctx, runName)
	if err != nil {
		return nil, storageError("list findings", err)
	}
	return findings, nil
}
