package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/reviewledger/internal/domain/model"
)

type stubParser struct {
	findings []model.Finding
	skipped  int
	err      error
	gotRun   string
}

func (p *stubParser) Parse(r io.Reader, runName string) ([]model.Finding, int, error) {
	p.gotRun = runName
	if _, err := io.ReadAll(r); err != nil {
		return nil, 0, err
	}
	if p.err != nil {
		return nil, 0, p.err
	}
	return p.findings, p.skipped, nil
}

func TestImportService_Import(t *testing.T) {
	parser := &stubParser{
		findings: []model.Finding{
			{Hash: "a", RunName: "nightly", CheckerID: "deadcode"},
			{Hash: "b", RunName: "nightly", CheckerID: "nullptr"},
			{Hash: "a", RunName: "nightly", CheckerID: "deadcode"},
		},
		skipped: 2,
	}
	findings := newMemFindingStore()
	svc := NewImportService(parser, findings, slog.Default())

	summary, err := svc.Import(context.Background(), " nightly ", strings.NewReader("{}"))
	require.NoError(t, err)
	assert.Equal(t, "nightly", parser.gotRun)
	assert.Equal(t, ImportSummary{RunName: "nightly", Imported: 2, Skipped: 2}, summary)

	listed, err := svc.ListRun(context.Background(), "nightly")
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestImportService_Import_KeepsReviewData(t *testing.T) {
	parser := &stubParser{findings: []model.Finding{{Hash: "a", RunName: "nightly"}}}
	findings := newMemFindingStore()
	registry := newMemRegistry(findings)
	importer := NewImportService(parser, findings, slog.Default())
	reviews := NewReviewStatusService(findings, registry, &memLedger{}, nil, ReviewStatusConfig{}, slog.Default())
	ctx := context.Background()

	_, err := importer.Import(ctx, "nightly", strings.NewReader(""))
	require.NoError(t, err)
	_, err = reviews.ChangeReviewStatus(ctx, "alice", "a", model.ReviewStatusFalsePositive, "macro expansion")
	require.NoError(t, err)

	parser.findings = []model.Finding{{Hash: "a", RunName: "release"}}
	_, err = importer.Import(ctx, "release", strings.NewReader(""))
	require.NoError(t, err)

	review, err := reviews.GetCurrentReview(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, model.ReviewStatusFalsePositive, review.Status)
	assert.Equal(t, "macro expansion", review.Comment)
}

func TestImportService_Import_Errors(t *testing.T) {
	svc := NewImportService(&stubParser{}, newMemFindingStore(), slog.Default())
	_, err := svc.Import(context.Background(), "  ", strings.NewReader(""))
	assert.ErrorIs(t, err, model.ErrInvalidReport)
	assert.ErrorContains(t, err, "run name is required")

	svc = NewImportService(&stubParser{err: errors.New("not a SARIF log")}, newMemFindingStore(), slog.Default())
	_, err = svc.Import(context.Background(), "nightly", strings.NewReader(""))
	assert.ErrorIs(t, err, model.ErrInvalidReport)
	assert.ErrorContains(t, err, "not a SARIF log")
}
