package sqlite_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sqliteadapter "github.com/ericfisherdev/reviewledger/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/reviewledger/internal/application"
	"github.com/ericfisherdev/reviewledger/internal/domain/model"
)

// openService opens dbPath and wires a ReviewStatusService over it. Each call
// gets its own connections, the way a separate process would.
func openService(t *testing.T, dbPath string) (*application.ReviewStatusService, *sqliteadapter.DB) {
	t.Helper()

	db, err := sqliteadapter.NewDB(context.Background(), dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqliteadapter.RunMigrations(db.Writer))

	svc := application.NewReviewStatusService(
		sqliteadapter.NewFindingRepo(db),
		sqliteadapter.NewStatusRepo(db),
		sqliteadapter.NewCommentRepo(db),
		nil,
		application.ReviewStatusConfig{MaxRetries: 50, LockTimeout: 30 * time.Second},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return svc, db
}

func seedFindings(t *testing.T, db *sqliteadapter.DB, hashes ...string) {
	t.Helper()
	repo := sqliteadapter.NewFindingRepo(db)
	for _, h := range hashes {
		require.NoError(t, repo.Upsert(context.Background(), model.Finding{
			Hash:      h,
			RunName:   "nightly",
			CheckerID: "core.NullDereference",
			FilePath:  "src/main.c",
			Line:      1,
			CreatedAt: time.Now().UTC(),
		}))
	}
}

func TestReviewFlow_AuditScenario(t *testing.T) {
	ctx := context.Background()
	svc, db := openService(t, filepath.Join(t.TempDir(), "reviewledger.db"))
	seedFindings(t, db, "h1")

	steps := []struct {
		status  model.ReviewStatus
		comment string
		changed bool
	}{
		{model.ReviewStatusConfirmed, "This is really a bug", true},
		{model.ReviewStatusConfirmed, "This is really a bug", false},
		{model.ReviewStatusFalsePositive, "Not a bug", true},
		{model.ReviewStatusFalsePositive, "Not a bug", false},
	}
	for i, step := range steps {
		changed, err := svc.ChangeReviewStatus(ctx, "alice", "h1", step.status, step.comment)
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, step.changed, changed, "step %d", i)
	}

	system, err := svc.ListSystemComments(ctx, "h1")
	require.NoError(t, err)
	require.Len(t, system, 2)
	assert.Equal(t, `Review status changed from 'Unreviewed' to 'Confirmed bug' with comment: "This is really a bug"`, system[0].Text)
	assert.Equal(t, `Review status changed from 'Confirmed bug' to 'False positive' with comment: "Not a bug"`, system[1].Text)

	record, err := svc.GetCurrentReview(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, model.ReviewStatusFalsePositive, record.Status)
	assert.Equal(t, "Not a bug", record.Comment)
	assert.Equal(t, int64(2), record.Version)
}

func TestReviewFlow_WritersInSeparateProcesses(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reviewledger.db")
	svcA, db := openService(t, dbPath)
	svcB, _ := openService(t, dbPath)
	seedFindings(t, db, "shared")

	const perProcess = 8
	type result struct {
		changed bool
		err     error
	}
	results := make(chan result, 2*perProcess)

	var wg sync.WaitGroup
	for i := range perProcess {
		for p, svc := range []*application.ReviewStatusService{svcA, svcB} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				status := model.ReviewStatuses[(i+p)%len(model.ReviewStatuses)]
				changed, err := svc.ChangeReviewStatus(context.Background(),
					fmt.Sprintf("reviewer-%d-%d", p, i), "shared", status, fmt.Sprintf("note %d/%d", p, i))
				results <- result{changed: changed, err: err}
			}()
		}
	}
	wg.Wait()
	close(results)

	applied := 0
	for r := range results {
		require.NoError(t, r.err)
		if r.changed {
			applied++
		}
	}

	// Every comment is unique, so every call is a real change.
	assert.Equal(t, 2*perProcess, applied)

	system, err := svcA.ListSystemComments(context.Background(), "shared")
	require.NoError(t, err)
	assert.Len(t, system, applied)

	record, err := svcB.GetCurrentReview(context.Background(), "shared")
	require.NoError(t, err)
	assert.Equal(t, int64(applied), record.Version)
}

func TestReviewFlow_DifferentHashesDoNotInterfere(t *testing.T) {
	svc, db := openService(t, filepath.Join(t.TempDir(), "reviewledger.db"))
	hashes := []string{"a", "b", "c", "d"}
	seedFindings(t, db, hashes...)

	var wg sync.WaitGroup
	errs := make(chan error, len(hashes))
	for _, h := range hashes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ChangeReviewStatus(context.Background(), "alice", h, model.ReviewStatusIntentional, "intended in "+h)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	for _, h := range hashes {
		system, err := svc.ListSystemComments(context.Background(), h)
		require.NoError(t, err)
		require.Len(t, system, 1, h)
		assert.Contains(t, system[0].Text, "intended in "+h)
	}
}
