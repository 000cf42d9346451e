package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/reviewledger/internal/domain/model"
)

func TestStatusRepo_Get_DefaultForUnreviewedFinding(t *testing.T) {
	db := setupTestDB(t)
	addTestFinding(t, db, "h1")
	repo := NewStatusRepo(db)

	record, err := repo.Get(context.Background(), "h1")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultReviewRecord("h1"), record)
	assert.Equal(t, model.ReviewStatusUnreviewed, record.Status)
	assert.Empty(t, record.Comment)
	assert.Zero(t, record.Version)
}

func TestStatusRepo_Get_UnknownHash(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStatusRepo(db)

	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestStatusRepo_CompareAndSet_FirstWriteThenUpdate(t *testing.T) {
	db := setupTestDB(t)
	addTestFinding(t, db, "h1")
	repo := NewStatusRepo(db)
	ctx := context.Background()

	at := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)
	current := model.DefaultReviewRecord("h1")

	ok, err := repo.CompareAndSet(ctx, current, model.ReviewRecord{
		FindingHash: "h1",
		Status:      model.ReviewStatusConfirmed,
		Comment:     "This is really a bug",
		Author:      "alice",
		UpdatedAt:   at,
	})
	require.NoError(t, err)
	require.True(t, ok)

	stored, err := repo.Get(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, model.ReviewStatusConfirmed, stored.Status)
	assert.Equal(t, "This is really a bug", stored.Comment)
	assert.Equal(t, "alice", stored.Author)
	assert.True(t, at.Equal(stored.UpdatedAt))
	assert.Equal(t, int64(1), stored.Version)

	ok, err = repo.CompareAndSet(ctx, stored, model.ReviewRecord{
		FindingHash: "h1",
		Status:      model.ReviewStatusIntentional,
		Author:      "bob",
		UpdatedAt:   at.Add(time.Hour),
	})
	require.NoError(t, err)
	require.True(t, ok)

	stored, err = repo.Get(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, model.ReviewStatusIntentional, stored.Status)
	assert.Empty(t, stored.Comment)
	assert.Equal(t, "bob", stored.Author)
	assert.Equal(t, int64(2), stored.Version)
}

func TestStatusRepo_CompareAndSet_StaleVersionRejected(t *testing.T) {
	db := setupTestDB(t)
	addTestFinding(t, db, "h1")
	repo := NewStatusRepo(db)
	ctx := context.Background()

	stale := model.DefaultReviewRecord("h1")
	next := model.ReviewRecord{FindingHash: "h1", Status: model.ReviewStatusConfirmed, UpdatedAt: time.Now()}

	ok, err := repo.CompareAndSet(ctx, stale, next)
	require.NoError(t, err)
	require.True(t, ok)

	// A second writer that read the same default record loses.
	lost := model.ReviewRecord{FindingHash: "h1", Status: model.ReviewStatusFalsePositive, UpdatedAt: time.Now()}
	ok, err = repo.CompareAndSet(ctx, stale, lost)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.Get(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, model.ReviewStatusConfirmed, stored.Status)
	assert.Equal(t, int64(1), stored.Version)

	// Same for an update against an outdated version.
	ok, err = repo.CompareAndSet(ctx, stored, next)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = repo.CompareAndSet(ctx, stored, lost)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStatusRepo_CompareAndSet_UnknownHash(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStatusRepo(db)

	ok, err := repo.CompareAndSet(context.Background(), model.DefaultReviewRecord("ghost"), model.ReviewRecord{
		FindingHash: "ghost",
		Status:      model.ReviewStatusConfirmed,
		UpdatedAt:   time.Now(),
	})
	assert.False(t, ok)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestStatusRepo_CompareAndSet_HashMismatch(t *testing.T) {
	db := setupTestDB(t)
	addTestFinding(t, db, "h1")
	repo := NewStatusRepo(db)

	ok, err := repo.CompareAndSet(context.Background(), model.DefaultReviewRecord("h1"), model.ReviewRecord{
		FindingHash: "h2",
		Status:      model.ReviewStatusConfirmed,
	})
	assert.False(t, ok)
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrNotFound)
}
