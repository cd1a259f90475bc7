package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docsi/internal/models"
)

func newJobStorage(t *testing.T) *JobStorage {
	t.Helper()
	db, err := Open(arbor.NewLogger(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewJobStorage(db, arbor.NewLogger())
}

func TestSave_PersistsAndGetRoundTrips(t *testing.T) {
	storage := newJobStorage(t)
	ctx := context.Background()

	job := &models.Job{
		JobID:     "job-1",
		SourceID:  "src-1",
		Status:    models.JobStatusPending,
		CreatedAt: time.Now(),
	}
	require.NoError(t, storage.Save(ctx, job))

	got, err := storage.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "job-1", got.JobID)
	assert.Equal(t, models.JobStatusPending, got.Status)
}

func TestGet_UnknownJobReturnsError(t *testing.T) {
	storage := newJobStorage(t)
	_, err := storage.Get(context.Background(), "missing")
	assert.Error(t, err)
}

func TestFindRunningBySource_ReturnsOnlyRunningJob(t *testing.T) {
	storage := newJobStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, &models.Job{JobID: "job-1", SourceID: "src-1", Status: models.JobStatusCompleted}))
	require.NoError(t, storage.Save(ctx, &models.Job{JobID: "job-2", SourceID: "src-1", Status: models.JobStatusRunning}))

	running, err := storage.FindRunningBySource(ctx, "src-1")
	require.NoError(t, err)
	require.NotNil(t, running)
	assert.Equal(t, "job-2", running.JobID)
}

func TestFindRunningBySource_NoneRunningReturnsNil(t *testing.T) {
	storage := newJobStorage(t)
	ctx := context.Background()
	require.NoError(t, storage.Save(ctx, &models.Job{JobID: "job-1", SourceID: "src-1", Status: models.JobStatusCompleted}))

	running, err := storage.FindRunningBySource(ctx, "src-1")
	require.NoError(t, err)
	assert.Nil(t, running)
}

func TestList_OrdersMostRecentFirstAndRespectsLimit(t *testing.T) {
	storage := newJobStorage(t)
	ctx := context.Background()

	base := time.Now()
	require.NoError(t, storage.Save(ctx, &models.Job{JobID: "job-old", CreatedAt: base}))
	require.NoError(t, storage.Save(ctx, &models.Job{JobID: "job-new", CreatedAt: base.Add(time.Minute)}))

	jobs, err := storage.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "job-new", jobs[0].JobID)
}
