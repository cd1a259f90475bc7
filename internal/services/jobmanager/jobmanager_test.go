package jobmanager

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docsi/internal/models"
)

// memoryJobStorage is an in-memory interfaces.JobStorage stand-in, used
// so this package's tests exercise the state machine without depending
// on the badger package.
type memoryJobStorage struct {
	mu   sync.Mutex
	jobs map[string]*models.Job
}

func newMemoryJobStorage() *memoryJobStorage {
	return &memoryJobStorage{jobs: make(map[string]*models.Job)}
}

func (s *memoryJobStorage) Save(ctx context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *job
	s.jobs[job.JobID] = &clone
	return nil
}

func (s *memoryJobStorage) Get(ctx context.Context, jobID string) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, errors.New("not found")
	}
	clone := *job
	return &clone, nil
}

func (s *memoryJobStorage) FindRunningBySource(ctx context.Context, sourceID string) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range s.jobs {
		if job.SourceID == sourceID && job.Status == models.JobStatusRunning {
			clone := *job
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *memoryJobStorage) List(ctx context.Context, limit int) ([]*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var jobs []*models.Job
	for _, job := range s.jobs {
		clone := *job
		jobs = append(jobs, &clone)
	}
	return jobs, nil
}

func newManager() *Manager {
	return New(arbor.NewLogger(), newMemoryJobStorage(), nil)
}

func TestCreateJob_StartsPending(t *testing.T) {
	m := newManager()
	job, err := m.CreateJob(context.Background(), "src-1", models.CrawlConfig{MaxPages: 10})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, job.Status)
}

func TestCreateJob_RejectsWhenAlreadyRunning(t *testing.T) {
	m := newManager()
	job, err := m.CreateJob(context.Background(), "src-1", models.CrawlConfig{})
	require.NoError(t, err)
	require.NoError(t, m.MarkRunning(context.Background(), job.JobID))

	_, err = m.CreateJob(context.Background(), "src-1", models.CrawlConfig{})
	assert.Error(t, err)
}

func TestMarkRunning_ThenMarkCompleted(t *testing.T) {
	m := newManager()
	job, err := m.CreateJob(context.Background(), "src-1", models.CrawlConfig{})
	require.NoError(t, err)

	require.NoError(t, m.MarkRunning(context.Background(), job.JobID))
	require.NoError(t, m.MarkCompleted(context.Background(), job.JobID))

	got, err := m.Get(context.Background(), job.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, got.Status)
	assert.NotNil(t, got.EndTime)
}

func TestMarkCompleted_RejectedFromPending(t *testing.T) {
	m := newManager()
	job, err := m.CreateJob(context.Background(), "src-1", models.CrawlConfig{})
	require.NoError(t, err)

	err = m.MarkCompleted(context.Background(), job.JobID)
	assert.Error(t, err)
}

func TestMarkFailed_RecordsError(t *testing.T) {
	m := newManager()
	job, err := m.CreateJob(context.Background(), "src-1", models.CrawlConfig{})
	require.NoError(t, err)
	require.NoError(t, m.MarkRunning(context.Background(), job.JobID))

	require.NoError(t, m.MarkFailed(context.Background(), job.JobID, errors.New("boom")))

	got, err := m.Get(context.Background(), job.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, got.Status)
	assert.Equal(t, "boom", got.Error)
}

func TestCancel_FromPendingSucceeds(t *testing.T) {
	m := newManager()
	job, err := m.CreateJob(context.Background(), "src-1", models.CrawlConfig{})
	require.NoError(t, err)

	ok, err := m.Cancel(context.Background(), job.JobID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCancel_AlreadyTerminalIsNoop(t *testing.T) {
	m := newManager()
	job, err := m.CreateJob(context.Background(), "src-1", models.CrawlConfig{})
	require.NoError(t, err)
	require.NoError(t, m.MarkRunning(context.Background(), job.JobID))
	require.NoError(t, m.MarkCompleted(context.Background(), job.JobID))

	ok, err := m.Cancel(context.Background(), job.JobID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateProgress_RejectedAfterTerminal(t *testing.T) {
	m := newManager()
	job, err := m.CreateJob(context.Background(), "src-1", models.CrawlConfig{})
	require.NoError(t, err)
	require.NoError(t, m.MarkRunning(context.Background(), job.JobID))
	require.NoError(t, m.MarkCompleted(context.Background(), job.JobID))

	err = m.UpdateProgress(context.Background(), job.JobID, models.CrawlProgress{PagesCrawled: 5})
	assert.Error(t, err)
}

func TestUpdateProgress_AppliesWhileRunning(t *testing.T) {
	m := newManager()
	job, err := m.CreateJob(context.Background(), "src-1", models.CrawlConfig{})
	require.NoError(t, err)
	require.NoError(t, m.MarkRunning(context.Background(), job.JobID))

	require.NoError(t, m.UpdateProgress(context.Background(), job.JobID, models.CrawlProgress{PagesCrawled: 3}))

	got, err := m.Get(context.Background(), job.JobID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Progress.PagesCrawled)
}
