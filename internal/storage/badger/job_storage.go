package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/docsi/internal/errs"
	"github.com/ternarybob/docsi/internal/interfaces"
	"github.com/ternarybob/docsi/internal/models"
)

// JobStorage implements interfaces.JobStorage over a badgerhold store,
// keyed by JobID. It replaces the teacher's JobStorage — which carried a
// large surface for job trees, heartbeats, and URL-dedup bookkeeping this
// design has no use for — with the four operations the Job Manager (C8)
// actually needs.
type JobStorage struct {
	db     *DB
	logger arbor.ILogger
}

// NewJobStorage wraps db as a Job Manager persistence backend.
func NewJobStorage(db *DB, logger arbor.ILogger) *JobStorage {
	return &JobStorage{db: db, logger: logger}
}

// Save upserts job, keyed by its JobID.
func (s *JobStorage) Save(ctx context.Context, job *models.Job) error {
	if job.JobID == "" {
		return fmt.Errorf("badger: job id is required: %w", errs.ErrValidation)
	}
	if err := s.db.Store().Upsert(job.JobID, job); err != nil {
		return fmt.Errorf("badger: save job %s: %w", job.JobID, errs.ErrStorage)
	}
	return nil
}

// Get loads the job stored under jobID.
func (s *JobStorage) Get(ctx context.Context, jobID string) (*models.Job, error) {
	var job models.Job
	if err := s.db.Store().Get(jobID, &job); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("badger: job %s: %w", jobID, errs.ErrValidation)
		}
		return nil, fmt.Errorf("badger: get job %s: %w", jobID, errs.ErrStorage)
	}
	return &job, nil
}

// FindRunningBySource returns the one job in status running for
// sourceID, or nil if none is running — consulted by the Job Manager to
// enforce "at most one running job per source" (§5).
func (s *JobStorage) FindRunningBySource(ctx context.Context, sourceID string) (*models.Job, error) {
	var jobs []models.Job
	query := badgerhold.Where("SourceID").Eq(sourceID).And("Status").Eq(models.JobStatusRunning)
	if err := s.db.Store().Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("badger: find running job for source %s: %w", sourceID, errs.ErrStorage)
	}
	if len(jobs) == 0 {
		return nil, nil
	}
	return &jobs[0], nil
}

// List returns up to limit jobs, most recently created first. limit <= 0
// means unbounded.
func (s *JobStorage) List(ctx context.Context, limit int) ([]*models.Job, error) {
	var jobs []models.Job
	query := badgerhold.Where("JobID").Ne("").SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := s.db.Store().Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("badger: list jobs: %w", errs.ErrStorage)
	}

	result := make([]*models.Job, len(jobs))
	for i := range jobs {
		result[i] = &jobs[i]
	}
	return result, nil
}

var _ interfaces.JobStorage = (*JobStorage)(nil)
