package models

import "time"

// JobStatus is the crawl job's lifecycle state. Terminal states
// (completed/failed/canceled) are final: no further transition is
// permitted out of them.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCanceled  JobStatus = "canceled"
)

// IsTerminal reports whether status admits no further transition.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusCanceled:
		return true
	default:
		return false
	}
}

// CrawlProgress is the Job Manager's running tally for one job, updated by
// the Crawler Engine's transient reference and emitted with every
// job-progress event.
type CrawlProgress struct {
	PagesCrawled    int `json:"pages_crawled"`
	PagesDiscovered int `json:"pages_discovered"`
	PagesInQueue    int `json:"pages_in_queue"`
	MaxDepthReached int `json:"max_depth_reached"`
}

// CrawlConfig is the resolved set of knobs a crawl job runs with, clamped
// against the source's own policy and the global config's caps.
type CrawlConfig struct {
	MaxDepth     int    `json:"max_depth"`
	MaxPages     int    `json:"max_pages"`
	Concurrency  int    `json:"concurrency"`
	Strategy     string `json:"strategy"`
	CrawlDelayMs int    `json:"crawl_delay_ms"`
	UseSitemaps  bool   `json:"use_sitemaps"`
	MaxRetries   int    `json:"max_retries"`
	Force        bool   `json:"force"`
}

// Job is one crawl execution, exclusively owned by the Job Manager. The
// Crawler Engine holds only a transient reference to mutate Progress.
type Job struct {
	JobID     string        `json:"job_id"`
	SourceID  string        `json:"source_id"`
	Status    JobStatus     `json:"status"`
	Config    CrawlConfig   `json:"config"`
	StartTime *time.Time    `json:"start_time,omitempty"`
	EndTime   *time.Time    `json:"end_time,omitempty"`
	Progress  CrawlProgress `json:"progress"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// Snapshot returns a value copy of the job, safe to hand to event
// subscribers without exposing the Job Manager's internal pointer.
func (j *Job) Snapshot() Job {
	return *j
}
