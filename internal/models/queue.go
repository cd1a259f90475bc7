package models

import "time"

// DepthPolicy selects how the Queue Manager treats items whose depth
// exceeds a source's maxDepth.
type DepthPolicy string

const (
	// DepthPolicyStrict rejects every item with depth > maxDepth.
	DepthPolicyStrict DepthPolicy = "strict"
	// DepthPolicyFlexible rejects such items unless they are priority.
	DepthPolicyFlexible DepthPolicy = "flexible"
	// DepthPolicyAdaptive allows over-depth items until a domain has
	// already produced AdaptiveDepthThreshold visited URLs.
	DepthPolicyAdaptive DepthPolicy = "adaptive"
)

// AdaptiveDepthThreshold is the number of visited URLs from a domain
// after which adaptive depth policy starts rejecting non-priority,
// over-depth candidates. Adopted as-is from the source system; the
// threshold should be configurable.
const AdaptiveDepthThreshold = 10

// QueueItem is a pending unit of crawl work. At most one queue item per
// normalized URL may exist across the pending and in-progress sets at any
// time; this invariant is enforced by the Queue Manager, not by QueueItem
// itself.
type QueueItem struct {
	URL        string    `json:"url"`
	Depth      int       `json:"depth"`
	ParentURL  string    `json:"parent_url,omitempty"`
	Score      int       `json:"score"`
	AddedAt    time.Time `json:"added_at"`
	IsPriority bool      `json:"is_priority"`
}

// QueueStats is the Queue Manager's cumulative, read-only snapshot used by
// progress events and job status reporting.
type QueueStats struct {
	DiscoveredByDepth map[int]int `json:"discovered_by_depth"`
	VisitedByDepth    map[int]int `json:"visited_by_depth"`
	MaxDepthReached   int         `json:"max_depth_reached"`
	RateLimited       int         `json:"rate_limited"`
	QueueLength       int         `json:"queue_length"`
	InProgressCount   int         `json:"in_progress_count"`
	VisitedCount      int         `json:"visited_count"`
}
