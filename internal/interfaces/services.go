package interfaces

import (
	"context"

	"github.com/ternarybob/docsi/internal/models"
)

// RejectReason enumerates classify's stable rejection reasons (C1).
type RejectReason string

const (
	RejectInvalidURL    RejectReason = "invalid_url"
	RejectDepthExceeded RejectReason = "depth_exceeded"
	RejectHostMismatch  RejectReason = "host_mismatch"
	RejectExtension     RejectReason = "non_html_extension"
	RejectNotIncluded   RejectReason = "not_included"
	RejectExcluded      RejectReason = "excluded"
	RejectRobots        RejectReason = "robots"
)

// ClassifyResult is classify's outcome: either Accepted with the
// normalized URL, or rejected with a stable reason.
type ClassifyResult struct {
	Accepted bool
	URL      string
	Reason   RejectReason
}

// URLProcessor is the URL Processor's (C1) public contract.
type URLProcessor interface {
	Normalize(rawURL, baseURL string) (string, bool)
	Classify(url string, source *models.DocumentSource, parentURL string, depth int) ClassifyResult
	ExtractLinks(html, baseURL string) []string
	DepthFromParent(url, parentURL string, parentDepth int, baseURL string) int
	DepthFromPath(url string) int
}

// ContentExtractor is the Content Extractor's (C2) public contract.
type ContentExtractor interface {
	Extract(html, url string, opts ExtractOptions) (*models.ProcessedPage, error)
}

// ExtractOptions tunes one Extract call.
type ExtractOptions struct {
	RetainFullHTML bool
	RenderMarkdown bool
}

// SitemapProcessor is the Sitemap Processor's (C3) public contract.
type SitemapProcessor interface {
	Discover(ctx context.Context, baseURL string) ([]string, error)
	Parse(ctx context.Context, sitemapURL string) ([]SitemapEntry, error)
	Score(entry SitemapEntry, baseURL string, opts ScoreOptions) int
	Filter(entries []SitemapEntry, include, exclude []string) []SitemapEntry
}

// SitemapEntry is a single <url> element's data from an XML sitemap.
type SitemapEntry struct {
	Loc        string
	LastMod    string
	Priority   float64
	HasPriority bool
}

// ScoreOptions carries the pattern boosts/demotions §4.3 folds into score.
type ScoreOptions struct {
	PatternBoosts    map[string]int
	PatternDemotions map[string]int
}

// QueueManager is the Queue Manager's (C4) public contract.
type QueueManager interface {
	AddURL(url string, depth int, parentURL string, isPriority bool) bool
	GetNextBatch(maxSize int) []models.QueueItem
	MarkVisited(url string, depth int)
	MarkFailed(url string, depth int)
	Pause()
	Resume()
	Cancel()
	Stats() models.QueueStats
	IsEmpty() bool
}

// CrawlerEngine is the Crawler Engine's (C7) public contract.
type CrawlerEngine interface {
	Run(ctx context.Context, source *models.DocumentSource, job *models.Job) error
	CancelJob(jobID string)
}

// JobManager is the Job Manager's (C8) public contract.
type JobManager interface {
	CreateJob(ctx context.Context, sourceID string, cfg models.CrawlConfig) (*models.Job, error)
	MarkRunning(ctx context.Context, jobID string) error
	UpdateProgress(ctx context.Context, jobID string, progress models.CrawlProgress) error
	MarkCompleted(ctx context.Context, jobID string) error
	MarkFailed(ctx context.Context, jobID string, err error) error
	Cancel(ctx context.Context, jobID string) (bool, error)
	Get(ctx context.Context, jobID string) (*models.Job, error)
}

// SearchResult is one document's match in a search response.
type SearchResult struct {
	Document    *models.StoredDocument
	SourceName  string
	Score       float64
	Snippet     string
	Breadcrumbs []string
}

// SourceResultGroup groups ranked results by source (§4.6's output shape).
type SourceResultGroup struct {
	SourceName string
	Results    []SearchResult
}

// SearchResponse is search's top-level return value.
type SearchResponse struct {
	GroupedResults    []SourceResultGroup
	CustomLinkMatches []models.CustomLink
}

// SearchIndex is the Search Index's (C6) public contract.
type SearchIndex interface {
	Rebuild(ctx context.Context, sourceID, sourceName string, tags []string, docs []*models.StoredDocument) error
	Search(ctx context.Context, query string) (SearchResponse, error)
}
