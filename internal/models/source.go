package models

import (
	"fmt"
	"net/url"
	"time"
)

// CrawlPolicy is the tuple of per-source limits and filters that govern how
// a DocumentSource is crawled: depth/page caps, politeness delay, and the
// include/exclude regex sequences consulted by the URL Processor.
type CrawlPolicy struct {
	MaxDepth        int      `json:"max_depth"`
	MaxPages        int      `json:"max_pages"`
	CrawlDelayMs    int      `json:"crawl_delay_ms"`
	IncludePatterns []string `json:"include_patterns,omitempty"`
	ExcludePatterns []string `json:"exclude_patterns,omitempty"`
	UserAgent       string   `json:"user_agent,omitempty"`
	RespectRobots   bool     `json:"respect_robots"`
}

// DocumentSource is a registered crawl target: the stable record the Source
// Registry owns. Removing a source removes all of its persisted documents
// atomically via the Storage Manager.
type DocumentSource struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	BaseURL     string      `json:"base_url"`
	Tags        []string    `json:"tags,omitempty"`
	AddedAt     time.Time   `json:"added_at"`
	LastUpdated time.Time   `json:"last_updated"`
	PageCount   int         `json:"page_count"`
	Policy      CrawlPolicy `json:"policy"`
}

// Validate checks the invariants this record must satisfy before it is
// admitted to the registry: a non-empty name, a parseable http(s) base URL,
// a non-negative max depth and crawl delay, and a max page count of at
// least 1.
func (s *DocumentSource) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("source name is required")
	}
	if s.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}

	parsed, err := url.Parse(s.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("base URL scheme must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("base URL host is empty")
	}

	if s.Policy.MaxDepth < 0 {
		return fmt.Errorf("max depth must be non-negative")
	}
	if s.Policy.MaxPages < 1 {
		return fmt.Errorf("max pages must be at least 1")
	}
	if s.Policy.CrawlDelayMs < 0 {
		return fmt.Errorf("crawl delay must be non-negative")
	}

	return nil
}

// Hostname returns the base URL's host, used by the URL Processor to scope
// crawling to the source's own domain.
func (s *DocumentSource) Hostname() string {
	parsed, err := url.Parse(s.BaseURL)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

// SourceIndex is the per-source manifest persisted at
// <dataDir>/<sourceId>/index.json: a lightweight listing of stored pages
// that is rebuilt on every successful store and consulted by listPages.
type SourceIndex struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	BaseURL   string         `json:"base_url"`
	PageCount int            `json:"page_count"`
	Pages     []IndexedPage  `json:"pages"`
	IndexedAt time.Time      `json:"indexed_at"`
}

// IndexedPage is one entry in a SourceIndex.
type IndexedPage struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// CustomLink is a user-pinned link surfaced by search alongside regular
// ranked results (§4.9's customLinks sequence in the registry document).
type CustomLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// SourceRegistryDocument is the single JSON document persisted at
// dataDir/config.json: the Source Registry's entire on-disk state.
type SourceRegistryDocument struct {
	Sources     []DocumentSource `json:"sources"`
	CustomLinks []CustomLink     `json:"customLinks"`
}
