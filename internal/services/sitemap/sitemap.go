// Package sitemap implements the Sitemap Processor (C3): robots.txt-driven
// discovery of sitemap locations, XML parsing of sitemaps and sitemap
// indexes, additive priority scoring, and include/exclude filtering. The
// robots.txt fetch-and-cache idiom is grounded on the teacher's
// content-crawling helpers and the retrieval pack's getRobots pattern
// (digster-scraper, bluesnake); temoto/robotstxt supplies the parser.
package sitemap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docsi/internal/errs"
	"github.com/ternarybob/docsi/internal/interfaces"
)

// maxSitemapRecursion bounds how many levels of sitemap-index nesting
// Parse will follow before giving up on that branch.
const maxSitemapRecursion = 5

// maxSitemapEntries is the global cap on entries returned from a single
// top-level Parse call, across every nested sitemap it follows.
const maxSitemapEntries = 20000

var wellKnownSitemapPaths = []string{"/sitemap.xml", "/sitemap_index.xml"}

// Processor implements interfaces.SitemapProcessor.
type Processor struct {
	logger arbor.ILogger
	client *http.Client

	robotsMu    sync.Mutex
	robotsCache map[string]*robotstxt.RobotsData // keyed by host, per the retrieval pack's bluesnake crawler.go
}

// New creates a Sitemap Processor. client performs every outbound robots.txt
// and sitemap fetch.
func New(logger arbor.ILogger, client *http.Client) *Processor {
	return &Processor{logger: logger, client: client, robotsCache: make(map[string]*robotstxt.RobotsData)}
}

// Discover fetches baseURL's robots.txt, collects any Sitemap: directives,
// and falls back to well-known locations when none are declared or
// robots.txt itself cannot be fetched. Failures here are never fatal to the
// crawl: an empty slice simply means seeding proceeds from the base URL
// alone.
func (p *Processor) Discover(ctx context.Context, baseURL string) ([]string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("sitemap: parse base url: %w", errs.ErrValidation)
	}

	sitemaps := p.sitemapsFromRobots(ctx, parsed)
	if len(sitemaps) > 0 {
		return sitemaps, nil
	}

	var found []string
	for _, path := range wellKnownSitemapPaths {
		candidate := fmt.Sprintf("%s://%s%s", parsed.Scheme, parsed.Host, path)
		if p.exists(ctx, candidate) {
			found = append(found, candidate)
		}
	}
	return found, nil
}

func (p *Processor) sitemapsFromRobots(ctx context.Context, base *url.URL) []string {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", base.Scheme, base.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug().Err(err).Str("host", base.Host).Msg("failed to fetch robots.txt")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}

	robots, err := robotstxt.FromBytes(body)
	if err != nil {
		p.logger.Debug().Err(err).Str("host", base.Host).Msg("failed to parse robots.txt")
		return nil
	}

	return robots.Sitemaps
}

func (p *Processor) exists(ctx context.Context, rawURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// isAllowedByRobots reports whether userAgent may fetch rawURL per the
// target host's robots.txt, fetching and parsing it at most once per host
// for this Processor's lifetime (robotsCache), grounded on the retrieval
// pack's bluesnake crawler.go robotsMap cache.
func (p *Processor) isAllowedByRobots(ctx context.Context, rawURL, userAgent string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return true
	}

	robots, ok := p.cachedRobots(parsed.Host)
	if !ok {
		robots = p.fetchRobots(ctx, parsed)
		p.robotsMu.Lock()
		p.robotsCache[parsed.Host] = robots
		p.robotsMu.Unlock()
	}
	if robots == nil {
		return true
	}

	group := robots.FindGroup(userAgent)
	return group.Test(parsed.Path)
}

func (p *Processor) cachedRobots(host string) (*robotstxt.RobotsData, bool) {
	p.robotsMu.Lock()
	defer p.robotsMu.Unlock()
	robots, ok := p.robotsCache[host]
	return robots, ok
}

// fetchRobots fetches and parses parsed.Host's robots.txt, returning nil
// (treated as "allow everything") on any fetch or parse failure.
func (p *Processor) fetchRobots(ctx context.Context, parsed *url.URL) *robotstxt.RobotsData {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", parsed.Scheme, parsed.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}
	robots, err := robotstxt.FromBytes(body)
	if err != nil {
		return nil
	}
	return robots
}

// IsAllowedByRobots exposes isAllowedByRobots to the URL Processor (C1),
// which calls it from Classify when a source's Policy.RespectRobots is set,
// satisfying urlprocessor.RobotsChecker.
func (p *Processor) IsAllowedByRobots(ctx context.Context, rawURL, userAgent string) bool {
	return p.isAllowedByRobots(ctx, rawURL, userAgent)
}

var _ interfaces.SitemapProcessor = (*Processor)(nil)

// priorityKeywords are the path keywords score.go rewards.
var priorityKeywords = []string{"docs", "doc", "guide", "guides", "api", "reference"}

var recencyWindow = 90 * 24 * time.Hour
