package crawler

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docsi/internal/common"
	"github.com/ternarybob/docsi/internal/errs"
	"github.com/ternarybob/docsi/internal/httpclient"
	"github.com/ternarybob/docsi/internal/interfaces"
	"github.com/ternarybob/docsi/internal/models"
	"github.com/ternarybob/docsi/internal/services/queuemanager"
)

// Engine is the Crawler Engine (C7): it orchestrates the URL Processor,
// Content Extractor, Sitemap Processor, and Storage Manager to run one
// crawl job to completion, emitting progress events throughout. It holds
// only a transient reference to the job's progress; the Job Manager
// remains the owner of Job state.
type Engine struct {
	logger    arbor.ILogger
	urls      interfaces.URLProcessor
	extractor interfaces.ContentExtractor
	sitemaps  interfaces.SitemapProcessor
	storage   interfaces.StorageManager
	events    interfaces.EventService

	mu        sync.Mutex
	cancelled map[string]*int32
}

// New wires the Crawler Engine against its four collaborators and the
// event bus every running job publishes progress to.
func New(logger arbor.ILogger, urls interfaces.URLProcessor, extractor interfaces.ContentExtractor, sitemaps interfaces.SitemapProcessor, storage interfaces.StorageManager, events interfaces.EventService) *Engine {
	return &Engine{
		logger:    logger,
		urls:      urls,
		extractor: extractor,
		sitemaps:  sitemaps,
		storage:   storage,
		events:    events,
		cancelled: make(map[string]*int32),
	}
}

// CancelJob sets jobID's cooperative cancel flag. Already-issued fetches
// run to completion; the loop exits, and its results are discarded, at
// the next poll point per §4.7.2.
func (e *Engine) CancelJob(jobID string) {
	e.mu.Lock()
	flag := e.flagFor(jobID)
	e.mu.Unlock()
	atomic.StoreInt32(flag, 1)
}

func (e *Engine) flagFor(jobID string) *int32 {
	if flag, ok := e.cancelled[jobID]; ok {
		return flag
	}
	flag := new(int32)
	e.cancelled[jobID] = flag
	return flag
}

func (e *Engine) isCancelled(flag *int32) bool {
	return atomic.LoadInt32(flag) != 0
}

// Run drives job to completion against source, per §4.7's algorithm.
// Callers are expected to have already transitioned job to running; Run
// only mutates job.Progress and returns a terminal error (or nil) for the
// caller to translate into the job's final status.
func (e *Engine) Run(ctx context.Context, source *models.DocumentSource, job *models.Job) error {
	e.mu.Lock()
	flag := e.flagFor(job.JobID)
	e.mu.Unlock()

	cfg := job.Config
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 2
	}
	// cfg.MaxPages == 0 is a valid, literal request to store nothing (the
	// loop below breaks before the first batch); resolving an absent
	// override to the source's own policy is the caller's job (the CLI's
	// resolveCrawlConfig), not this engine's.

	userAgent := source.Policy.UserAgent
	if userAgent == "" {
		userAgent = common.DefaultUserAgent
	}
	client := httpclient.New(httpclient.DefaultTimeout, userAgent)

	queue := queuemanager.New(e.logger, e.events, job.JobID, queuemanager.Config{
		MaxDepth:     cfg.MaxDepth,
		Concurrency:  cfg.Concurrency,
		CrawlDelayMs: cfg.CrawlDelayMs,
		DepthPolicy:  depthPolicyFor(cfg.Strategy),
	})

	if cfg.UseSitemaps {
		e.seedFromSitemaps(ctx, source, queue)
	}

	if normalized, ok := e.urls.Normalize(source.BaseURL, source.BaseURL); ok {
		queue.AddURL(normalized, 0, "", true)
	}

	crawled := 0
	for {
		if e.isCancelled(flag) || ctx.Err() != nil {
			return fmt.Errorf("job %s: %w", job.JobID, errs.ErrCancelled)
		}
		if crawled >= cfg.MaxPages {
			break
		}
		if queue.IsEmpty() {
			break
		}

		batchSize := cfg.MaxPages - crawled
		if batchSize > cfg.Concurrency {
			batchSize = cfg.Concurrency
		}
		batch := queue.GetNextBatch(batchSize)
		if len(batch) == 0 {
			if queue.IsEmpty() {
				break
			}
			time.Sleep(100 * time.Millisecond)
			continue
		}

		var wg sync.WaitGroup
		for _, item := range batch {
			wg.Add(1)
			item := item
			common.SafeGo(e.logger, "crawlOne", func() {
				defer wg.Done()
				e.crawlOne(ctx, client, source, queue, item, job, cfg)
			})
		}
		wg.Wait()

		stats := queue.Stats()
		crawled = stats.VisitedCount
		e.publishQueueStats(job, stats)

		if cfg.CrawlDelayMs > 0 {
			time.Sleep(time.Duration(cfg.CrawlDelayMs) * time.Millisecond)
		}
	}

	job.Progress.PagesCrawled = crawled
	finalStats := queue.Stats()
	job.Progress.PagesInQueue = finalStats.QueueLength
	job.Progress.MaxDepthReached = finalStats.MaxDepthReached
	for _, count := range finalStats.DiscoveredByDepth {
		job.Progress.PagesDiscovered += count
	}
	return nil
}

// crawlOne fetches, extracts, stores, and follows links for a single
// queue item, then marks it visited or failed.
func (e *Engine) crawlOne(ctx context.Context, client *http.Client, source *models.DocumentSource, queue *queuemanager.Manager, item models.QueueItem, job *models.Job, cfg models.CrawlConfig) {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	result, err := fetchWithRetry(ctx, e.logger, client, item.URL, maxRetries)
	if err != nil {
		e.logger.Warn().Str("url", item.URL).Err(err).Msg("fetch failed, giving up")
		queue.MarkFailed(item.URL, item.Depth)
		return
	}

	if !isHTMLOrXML(result.ContentType) {
		queue.MarkVisited(item.URL, item.Depth)
		return
	}

	page, err := e.extractor.Extract(string(result.Body), item.URL, interfaces.ExtractOptions{})
	if err != nil {
		e.logger.Warn().Str("url", item.URL).Err(err).Msg("extraction failed")
		queue.MarkFailed(item.URL, item.Depth)
		return
	}

	stored := false
	if len(page.TextContent()) >= minTextContentLength {
		docID := common.DocumentID(page.URL)
		doc := models.FromProcessedPage(page, docID, source.ID, time.Now())
		if _, err := e.storage.Store(ctx, source.ID, doc, interfaces.StoreOptions{
			Overwrite:           cfg.Force,
			UpdateOnlyIfChanged: true,
		}); err != nil {
			e.logger.Error().Str("url", item.URL).Err(err).Msg("store failed")
		} else {
			stored = true
		}
	} else {
		e.logger.Warn().Str("url", item.URL).Int("length", len(page.TextContent())).Msg("extracted text below minimum threshold, not persisted")
	}

	e.publishPageCrawled(job, item, page.Title, stored)

	for _, link := range page.OutboundLinks {
		depth := e.urls.DepthFromParent(link, item.URL, item.Depth, source.BaseURL)
		result := e.urls.Classify(link, source, item.URL, depth)
		if !result.Accepted {
			continue
		}
		queue.AddURL(result.URL, depth, item.URL, false)
	}

	queue.MarkVisited(item.URL, item.Depth)
}

// minTextContentLength is the minimum extracted-text length (§3's
// ProcessedPage invariant) below which a page is discarded rather than
// stored.
const minTextContentLength = 10

func (e *Engine) seedFromSitemaps(ctx context.Context, source *models.DocumentSource, queue *queuemanager.Manager) {
	sitemapURLs, err := e.sitemaps.Discover(ctx, source.BaseURL)
	if err != nil {
		e.logger.Warn().Str("source", source.Name).Err(err).Msg("sitemap discovery failed, proceeding with base URL only")
		return
	}

	var entries []interfaces.SitemapEntry
	for _, sitemapURL := range sitemapURLs {
		parsed, err := e.sitemaps.Parse(ctx, sitemapURL)
		if err != nil {
			e.logger.Warn().Str("sitemap", sitemapURL).Err(err).Msg("sitemap parse failed, skipping")
			continue
		}
		entries = append(entries, parsed...)
	}
	if len(entries) == 0 {
		return
	}

	entries = e.sitemaps.Filter(entries, source.Policy.IncludePatterns, source.Policy.ExcludePatterns)

	added := 0
	for _, entry := range entries {
		normalized, ok := e.urls.Normalize(entry.Loc, source.BaseURL)
		if !ok {
			continue
		}
		depth := e.urls.DepthFromPath(normalized)
		if queue.AddURL(normalized, depth, "", true) {
			added++
		}
	}

	if added > 0 {
		e.publishSitemapURLsAdded(source.ID, added)
	}
}

func depthPolicyFor(strategy string) models.DepthPolicy {
	switch models.DepthPolicy(strategy) {
	case models.DepthPolicyFlexible:
		return models.DepthPolicyFlexible
	case models.DepthPolicyAdaptive:
		return models.DepthPolicyAdaptive
	default:
		return models.DepthPolicyStrict
	}
}

var _ interfaces.CrawlerEngine = (*Engine)(nil)
