// Package app wires DocSI's nine components (C1-C9) into a single library
// surface (§6), the shape cmd/docsi drives and a future host layer could
// embed directly.
//
// Grounded on the teacher's internal/app/app.go New/initDatabase/
// initServices/Close phased-construction pattern, trimmed from a ~30-field
// App aggregating HTTP handlers, LLM/chat/scheduler services, and a
// queue-based job-definition engine down to the nine components §6 and
// §4.7's data-flow diagram actually name.
package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docsi/internal/common"
	"github.com/ternarybob/docsi/internal/httpclient"
	"github.com/ternarybob/docsi/internal/interfaces"
	"github.com/ternarybob/docsi/internal/models"
	"github.com/ternarybob/docsi/internal/services/crawler"
	"github.com/ternarybob/docsi/internal/services/events"
	"github.com/ternarybob/docsi/internal/services/extractor"
	"github.com/ternarybob/docsi/internal/services/jobmanager"
	"github.com/ternarybob/docsi/internal/services/searchindex"
	"github.com/ternarybob/docsi/internal/services/sitemap"
	"github.com/ternarybob/docsi/internal/services/sourceregistry"
	"github.com/ternarybob/docsi/internal/services/urlprocessor"
	"github.com/ternarybob/docsi/internal/storage/badger"
	"github.com/ternarybob/docsi/internal/storage/docstore"
)

// App holds every wired component and is the library surface §6 describes.
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	EventService   interfaces.EventService
	URLProcessor   interfaces.URLProcessor
	Extractor      interfaces.ContentExtractor
	Sitemaps       interfaces.SitemapProcessor
	Storage        interfaces.StorageManager
	SearchIndex    *searchindex.Index
	Sources        interfaces.SourceRegistry
	CrawlerEngine  interfaces.CrawlerEngine
	JobManager     interfaces.JobManager

	sourceRegistry *sourceregistry.Registry
	jobDB          *badger.DB
}

// New constructs and wires every component in dependency order: event bus
// first (everything else may publish to it), then the storage layer, then
// the crawl-time services that depend on storage, then the Crawler Engine
// and Job Manager that orchestrate them.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	a.EventService = events.NewService(logger)

	a.Storage = docstore.New(logger, cfg.DataDir)
	a.SearchIndex = searchindex.New(logger, cfg.DataDir)
	a.sourceRegistry = sourceregistry.New(logger, cfg.DataDir, a.Storage)
	a.Sources = a.sourceRegistry

	sitemaps := sitemap.New(logger, httpclient.NewDefault())
	a.Sitemaps = sitemaps
	a.URLProcessor = urlprocessor.New(logger, sitemaps)
	a.Extractor = extractor.New(logger, a.URLProcessor, extractor.DefaultChain()...)

	a.CrawlerEngine = crawler.New(logger, a.URLProcessor, a.Extractor, a.Sitemaps, a.Storage, a.EventService)

	jobDB, err := badger.Open(logger, cfg.DataDir+"/jobs")
	if err != nil {
		return nil, fmt.Errorf("app: open job store: %w", err)
	}
	a.jobDB = jobDB
	a.JobManager = jobmanager.New(logger, badger.NewJobStorage(jobDB, logger), a.EventService)

	if err := a.loadCustomLinks(); err != nil {
		logger.Warn().Err(err).Msg("failed to load custom links at startup")
	}

	if err := a.EventService.Subscribe(models.EventJobCompleted, a.onJobCompleted); err != nil {
		return nil, fmt.Errorf("app: subscribe job-completed: %w", err)
	}

	logger.Info().Str("data_dir", cfg.DataDir).Msg("DocSI application initialized")
	return a, nil
}

func (a *App) loadCustomLinks() error {
	links, err := a.sourceRegistry.CustomLinks(context.Background())
	if err != nil {
		return err
	}
	a.SearchIndex.SetCustomLinks(links)
	return nil
}

// onJobCompleted rebuilds the Search Index for a job's source once its
// crawl finishes, per §4's data-flow note: "on completion, Search Index
// (C6) is rebuilt ... from C5 for the source."
func (a *App) onJobCompleted(ctx context.Context, event models.Event) error {
	payload, ok := event.Payload.(models.JobSnapshotPayload)
	if !ok {
		return nil
	}
	return a.RebuildSearchIndex(ctx, payload.Job.SourceID)
}

// RebuildSearchIndex re-derives sourceID's fuzzy index from every document
// the Storage Manager currently holds for it.
func (a *App) RebuildSearchIndex(ctx context.Context, sourceID string) error {
	source, err := a.Sources.FindByID(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("app: rebuild index: %w", err)
	}

	index, err := a.Storage.ListSource(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("app: rebuild index: %w", err)
	}

	docs := make([]*models.StoredDocument, 0, len(index.Pages))
	for _, page := range index.Pages {
		doc, err := a.Storage.FindByID(ctx, sourceID, page.ID)
		if err != nil {
			a.Logger.Warn().Err(err).Str("doc_id", page.ID).Msg("skipping unreadable document during index rebuild")
			continue
		}
		docs = append(docs, doc)
	}

	return a.SearchIndex.Rebuild(ctx, sourceID, source.Name, source.Tags, docs)
}

// StartCrawl creates a job for sourceID, marks it running, and launches
// the Crawler Engine against it in a goroutine, returning the job handle
// immediately. The background run updates the Job Manager's state machine
// as the crawl progresses. Because the job is already running when
// StartCrawl returns, a second StartCrawl for the same source is rejected
// by the Job Manager.
func (a *App) StartCrawl(ctx context.Context, sourceID string, cfg models.CrawlConfig) (*models.Job, error) {
	source, err := a.Sources.FindByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	job, err := a.JobManager.CreateJob(ctx, sourceID, cfg)
	if err != nil {
		return nil, err
	}

	if err := a.JobManager.MarkRunning(ctx, job.JobID); err != nil {
		return nil, err
	}

	go a.runCrawl(source, job)
	return job, nil
}

func (a *App) runCrawl(source *models.DocumentSource, job *models.Job) {
	ctx := context.Background()

	runErr := a.CrawlerEngine.Run(ctx, source, job)

	if err := a.JobManager.UpdateProgress(ctx, job.JobID, job.Progress); err != nil {
		a.Logger.Warn().Err(err).Str("job_id", job.JobID).Msg("failed to persist final progress")
	}

	if runErr != nil {
		if err := a.JobManager.MarkFailed(ctx, job.JobID, runErr); err != nil {
			a.Logger.Error().Err(err).Str("job_id", job.JobID).Msg("failed to mark job failed")
		}
		return
	}

	if err := a.JobManager.MarkCompleted(ctx, job.JobID); err != nil {
		a.Logger.Error().Err(err).Str("job_id", job.JobID).Msg("failed to mark job completed")
	}
}

// CancelJob cancels jobID both in the Job Manager's state machine and in
// the Crawler Engine's dispatch loop, so an in-flight Run stops promptly.
func (a *App) CancelJob(ctx context.Context, jobID string) (bool, error) {
	a.CrawlerEngine.CancelJob(jobID)
	return a.JobManager.Cancel(ctx, jobID)
}

// Close releases every resource App opened.
func (a *App) Close() error {
	if a.jobDB != nil {
		if err := a.jobDB.Close(); err != nil {
			return fmt.Errorf("app: close job store: %w", err)
		}
	}
	if a.EventService != nil {
		if err := a.EventService.Close(); err != nil {
			return fmt.Errorf("app: close event service: %w", err)
		}
	}
	return nil
}
