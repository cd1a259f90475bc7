package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/ternarybob/docsi/internal/app"
	"github.com/ternarybob/docsi/internal/common"
	"github.com/ternarybob/docsi/internal/models"
)

func runCrawl(args []string) error {
	fs := flag.NewFlagSet("crawl", flag.ExitOnError)
	cf := registerCommonFlags(fs)

	var (
		sourceName   = fs.String("source", "", "Source name to crawl (required)")
		maxDepth     = fs.Int("job-max-depth", 0, "Job override: max depth (0 = use source policy)")
		maxPages     = fs.Int("job-max-pages", 0, "Job override: max pages (0 = use source policy)")
		concurrency  = fs.Int("concurrency", 2, "Concurrent fetch workers")
		strategy     = fs.String("strategy", "strict", "Depth policy: strict, flexible, or adaptive")
		crawlDelayMs = fs.Int("crawl-delay-ms", 0, "Override per-request politeness delay")
		useSitemaps  = fs.Bool("use-sitemaps", true, "Seed the queue from the source's sitemap")
		maxRetries   = fs.Int("max-retries", 3, "Max fetch retries per URL")
		force        = fs.Bool("force", false, "Overwrite stored pages whose content changed")
		wait         = fs.Bool("wait", true, "Block and report progress until the job reaches a terminal state")
	)
	fs.Usage = func() {
		fmt.Println(`Usage: docsi crawl -source <name> [flags]

Start a crawl job for a registered source.`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *sourceName == "" {
		fs.Usage()
		return fmt.Errorf("-source is required")
	}

	a, logger, err := cf.buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	source, err := a.Sources.FindByName(ctx, *sourceName)
	if err != nil {
		return fmt.Errorf("find source: %w", err)
	}

	common.PrintBanner(a.Config, logger)

	job, err := a.StartCrawl(ctx, source.ID, resolveCrawlConfig(a.Config, source, models.CrawlConfig{
		MaxDepth:     *maxDepth,
		MaxPages:     *maxPages,
		Concurrency:  *concurrency,
		Strategy:     *strategy,
		CrawlDelayMs: *crawlDelayMs,
		UseSitemaps:  *useSitemaps,
		MaxRetries:   *maxRetries,
		Force:        *force,
	}))
	if err != nil {
		return fmt.Errorf("start crawl: %w", err)
	}

	fmt.Printf("Started job %s for source %q\n", job.JobID, source.Name)
	if !*wait {
		return nil
	}

	return waitForCompletion(ctx, a, job.JobID)
}

// resolveCrawlConfig fills in the "maxDepth?, maxPages?, ..." optional
// overrides §6's startCrawl operation describes: a flag left at its zero
// value falls back to the source's own policy, then the whole is clamped
// against the global config's caps. This is the boundary's job, not the
// Crawler Engine's — Run trusts the CrawlConfig it is handed is already
// resolved.
func resolveCrawlConfig(cfg *common.Config, source *models.DocumentSource, override models.CrawlConfig) models.CrawlConfig {
	resolved := override
	if resolved.MaxDepth <= 0 {
		resolved.MaxDepth = source.Policy.MaxDepth
	}
	if resolved.MaxPages <= 0 {
		resolved.MaxPages = source.Policy.MaxPages
	}
	if resolved.CrawlDelayMs <= 0 {
		resolved.CrawlDelayMs = source.Policy.CrawlDelayMs
	}
	if cfg.MaxCrawlDepth > 0 && resolved.MaxDepth > cfg.MaxCrawlDepth {
		resolved.MaxDepth = cfg.MaxCrawlDepth
	}
	if cfg.MaxCrawlPages > 0 && resolved.MaxPages > cfg.MaxCrawlPages {
		resolved.MaxPages = cfg.MaxCrawlPages
	}
	return resolved
}

// waitForCompletion polls the Job Manager and prints a progress line every
// second until the job reaches a terminal state, mirroring the retrieval
// pack's bluesnake CLI progress loop.
func waitForCompletion(ctx context.Context, a *app.App, jobID string) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		job, err := a.JobManager.Get(ctx, jobID)
		if err != nil {
			return fmt.Errorf("get job: %w", err)
		}

		fmt.Printf("\rstatus=%-10s crawled=%-5d discovered=%-5d queued=%-5d max_depth=%d",
			job.Status, job.Progress.PagesCrawled, job.Progress.PagesDiscovered,
			job.Progress.PagesInQueue, job.Progress.MaxDepthReached)

		if job.Status.IsTerminal() {
			fmt.Println()
			if job.Status == models.JobStatusFailed {
				return fmt.Errorf("job %s failed: %s", jobID, job.Error)
			}
			return nil
		}
	}
	return nil
}

func runJobStatus(args []string) error {
	fs := flag.NewFlagSet("job-status", flag.ExitOnError)
	cf := registerCommonFlags(fs)
	jobID := fs.String("job-id", "", "Job id (required)")
	fs.Usage = func() {
		fmt.Println(`Usage: docsi job-status -job-id <id> [flags]

Print a crawl job's current status and progress.`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *jobID == "" {
		fs.Usage()
		return fmt.Errorf("-job-id is required")
	}

	a, _, err := cf.buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	job, err := a.JobManager.Get(context.Background(), *jobID)
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}

	fmt.Printf("job_id=%s source_id=%s status=%s\n", job.JobID, job.SourceID, job.Status)
	fmt.Printf("pages_crawled=%d pages_discovered=%d pages_in_queue=%d max_depth_reached=%d\n",
		job.Progress.PagesCrawled, job.Progress.PagesDiscovered, job.Progress.PagesInQueue, job.Progress.MaxDepthReached)
	if job.Error != "" {
		fmt.Printf("error=%s\n", job.Error)
	}
	return nil
}

func runCancelJob(args []string) error {
	fs := flag.NewFlagSet("cancel-job", flag.ExitOnError)
	cf := registerCommonFlags(fs)
	jobID := fs.String("job-id", "", "Job id (required)")
	fs.Usage = func() {
		fmt.Println(`Usage: docsi cancel-job -job-id <id> [flags]

Cancel a running crawl job.`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *jobID == "" {
		fs.Usage()
		return fmt.Errorf("-job-id is required")
	}

	a, _, err := cf.buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ok, err := a.CancelJob(context.Background(), *jobID)
	if err != nil {
		return fmt.Errorf("cancel job: %w", err)
	}
	if !ok {
		fmt.Printf("Job %s was already in a terminal state\n", *jobID)
		return nil
	}

	fmt.Printf("Canceled job %s\n", *jobID)
	return nil
}
