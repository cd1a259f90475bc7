package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/ternarybob/docsi/internal/models"
)

func runAddSource(args []string) error {
	fs := flag.NewFlagSet("add-source", flag.ExitOnError)
	cf := registerCommonFlags(fs)

	var (
		name            = fs.String("name", "", "Source name (required)")
		url             = fs.String("url", "", "Base URL to crawl (required)")
		tags            = fs.String("tags", "", "Comma-separated tags")
		maxDepth        = fs.Int("source-max-depth", 5, "Source crawl policy: max depth")
		maxPages        = fs.Int("source-max-pages", 500, "Source crawl policy: max pages")
		crawlDelayMs    = fs.Int("crawl-delay-ms", 0, "Source crawl policy: politeness delay between requests")
		respectRobots   = fs.Bool("respect-robots", true, "Source crawl policy: honor robots.txt")
		includePatterns = fs.String("include", "", "Comma-separated include regex patterns")
		excludePatterns = fs.String("exclude", "", "Comma-separated exclude regex patterns")
	)
	fs.Usage = func() {
		fmt.Println(`Usage: docsi add-source -name <name> -url <url> [flags]

Register a new documentation source.`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *url == "" {
		fs.Usage()
		return fmt.Errorf("-name and -url are required")
	}

	a, _, err := cf.buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	source := &models.DocumentSource{
		Name:    *name,
		BaseURL: *url,
		Tags:    splitNonEmpty(*tags),
		Policy: models.CrawlPolicy{
			MaxDepth:        *maxDepth,
			MaxPages:        *maxPages,
			CrawlDelayMs:    *crawlDelayMs,
			RespectRobots:   *respectRobots,
			UserAgent:       a.Config.Crawler.UserAgent,
			IncludePatterns: splitNonEmpty(*includePatterns),
			ExcludePatterns: splitNonEmpty(*excludePatterns),
		},
	}

	if err := a.Sources.Add(context.Background(), source); err != nil {
		return fmt.Errorf("add source: %w", err)
	}

	fmt.Printf("Added source %q (id=%s, base_url=%s)\n", source.Name, source.ID, source.BaseURL)
	return nil
}

func runRemoveSource(args []string) error {
	fs := flag.NewFlagSet("remove-source", flag.ExitOnError)
	cf := registerCommonFlags(fs)
	name := fs.String("name", "", "Source name (required)")
	fs.Usage = func() {
		fmt.Println(`Usage: docsi remove-source -name <name> [flags]

Remove a source and delete every document stored for it.`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		fs.Usage()
		return fmt.Errorf("-name is required")
	}

	a, _, err := cf.buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	removed, err := a.Sources.Remove(context.Background(), *name)
	if err != nil {
		return fmt.Errorf("remove source: %w", err)
	}

	fmt.Printf("Removed source %q (id=%s)\n", removed.Name, removed.ID)
	return nil
}

func runListSources(args []string) error {
	fs := flag.NewFlagSet("list-sources", flag.ExitOnError)
	cf := registerCommonFlags(fs)
	fs.Usage = func() {
		fmt.Println(`Usage: docsi list-sources [flags]

List every registered source.`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, _, err := cf.buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sources, err := a.Sources.List(context.Background())
	if err != nil {
		return fmt.Errorf("list sources: %w", err)
	}

	if len(sources) == 0 {
		fmt.Println("No sources registered.")
		return nil
	}

	for _, s := range sources {
		fmt.Printf("%-10s  %-24s  %-40s  pages=%-5d  max_depth=%d  max_pages=%d\n",
			s.ID, s.Name, s.BaseURL, s.PageCount, s.Policy.MaxDepth, s.Policy.MaxPages)
	}
	return nil
}

// splitNonEmpty splits a comma-separated flag value, dropping empty
// segments so an unset flag yields a nil slice rather than [""].
func splitNonEmpty(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
