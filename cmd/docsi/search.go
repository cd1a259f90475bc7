package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
)

func runSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	cf := registerCommonFlags(fs)
	fs.Usage = func() {
		fmt.Println(`Usage: docsi search <query> [flags]

Search stored documents across every registered source, grouped by
source, plus any pinned custom links whose name contains the query
(case-insensitive).`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	query := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(query) == "" {
		fs.Usage()
		return fmt.Errorf("a search query is required")
	}

	a, _, err := cf.buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.SearchIndex.Search(context.Background(), query)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if len(resp.GroupedResults) == 0 && len(resp.CustomLinkMatches) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	for _, group := range resp.GroupedResults {
		fmt.Printf("\n== %s ==\n", group.SourceName)
		for _, r := range group.Results {
			fmt.Printf("  [%.2f] %s\n        %s\n", r.Score, r.Document.Title, r.Document.URL)
			if r.Snippet != "" {
				fmt.Printf("        %s\n", r.Snippet)
			}
		}
	}

	if len(resp.CustomLinkMatches) > 0 {
		fmt.Printf("\n== Custom links ==\n")
		for _, l := range resp.CustomLinkMatches {
			fmt.Printf("  %s -> %s\n", l.Name, l.URL)
		}
	}
	return nil
}
