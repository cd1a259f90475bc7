package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/ternarybob/docsi/internal/models"
)

func runGetDoc(args []string) error {
	fs := flag.NewFlagSet("get-doc", flag.ExitOnError)
	cf := registerCommonFlags(fs)
	var (
		sourceName = fs.String("source", "", "Source name (required)")
		docID      = fs.String("id", "", "Document id")
		docURL     = fs.String("url", "", "Document URL (alternative to -id)")
	)
	fs.Usage = func() {
		fmt.Println(`Usage: docsi get-doc -source <name> (-id <id> | -url <url>) [flags]

Print one stored document's content.`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *sourceName == "" || (*docID == "" && *docURL == "") {
		fs.Usage()
		return fmt.Errorf("-source and one of -id/-url are required")
	}

	a, _, err := cf.buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	source, err := a.Sources.FindByName(ctx, *sourceName)
	if err != nil {
		return fmt.Errorf("find source: %w", err)
	}

	var doc *models.StoredDocument
	if *docID != "" {
		doc, err = a.Storage.FindByID(ctx, source.ID, *docID)
	} else {
		doc, err = a.Storage.FindByURL(ctx, source.ID, *docURL)
	}
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	fmt.Printf("id=%s\nurl=%s\ntitle=%s\nheadings=%d code_blocks=%d\n\n%s\n",
		doc.ID, doc.URL, doc.Title, len(doc.Headings), len(doc.CodeBlocks), doc.MainContent)
	return nil
}

func runListPages(args []string) error {
	fs := flag.NewFlagSet("list-pages", flag.ExitOnError)
	cf := registerCommonFlags(fs)
	sourceName := fs.String("source", "", "Source name (required)")
	fs.Usage = func() {
		fmt.Println(`Usage: docsi list-pages -source <name> [flags]

List every page stored for a source.`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *sourceName == "" {
		fs.Usage()
		return fmt.Errorf("-source is required")
	}

	a, _, err := cf.buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	source, err := a.Sources.FindByName(ctx, *sourceName)
	if err != nil {
		return fmt.Errorf("find source: %w", err)
	}

	index, err := a.Storage.ListSource(ctx, source.ID)
	if err != nil {
		return fmt.Errorf("list pages: %w", err)
	}

	if len(index.Pages) == 0 {
		fmt.Println("No pages stored for this source.")
		return nil
	}

	for _, p := range index.Pages {
		fmt.Printf("%s  %-40s  %s\n", p.ID, p.URL, p.Title)
	}
	return nil
}
