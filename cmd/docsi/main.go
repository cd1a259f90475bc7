// DocSI CLI: a thin host-layer adapter over the library surface in
// internal/app, exposing add-source, remove-source, list-sources, crawl,
// job-status, cancel-job, search, get-doc, and list-pages as subcommands.
//
// Grounded on cmd/quaero/main.go's flag-parsing/startup-order convention
// (flags -> config -> logger -> banner) for global concerns, and on the
// retrieval pack's agentberlin-bluesnake cmd/cli/main.go for the
// os.Args[1]-dispatch, per-subcommand flag.NewFlagSet shape (the teacher's
// own collect.go/query.go/serve.go import a cobra that is absent from its
// go.mod and were not carried forward).
package main

import (
	"fmt"
	"os"

	"github.com/ternarybob/docsi/internal/common"
	"github.com/ternarybob/docsi/internal/errs"
)

func main() {
	common.InstallCrashHandler("./logs")
	defer common.RecoverWithCrashFile()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "add-source":
		err = runAddSource(args)
	case "remove-source":
		err = runRemoveSource(args)
	case "list-sources":
		err = runListSources(args)
	case "crawl":
		err = runCrawl(args)
	case "job-status":
		err = runJobStatus(args)
	case "cancel-job":
		err = runCancelJob(args)
	case "search":
		err = runSearch(args)
	case "get-doc":
		err = runGetDoc(args)
	case "list-pages":
		err = runListPages(args)
	case "version", "-v", "--version":
		fmt.Printf("DocSI version %s\n", common.GetVersion())
		return
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(errs.ExitCode(err))
	}
}

func printUsage() {
	fmt.Println(`DocSI - Documentation crawler and indexer

Usage:
  docsi <command> [flags]

Commands:
  add-source      Register a new documentation source
  remove-source   Remove a source and its stored documents
  list-sources    List registered sources
  crawl           Start a crawl job for a source
  job-status      Show a crawl job's status
  cancel-job      Cancel a running crawl job
  search          Search stored documents across sources
  get-doc         Print one stored document
  list-pages      List a source's stored pages
  version         Print version information
  help            Show this help message

Use "docsi <command> -h" for more information about a command.`)
}
