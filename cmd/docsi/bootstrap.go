package main

import (
	"flag"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docsi/internal/app"
	"github.com/ternarybob/docsi/internal/common"
)

// configPaths is a custom flag type accepting multiple -config flags,
// matching cmd/quaero/main.go's layered config-file convention.
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

// commonFlags are the configuration-affecting flags every subcommand
// accepts, registered on that subcommand's own FlagSet so each stays a
// self-contained usage block (§C.4's "thin host-layer adapter" over §6).
type commonFlags struct {
	configFiles configPaths
	baseDir     string
	maxDepth    int
	maxPages    int
}

func registerCommonFlags(fs *flag.FlagSet) *commonFlags {
	cf := &commonFlags{}
	fs.Var(&cf.configFiles, "config", "Configuration file path (repeatable, later files override earlier ones)")
	fs.Var(&cf.configFiles, "c", "Configuration file path (shorthand)")
	fs.StringVar(&cf.baseDir, "base-dir", "", "Base data directory (overrides config)")
	fs.IntVar(&cf.maxDepth, "max-depth", 0, "Global max crawl depth (overrides config)")
	fs.IntVar(&cf.maxPages, "max-pages", 0, "Global max crawl pages (overrides config)")
	return cf
}

// buildApp runs the startup sequence cmd/quaero/main.go requires in this
// order: load config (defaults -> files -> env), apply CLI overrides,
// initialize the logger, then wire the application.
func (cf *commonFlags) buildApp() (*app.App, arbor.ILogger, error) {
	cfg, err := common.LoadFromFiles(cf.configFiles...)
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}

	common.ApplyFlagOverrides(cfg, cf.baseDir, cf.maxDepth, cf.maxPages)

	logger := common.SetupLogger(cfg)

	a, err := app.New(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize application: %w", err)
	}
	return a, logger, nil
}
