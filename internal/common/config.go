package common

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// DefaultUserAgent advertises the tool and a contact URL, per §6, and is
// the single source of truth both NewDefaultConfig and any source whose
// Policy.UserAgent was never set fall back to.
const DefaultUserAgent = "DocSI/1.0 (+https://github.com/ternarybob/docsi)"

// Config is the injected configuration value threaded explicitly into every
// component (§9's redesign note: no ambient config singleton). It is built
// by layered merge: defaults -> sequential TOML files -> environment ->
// command-line flags, each layer overriding the last.
type Config struct {
	BaseDir            string        `toml:"base_dir"`
	DataDir            string        `toml:"data_dir"`
	CacheDir           string        `toml:"cache_dir"`
	TempDir            string        `toml:"temp_dir"`
	RateLimitDelayMs   int           `toml:"rate_limit_delay_ms"`
	TimeoutMs          int           `toml:"timeout_ms"`
	MaxCrawlDepth      int           `toml:"max_crawl_depth"`
	MaxCrawlPages      int           `toml:"max_crawl_pages"`
	AllowedDirectories []string      `toml:"allowed_directories"`
	Crawler            CrawlerConfig `toml:"crawler"`
	Search             SearchConfig  `toml:"search"`
	Logging            LoggingConfig `toml:"logging"`
}

// CrawlerConfig carries the crawl defaults a source's own policy overrides.
type CrawlerConfig struct {
	UserAgent   string `toml:"user_agent"`
	Concurrency int    `toml:"concurrency"`
	MaxRetries  int    `toml:"max_retries"`
}

// SearchConfig carries the Search Index's tunables.
type SearchConfig struct {
	MatchThreshold float64 `toml:"match_threshold"`
	SnippetLength  int     `toml:"snippet_length"`
}

// LoggingConfig mirrors the teacher's logging shape, trimmed to the writers
// DocSI actually configures.
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Output     []string `toml:"output"`
	TimeFormat string   `toml:"time_format"`
}

// NewDefaultConfig returns the baseline configuration before any file,
// environment, or flag overrides are applied.
func NewDefaultConfig() *Config {
	return &Config{
		BaseDir:          "./docsi-data",
		DataDir:          "",
		CacheDir:         "",
		TempDir:          "",
		RateLimitDelayMs: 0,
		TimeoutMs:        10_000,
		MaxCrawlDepth:    5,
		MaxCrawlPages:    500,
		Crawler: CrawlerConfig{
			UserAgent:   DefaultUserAgent,
			Concurrency: 2,
			MaxRetries:  3,
		},
		Search: SearchConfig{
			MatchThreshold: 0.4,
			SnippetLength:  250,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05.000",
		},
	}
}

// resolveDirs fills DataDir/CacheDir/TempDir from BaseDir wherever the
// caller left them unset, after every override layer has been applied.
func (c *Config) resolveDirs() {
	if c.DataDir == "" {
		c.DataDir = c.BaseDir + "/data"
	}
	if c.CacheDir == "" {
		c.CacheDir = c.BaseDir + "/cache"
	}
	if c.TempDir == "" {
		c.TempDir = c.BaseDir + "/tmp"
	}
}

// LoadFromFiles loads default -> file1 -> file2 -> ... -> env, in that
// order; later files override earlier ones. Each path is unmarshaled
// directly on top of the accumulated config so omitted fields keep their
// prior value (go-toml/v2's Unmarshal only touches keys present in the
// document).
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)
	config.resolveDirs()

	return config, nil
}

// applyEnvOverrides applies DOCSI_* environment variables, the highest
// priority layer below explicit CLI flags.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("DOCSI_BASE_DIR"); v != "" {
		config.BaseDir = v
	}
	if v := os.Getenv("DOCSI_DATA_DIR"); v != "" {
		config.DataDir = v
	}
	if v := os.Getenv("DOCSI_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("DOCSI_MAX_CRAWL_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.MaxCrawlDepth = n
		}
	}
	if v := os.Getenv("DOCSI_MAX_CRAWL_PAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.MaxCrawlPages = n
		}
	}
}

// ApplyFlagOverrides applies command-line flag values, the highest-priority
// layer; zero values are treated as "not set" and left alone.
func ApplyFlagOverrides(config *Config, baseDir string, maxDepth, maxPages int) {
	if baseDir != "" && baseDir != config.BaseDir {
		// Directories that were only derived from the previous base are
		// cleared so resolveDirs re-derives them under the new one.
		if config.DataDir == config.BaseDir+"/data" {
			config.DataDir = ""
		}
		if config.CacheDir == config.BaseDir+"/cache" {
			config.CacheDir = ""
		}
		if config.TempDir == config.BaseDir+"/tmp" {
			config.TempDir = ""
		}
		config.BaseDir = baseDir
	}
	if maxDepth > 0 {
		config.MaxCrawlDepth = maxDepth
	}
	if maxPages > 0 {
		config.MaxCrawlPages = maxPages
	}
	config.resolveDirs()
}

// IsPathAllowed reports whether path resolves under one of
// AllowedDirectories, or is unconditionally allowed when the set is empty
// (the common single-tenant case). The Storage Manager does not call it;
// docstore confines its paths by validating identifiers instead.
func (c *Config) IsPathAllowed(path string) bool {
	if len(c.AllowedDirectories) == 0 {
		return true
	}
	for _, dir := range c.AllowedDirectories {
		if len(path) >= len(dir) && path[:len(dir)] == dir {
			return true
		}
	}
	return false
}
