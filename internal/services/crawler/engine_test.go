package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docsi/internal/models"
	"github.com/ternarybob/docsi/internal/services/extractor"
	"github.com/ternarybob/docsi/internal/services/sitemap"
	"github.com/ternarybob/docsi/internal/services/urlprocessor"
	"github.com/ternarybob/docsi/internal/storage/docstore"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Home</title></head><body>
			<p>Welcome to the documentation home page with enough text content.</p>
			<a href="/guide">Guide</a>
		</body></html>`))
	})
	mux.HandleFunc("/guide", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Guide</title></head><body>
			<p>This guide explains how the documentation crawler processes pages.</p>
		</body></html>`))
	})
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	return httptest.NewServer(mux)
}

func newTestEngine(t *testing.T, dataDir string) *Engine {
	t.Helper()
	logger := arbor.NewLogger()
	sm := sitemap.New(logger, http.DefaultClient)
	urls := urlprocessor.New(logger, sm)
	ext := extractor.New(logger, urls, extractor.DefaultChain()...)
	store := docstore.New(logger, dataDir)
	return New(logger, urls, ext, sm, store, nil)
}

func TestRun_CrawlsLinkedPagesAndStoresThem(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	dataDir := t.TempDir()
	engine := newTestEngine(t, dataDir)

	source := &models.DocumentSource{
		ID:      "src1",
		Name:    "Test Docs",
		BaseURL: server.URL,
		Policy: models.CrawlPolicy{
			MaxDepth: 3,
			MaxPages: 10,
		},
	}
	job := &models.Job{
		JobID:    "job1",
		SourceID: "src1",
		Config: models.CrawlConfig{
			MaxDepth:    3,
			MaxPages:    10,
			Concurrency: 2,
			MaxRetries:  2,
		},
	}

	err := engine.Run(context.Background(), source, job)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, job.Progress.PagesCrawled, 2)

	index, err := engine.storage.ListSource(context.Background(), "src1")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(index.Pages), 2)
}

func TestRun_RespectsMaxPages(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	dataDir := t.TempDir()
	engine := newTestEngine(t, dataDir)

	source := &models.DocumentSource{
		ID:      "src1",
		Name:    "Test Docs",
		BaseURL: server.URL,
		Policy:  models.CrawlPolicy{MaxDepth: 3, MaxPages: 1},
	}
	job := &models.Job{
		JobID:    "job1",
		SourceID: "src1",
		Config:   models.CrawlConfig{MaxDepth: 3, MaxPages: 1, Concurrency: 1},
	}

	err := engine.Run(context.Background(), source, job)
	require.NoError(t, err)
	assert.LessOrEqual(t, job.Progress.PagesCrawled, 1)
}

func TestCancelJob_StopsDispatchBeforeCompletion(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	dataDir := t.TempDir()
	engine := newTestEngine(t, dataDir)

	source := &models.DocumentSource{
		ID:      "src1",
		Name:    "Test Docs",
		BaseURL: server.URL,
		Policy:  models.CrawlPolicy{MaxDepth: 3, MaxPages: 10},
	}
	job := &models.Job{
		JobID:    "job-cancel",
		SourceID: "src1",
		Config:   models.CrawlConfig{MaxDepth: 3, MaxPages: 10, Concurrency: 1},
	}

	engine.CancelJob(job.JobID)
	err := engine.Run(context.Background(), source, job)
	assert.Error(t, err)
}
