package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docsi/internal/common"
	"github.com/ternarybob/docsi/internal/models"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.BaseDir = t.TempDir()
	cfg.DataDir = cfg.BaseDir + "/data"

	a, err := New(cfg, arbor.NewLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

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

func waitForTerminal(t *testing.T, a *App, jobID string) *models.Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := a.JobManager.Get(context.Background(), jobID)
		require.NoError(t, err)
		if job.Status.IsTerminal() {
			return job
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("job %s did not reach a terminal state in time", jobID)
	return nil
}

func TestApp_AddSourceStartCrawlAndSearch(t *testing.T) {
	a := newTestApp(t)
	server := newTestServer(t)
	defer server.Close()
	ctx := context.Background()

	source := &models.DocumentSource{Name: "docs", BaseURL: server.URL, Policy: models.CrawlPolicy{MaxDepth: 5, MaxPages: 100}}
	require.NoError(t, a.Sources.Add(ctx, source))

	job, err := a.StartCrawl(ctx, source.ID, models.CrawlConfig{MaxPages: 10, Concurrency: 2, MaxRetries: 2})
	require.NoError(t, err)

	final := waitForTerminal(t, a, job.JobID)
	assert.Equal(t, models.JobStatusCompleted, final.Status)
	assert.GreaterOrEqual(t, final.Progress.PagesCrawled, 2)

	// The completed-job index rebuild runs on an asynchronously published
	// event, so poll for it rather than assuming it has landed already.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := a.SearchIndex.Search(ctx, "documentation")
		require.NoError(t, err)
		if len(resp.GroupedResults) > 0 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("search index was not rebuilt after job completion in time")
}

func TestApp_StartCrawl_RejectsUnknownSource(t *testing.T) {
	a := newTestApp(t)
	_, err := a.StartCrawl(context.Background(), "missing", models.CrawlConfig{})
	assert.Error(t, err)
}

func TestApp_StartCrawl_RejectsSecondConcurrentJobForSameSource(t *testing.T) {
	a := newTestApp(t)
	server := newTestServer(t)
	defer server.Close()
	ctx := context.Background()

	source := &models.DocumentSource{Name: "docs", BaseURL: server.URL, Policy: models.CrawlPolicy{MaxDepth: 5, MaxPages: 100}}
	require.NoError(t, a.Sources.Add(ctx, source))

	_, err := a.StartCrawl(ctx, source.ID, models.CrawlConfig{MaxPages: 10})
	require.NoError(t, err)

	_, err = a.StartCrawl(ctx, source.ID, models.CrawlConfig{MaxPages: 10})
	assert.Error(t, err)
}

func TestApp_CancelJob_TransitionsToCanceled(t *testing.T) {
	a := newTestApp(t)
	server := newTestServer(t)
	defer server.Close()
	ctx := context.Background()

	source := &models.DocumentSource{Name: "docs", BaseURL: server.URL, Policy: models.CrawlPolicy{MaxDepth: 5, MaxPages: 100}}
	require.NoError(t, a.Sources.Add(ctx, source))

	job, err := a.StartCrawl(ctx, source.ID, models.CrawlConfig{MaxPages: 1000, Concurrency: 1})
	require.NoError(t, err)

	ok, err := a.CancelJob(ctx, job.JobID)
	require.NoError(t, err)
	assert.True(t, ok)

	final := waitForTerminal(t, a, job.JobID)
	assert.Equal(t, models.JobStatusCanceled, final.Status)
}
