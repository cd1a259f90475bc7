package sitemap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docsi/internal/interfaces"
)

func newProcessor(client *http.Client) *Processor {
	return New(arbor.NewLogger(), client)
}

func TestDiscover_UsesRobotsSitemapDirective(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.Write([]byte("User-agent: *\nDisallow:\nSitemap: " + "http://" + r.Host + "/custom-sitemap.xml\n"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	p := newProcessor(server.Client())
	found, err := p.Discover(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Contains(t, found[0], "/custom-sitemap.xml")
}

func TestDiscover_FallsBackToWellKnownPaths(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			w.WriteHeader(http.StatusNotFound)
		case "/sitemap.xml":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	p := newProcessor(server.Client())
	found, err := p.Discover(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Contains(t, found[0], "/sitemap.xml")
}

func TestIsAllowedByRobots_DisallowsMatchingPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.Write([]byte("User-agent: *\nDisallow: /private\n"))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	p := newProcessor(server.Client())
	assert.False(t, p.IsAllowedByRobots(context.Background(), server.URL+"/private/page", "DocSI"))
	assert.True(t, p.IsAllowedByRobots(context.Background(), server.URL+"/public/page", "DocSI"))
}

func TestIsAllowedByRobots_CachesPerHost(t *testing.T) {
	fetches := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fetches++
			w.Write([]byte("User-agent: *\nDisallow: /private\n"))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	p := newProcessor(server.Client())
	for i := 0; i < 3; i++ {
		p.IsAllowedByRobots(context.Background(), server.URL+"/private/page", "DocSI")
	}
	assert.Equal(t, 1, fetches)
}

func TestParse_RegularSitemap(t *testing.T) {
	const body = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.test/docs/guide</loc><lastmod>2024-01-01</lastmod><priority>0.8</priority></url>
  <url><loc>https://example.test/about</loc></url>
</urlset>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	p := newProcessor(server.Client())
	entries, err := p.Parse(context.Background(), server.URL+"/sitemap.xml")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "https://example.test/docs/guide", entries[0].Loc)
	assert.True(t, entries[0].HasPriority)
	assert.Equal(t, 0.8, entries[0].Priority)
	assert.False(t, entries[1].HasPriority)
}

func TestParse_SitemapIndexRecursesIntoChildren(t *testing.T) {
	const childBody = `<?xml version="1.0"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.test/docs/a</loc></url>
</urlset>`

	var indexBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/index.xml":
			w.Write([]byte(indexBody))
		case "/child.xml":
			w.Write([]byte(childBody))
		}
	}))
	defer server.Close()

	indexBody = `<?xml version="1.0"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>` + server.URL + `/child.xml</loc></sitemap>
</sitemapindex>`

	p := newProcessor(server.Client())
	entries, err := p.Parse(context.Background(), server.URL+"/index.xml")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "https://example.test/docs/a", entries[0].Loc)
}

func TestScore_RootPathScoresLowest(t *testing.T) {
	p := newProcessor(http.DefaultClient)
	root := p.Score(interfaces.SitemapEntry{Loc: "https://example.test/"}, "https://example.test", interfaces.ScoreOptions{})
	nested := p.Score(interfaces.SitemapEntry{Loc: "https://example.test/a/b/c"}, "https://example.test", interfaces.ScoreOptions{})
	assert.Less(t, root, nested)
}

func TestScore_PriorityKeywordLowersScore(t *testing.T) {
	p := newProcessor(http.DefaultClient)
	withKeyword := p.Score(interfaces.SitemapEntry{Loc: "https://example.test/docs/x"}, "https://example.test", interfaces.ScoreOptions{})
	without := p.Score(interfaces.SitemapEntry{Loc: "https://example.test/misc/x"}, "https://example.test", interfaces.ScoreOptions{})
	assert.Less(t, withKeyword, without)
}

func TestScore_NeverNegative(t *testing.T) {
	p := newProcessor(http.DefaultClient)
	score := p.Score(interfaces.SitemapEntry{
		Loc:         "https://example.test/docs/",
		HasPriority: true,
		Priority:    1.0,
		LastMod:     time.Now().Format(time.RFC3339),
	}, "https://example.test", interfaces.ScoreOptions{})
	assert.GreaterOrEqual(t, score, 0)
}

func TestFilter_IncludeAndExclude(t *testing.T) {
	p := newProcessor(http.DefaultClient)
	entries := []interfaces.SitemapEntry{
		{Loc: "https://example.test/docs/a"},
		{Loc: "https://example.test/blog/a"},
		{Loc: "https://example.test/docs/internal/a"},
	}
	filtered := p.Filter(entries, []string{"/docs/"}, []string{"/internal/"})
	require.Len(t, filtered, 1)
	assert.Equal(t, "https://example.test/docs/a", filtered[0].Loc)
}
