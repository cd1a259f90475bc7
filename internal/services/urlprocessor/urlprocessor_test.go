package urlprocessor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docsi/internal/interfaces"
	"github.com/ternarybob/docsi/internal/models"
)

func newProcessor() *Processor {
	return New(arbor.NewLogger(), nil)
}

// fakeRobots is a stub RobotsChecker whose decision is fixed per test.
type fakeRobots struct {
	allowed bool
	gotUA   string
}

func (f *fakeRobots) IsAllowedByRobots(_ context.Context, _ string, userAgent string) bool {
	f.gotUA = userAgent
	return f.allowed
}

func TestNormalize_StripsFragmentAndTrailingSlash(t *testing.T) {
	p := newProcessor()
	got, ok := p.Normalize("/docs/guide/#section", "https://example.test")
	require.True(t, ok)
	assert.Equal(t, "https://example.test/docs/guide", got)
}

func TestNormalize_CollapsesIndexFile(t *testing.T) {
	p := newProcessor()
	got, ok := p.Normalize("https://example.test/docs/index.html", "https://example.test")
	require.True(t, ok)
	assert.Equal(t, "https://example.test/docs/", got+"/")
	assert.Equal(t, "https://example.test/docs", got)
}

func TestNormalize_IsIdempotent(t *testing.T) {
	p := newProcessor()
	base := "https://example.test"
	first, ok := p.Normalize("https://example.test/a/b/index.php", base)
	require.True(t, ok)
	second, ok := p.Normalize(first, base)
	require.True(t, ok)
	assert.Equal(t, first, second)
}

func TestNormalize_UpgradesSchemeWhenBaseIsHTTPS(t *testing.T) {
	p := newProcessor()
	got, ok := p.Normalize("http://example.test/docs", "https://example.test")
	require.True(t, ok)
	assert.Equal(t, "https://example.test/docs", got)
}

func TestClassify_RejectsHostMismatch(t *testing.T) {
	p := newProcessor()
	source := &models.DocumentSource{BaseURL: "https://example.test", Policy: models.CrawlPolicy{MaxDepth: 5}}
	result := p.Classify("https://other.test/page", source, "https://example.test", 1)
	assert.False(t, result.Accepted)
	assert.Equal(t, interfaces.RejectHostMismatch, result.Reason)
}

func TestClassify_RejectsExcludePattern(t *testing.T) {
	p := newProcessor()
	source := &models.DocumentSource{
		BaseURL: "https://example.test",
		Policy:  models.CrawlPolicy{MaxDepth: 5, ExcludePatterns: []string{"/internal/"}},
	}
	result := p.Classify("https://example.test/internal/secret", source, "https://example.test", 1)
	assert.False(t, result.Accepted)
	assert.Equal(t, interfaces.RejectExcluded, result.Reason)
}

func TestClassify_AcceptsWithinDepthAndHost(t *testing.T) {
	p := newProcessor()
	source := &models.DocumentSource{BaseURL: "https://example.test", Policy: models.CrawlPolicy{MaxDepth: 2}}
	result := p.Classify("https://example.test/public/ok", source, "https://example.test", 1)
	assert.True(t, result.Accepted)
}

func TestClassify_RejectsDepthExceededUnderStrict(t *testing.T) {
	p := newProcessor()
	source := &models.DocumentSource{BaseURL: "https://example.test", Policy: models.CrawlPolicy{MaxDepth: 1}}
	result := p.Classify("https://example.test/a/b/c", source, "https://example.test/a/b", 2)
	assert.False(t, result.Accepted)
	assert.Equal(t, interfaces.RejectDepthExceeded, result.Reason)
}

func TestClassify_RejectsRobotsDisallowedWhenSourceOptsIn(t *testing.T) {
	robots := &fakeRobots{allowed: false}
	p := New(arbor.NewLogger(), robots)
	source := &models.DocumentSource{
		BaseURL: "https://example.test",
		Policy:  models.CrawlPolicy{MaxDepth: 5, RespectRobots: true, UserAgent: "DocSI/1.0"},
	}
	result := p.Classify("https://example.test/private", source, "https://example.test", 1)
	assert.False(t, result.Accepted)
	assert.Equal(t, interfaces.RejectRobots, result.Reason)
	assert.Equal(t, "DocSI/1.0", robots.gotUA)
}

func TestClassify_IgnoresRobotsWhenSourceDoesNotOptIn(t *testing.T) {
	robots := &fakeRobots{allowed: false}
	p := New(arbor.NewLogger(), robots)
	source := &models.DocumentSource{BaseURL: "https://example.test", Policy: models.CrawlPolicy{MaxDepth: 5}}
	result := p.Classify("https://example.test/private", source, "https://example.test", 1)
	assert.True(t, result.Accepted)
}

func TestClassify_RobotsOptInWithoutCheckerIsNoOp(t *testing.T) {
	source := &models.DocumentSource{BaseURL: "https://example.test", Policy: models.CrawlPolicy{MaxDepth: 5, RespectRobots: true}}
	result := newProcessor().Classify("https://example.test/public", source, "https://example.test", 1)
	assert.True(t, result.Accepted)
}

func TestDepthFromParent(t *testing.T) {
	p := newProcessor()
	assert.Equal(t, 0, p.DepthFromParent("https://example.test", "", 0, "https://example.test"))
	assert.Equal(t, 2, p.DepthFromParent("https://example.test/a", "https://example.test/p", 1, "https://example.test"))
}

func TestExtractLinks_DedupesAndSkipsNonContentSchemes(t *testing.T) {
	p := newProcessor()
	html := `<html><body>
		<a href="/a">A</a>
		<a href="/a">A again</a>
		<a href="#frag">frag</a>
		<a href="javascript:void(0)">js</a>
		<a href="mailto:a@b.com">mail</a>
		<a href="/b">B</a>
	</body></html>`

	links := p.ExtractLinks(html, "https://example.test")
	require.Len(t, links, 2)
	assert.Equal(t, "https://example.test/a", links[0])
	assert.Equal(t, "https://example.test/b", links[1])
}
