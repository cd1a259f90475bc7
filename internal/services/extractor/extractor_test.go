package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docsi/internal/interfaces"
	"github.com/ternarybob/docsi/internal/services/urlprocessor"
)

func newExtractor() *Extractor {
	logger := arbor.NewLogger()
	return New(logger, urlprocessor.New(logger, nil), DefaultChain()...)
}

const sampleHTML = `
<html>
<head><title>Guide Title</title></head>
<body>
<h1>Heading One</h1>
<p>First paragraph with enough text to count.</p>
<p>   </p>
<pre><code class="language-go">fmt.Println("hi")</code></pre>
<a href="/next">Next</a>
<a href="#top">Top</a>
</body>
</html>`

func TestExtract_TitleFromTitleTag(t *testing.T) {
	e := newExtractor()
	page, err := e.Extract(sampleHTML, "https://example.test/guide", interfaces.ExtractOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Guide Title", page.Title)
}

func TestExtract_HeadingsAndParagraphs(t *testing.T) {
	e := newExtractor()
	page, err := e.Extract(sampleHTML, "https://example.test/guide", interfaces.ExtractOptions{})
	require.NoError(t, err)
	require.Len(t, page.Headings, 1)
	assert.Equal(t, "Heading One", page.Headings[0].Text)
	assert.Equal(t, 1, page.Headings[0].Level)
	require.Len(t, page.Paragraphs, 1)
	assert.Equal(t, "First paragraph with enough text to count.", page.Paragraphs[0])
}

func TestExtract_CodeBlockLanguageFromClass(t *testing.T) {
	e := newExtractor()
	page, err := e.Extract(sampleHTML, "https://example.test/guide", interfaces.ExtractOptions{})
	require.NoError(t, err)
	require.Len(t, page.CodeBlocks, 1)
	assert.Equal(t, "go", page.CodeBlocks[0].Language)
}

func TestExtract_OutboundLinksSkipFragmentOnly(t *testing.T) {
	e := newExtractor()
	page, err := e.Extract(sampleHTML, "https://example.test/guide", interfaces.ExtractOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.test/next"}, page.OutboundLinks)
}

func TestExtract_TitleFallsBackToOpenGraph(t *testing.T) {
	e := newExtractor()
	html := `<html><head><meta property="og:title" content="OG Title"/></head><body><p>content here</p></body></html>`
	page, err := e.Extract(html, "https://example.test/x", interfaces.ExtractOptions{})
	require.NoError(t, err)
	assert.Equal(t, "OG Title", page.Title)
}

func TestExtract_TitleFallsBackToH1ThenURL(t *testing.T) {
	e := newExtractor()
	html := `<html><body><h1>Fallback Heading</h1></body></html>`
	page, err := e.Extract(html, "https://example.test/x", interfaces.ExtractOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Fallback Heading", page.Title)

	page, err = e.Extract(`<html><body></body></html>`, "https://example.test/x", interfaces.ExtractOptions{})
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/x", page.Title)
}

func TestExtract_NodeJSSpecializedTagsUntypedCodeBlocks(t *testing.T) {
	e := newExtractor()
	html := `<html><head><title>fs docs</title></head><body><pre><code>const fs = require('fs')</code></pre></body></html>`
	page, err := e.Extract(html, "https://nodejs.org/api/fs.html", interfaces.ExtractOptions{})
	require.NoError(t, err)
	require.Len(t, page.CodeBlocks, 1)
	assert.Equal(t, "javascript", page.CodeBlocks[0].Language)
}

func TestExtract_MainContentSelectorChain(t *testing.T) {
	e := newExtractor()
	html := `<html><head><title>t</title></head><body><div class="content">Primary body text.</div></body></html>`
	page, err := e.Extract(html, "https://example.test/x", interfaces.ExtractOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Primary body text.", page.MainContent)
}

func TestExtract_SanitizationDropsBoilerplateAndCollapsesNewlines(t *testing.T) {
	e := newExtractor()
	html := `<html><head><title>t</title></head><body><p>Skip to content Real content here.</p></body></html>`
	page, err := e.Extract(html, "https://example.test/x", interfaces.ExtractOptions{})
	require.NoError(t, err)
	require.Len(t, page.Paragraphs, 1)
	assert.Equal(t, "Real content here.", page.Paragraphs[0])
}
