// Package extractor implements the Content Extractor (C2): turning raw
// HTML into a canonical ProcessedPage. The goquery-based document walk and
// title-fallback chain are grounded on the teacher's content_processor.go;
// the specialized-extractor dispatch generalizes its per-source-type
// switch into an ordered chain of canHandle/process implementations
// (§9's duck-typed processor note).
package extractor

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docsi/internal/interfaces"
	"github.com/ternarybob/docsi/internal/models"
)

// mainContentSelectors is consulted in order; the first match wins.
var mainContentSelectors = []string{"main", "article", ".content", ".documentation", "#content", "#main"}

// boilerplatePhrases are dropped wholesale from paragraph text during
// sanitization.
var boilerplatePhrases = []string{
	"Skip to content",
	"Skip to main content",
	"Table of contents",
	"Was this page helpful?",
	"Edit this page on GitHub",
}

var newlineRunRe = regexp.MustCompile(`\n{3,}`)
var whitespaceRunRe = regexp.MustCompile(`[ \t]+`)

// Extractor implements interfaces.ContentExtractor.
type Extractor struct {
	logger     arbor.ILogger
	urls       interfaces.URLProcessor
	processors []SpecializedExtractor
}

// New creates a Content Extractor. Callers normally pass DefaultChain(),
// whose final entry (GenericExtractor) always matches, guaranteeing the
// dispatch loop in Extract terminates in an explicit no-op rather than an
// empty chain.
func New(logger arbor.ILogger, urls interfaces.URLProcessor, processors ...SpecializedExtractor) *Extractor {
	return &Extractor{logger: logger, urls: urls, processors: processors}
}

// Extract parses html into a ProcessedPage: title via fallback chain,
// headings in document order, non-empty trimmed paragraphs, code blocks
// with language derived from a language-* class, outbound links via the
// URL Processor, and an optional main-content snippet. A matching
// specialized extractor runs after the generic pass to apply its
// overrides.
func (e *Extractor) Extract(html, url string, opts interfaces.ExtractOptions) (*models.ProcessedPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("extractor: parse html: %w", err)
	}

	page := &models.ProcessedPage{
		URL:           url,
		Title:         extractTitle(doc, url),
		Headings:      extractHeadings(doc),
		Paragraphs:    extractParagraphs(doc),
		CodeBlocks:    extractCodeBlocks(doc),
		OutboundLinks: e.urls.ExtractLinks(html, url),
		MainContent:   extractMainContent(doc),
		IndexedAt:     time.Now(),
	}

	if opts.RetainFullHTML {
		page.FullHTML = html
	}

	for _, proc := range e.processors {
		if proc.CanHandle(url, html) {
			proc.Process(page, doc)
			break
		}
	}

	if opts.RenderMarkdown {
		page.Markdown = renderMarkdown(html)
	}

	return page, nil
}

// extractTitle follows the title -> Open Graph -> first <h1> -> Twitter
// Card -> URL fallback chain; spec.md's authoritative chain is title then
// h1 then URL, the Open Graph/Twitter steps are inserted between without
// changing that outcome when neither is present.
func extractTitle(doc *goquery.Document, url string) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if og, exists := doc.Find(`meta[property='og:title']`).Attr("content"); exists {
		if og = strings.TrimSpace(og); og != "" {
			return og
		}
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	if tw, exists := doc.Find(`meta[name='twitter:title']`).Attr("content"); exists {
		if tw = strings.TrimSpace(tw); tw != "" {
			return tw
		}
	}
	return url
}

func extractHeadings(doc *goquery.Document) []models.Heading {
	var headings []models.Heading
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		text := sanitizeText(s.Text())
		if text == "" {
			return
		}
		level := int(s.Get(0).Data[1] - '0')
		anchorID, _ := s.Attr("id")
		headings = append(headings, models.Heading{Text: text, Level: level, AnchorID: anchorID})
	})
	return headings
}

func extractParagraphs(doc *goquery.Document) []string {
	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := sanitizeText(s.Text())
		if text == "" {
			return
		}
		paragraphs = append(paragraphs, text)
	})
	return paragraphs
}

var languageClassRe = regexp.MustCompile(`language-(\S+)`)

func extractCodeBlocks(doc *goquery.Document) []models.CodeBlock {
	var blocks []models.CodeBlock
	doc.Find("pre code").Each(func(_ int, s *goquery.Selection) {
		code := s.Text()
		if strings.TrimSpace(code) == "" {
			return
		}
		language := ""
		if class, exists := s.Attr("class"); exists {
			if m := languageClassRe.FindStringSubmatch(class); m != nil {
				language = m[1]
			}
		}
		if language == "" {
			if class, exists := s.Parent().Attr("class"); exists {
				if m := languageClassRe.FindStringSubmatch(class); m != nil {
					language = m[1]
				}
			}
		}
		blocks = append(blocks, models.CodeBlock{Code: code, Language: language})
	})
	return blocks
}

func extractMainContent(doc *goquery.Document) string {
	for _, selector := range mainContentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		text := sanitizeText(sel.Text())
		if text != "" {
			return text
		}
	}
	return ""
}

// sanitizeText collapses whitespace runs, drops boilerplate phrases, and
// collapses 3+ consecutive newlines to 2, per §4.2's sanitization rules.
func sanitizeText(raw string) string {
	text := strings.TrimSpace(raw)
	for _, phrase := range boilerplatePhrases {
		text = strings.ReplaceAll(text, phrase, "")
	}
	text = whitespaceRunRe.ReplaceAllString(text, " ")
	text = newlineRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// renderMarkdown renders full HTML to Markdown via html-to-markdown,
// DocSI's optional enrichment (SPEC_FULL §C.1) of the stored page. Parse
// failures degrade to an empty string rather than aborting extraction.
func renderMarkdown(html string) string {
	converted, err := md.NewConverter("", true, nil).ConvertString(html)
	if err != nil {
		return ""
	}
	return converted
}
