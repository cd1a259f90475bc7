package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ternarybob/docsi/internal/models"
)

// SpecializedExtractor generalizes the teacher's per-content-type handling
// in content_processor.go into an ordered canHandle/process chain: each
// implementation owns a narrow set of site conventions and mutates the
// page the generic pass already built, rather than replacing it.
type SpecializedExtractor interface {
	// Name identifies the extractor for logging.
	Name() string
	// CanHandle reports whether this extractor recognizes url or html as
	// belonging to its site family.
	CanHandle(url, html string) bool
	// Process refines page in place using doc, the already-parsed document.
	Process(page *models.ProcessedPage, doc *goquery.Document)
}

// DefaultChain returns the specialized extractors in their dispatch order:
// the first whose CanHandle matches wins, so more specific site families
// must precede broader ones.
func DefaultChain() []SpecializedExtractor {
	return []SpecializedExtractor{
		MDNExtractor{},
		NodeJSExtractor{},
		ReactExtractor{},
		TypeScriptExtractor{},
		GenericExtractor{},
	}
}

// GenericExtractor matches everything; it exists only so DefaultChain
// always terminates in an explicit handler rather than relying on the
// empty-chain fallthrough in Extract.
type GenericExtractor struct{}

func (GenericExtractor) Name() string                 { return "generic" }
func (GenericExtractor) CanHandle(_, _ string) bool    { return true }
func (GenericExtractor) Process(*models.ProcessedPage, *goquery.Document) {}

// MDNExtractor recognizes developer.mozilla.org pages and prefers the
// dedicated article body over the generic main-content selector chain.
type MDNExtractor struct{}

func (MDNExtractor) Name() string { return "mdn" }

func (MDNExtractor) CanHandle(url, _ string) bool {
	return strings.Contains(url, "developer.mozilla.org")
}

func (MDNExtractor) Process(page *models.ProcessedPage, doc *goquery.Document) {
	if body := doc.Find("article.main-page-content"); body.Length() > 0 {
		if text := sanitizeText(body.Text()); text != "" {
			page.MainContent = text
		}
	}
}

// NodeJSExtractor recognizes nodejs.org API docs, where method signatures
// live in <pre> blocks tagged as javascript without an explicit language
// class.
type NodeJSExtractor struct{}

func (NodeJSExtractor) Name() string { return "nodejs" }

func (NodeJSExtractor) CanHandle(url, _ string) bool {
	return strings.Contains(url, "nodejs.org")
}

func (NodeJSExtractor) Process(page *models.ProcessedPage, _ *goquery.Document) {
	for i := range page.CodeBlocks {
		if page.CodeBlocks[i].Language == "" {
			page.CodeBlocks[i].Language = "javascript"
		}
	}
}

// ReactExtractor recognizes react.dev pages, where the primary content
// lives in a <main> wrapped by an additional .content-wrapper the generic
// selector chain also matches; it otherwise defers entirely to the generic
// pass.
type ReactExtractor struct{}

func (ReactExtractor) Name() string { return "react" }

func (ReactExtractor) CanHandle(url, _ string) bool {
	return strings.Contains(url, "react.dev")
}

func (ReactExtractor) Process(page *models.ProcessedPage, doc *goquery.Document) {
	if page.MainContent != "" {
		return
	}
	if body := doc.Find("main"); body.Length() > 0 {
		page.MainContent = sanitizeText(body.Text())
	}
}

// TypeScriptExtractor recognizes typescriptlang.org pages, tagging
// untyped code blocks as typescript rather than leaving Language empty.
type TypeScriptExtractor struct{}

func (TypeScriptExtractor) Name() string { return "typescript" }

func (TypeScriptExtractor) CanHandle(url, _ string) bool {
	return strings.Contains(url, "typescriptlang.org")
}

func (TypeScriptExtractor) Process(page *models.ProcessedPage, _ *goquery.Document) {
	for i := range page.CodeBlocks {
		if page.CodeBlocks[i].Language == "" {
			page.CodeBlocks[i].Language = "typescript"
		}
	}
}
