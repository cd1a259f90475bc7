package models

import "time"

// Heading is one heading element in document order, carrying its level
// (1..6) and an optional anchor id for deep-linking.
type Heading struct {
	Text     string `json:"text"`
	Level    int    `json:"level"`
	AnchorID string `json:"anchor_id,omitempty"`
}

// CodeBlock is a fenced or <pre><code> block extracted from a page, with
// its language derived from a `language-*` class suffix when present.
type CodeBlock struct {
	Code     string `json:"code"`
	Language string `json:"language,omitempty"`
}

// ProcessedPage is the normalized output of the Content Extractor: a
// canonical representation of one fetched page, independent of the site it
// came from. A page whose text content falls under the minimum threshold
// (10 characters) must never be persisted.
type ProcessedPage struct {
	URL           string      `json:"url"`
	Title         string      `json:"title"`
	Headings      []Heading   `json:"headings"`
	Paragraphs    []string    `json:"paragraphs"`
	CodeBlocks    []CodeBlock `json:"code_blocks"`
	OutboundLinks []string    `json:"outbound_links"`
	MainContent   string      `json:"main_content,omitempty"`
	FullHTML      string      `json:"full_html,omitempty"`
	Markdown      string      `json:"markdown,omitempty"`
	IndexedAt     time.Time   `json:"indexed_at"`
}

// TextContent concatenates paragraph and heading text, the measure used to
// decide whether a page carries enough content to be worth persisting.
func (p *ProcessedPage) TextContent() string {
	var total int
	for _, h := range p.Headings {
		total += len(h.Text)
	}
	for _, para := range p.Paragraphs {
		total += len(para)
	}
	buf := make([]byte, 0, total)
	for _, h := range p.Headings {
		buf = append(buf, h.Text...)
	}
	for _, para := range p.Paragraphs {
		buf = append(buf, para...)
	}
	return string(buf)
}

// StoredDocument is the persisted form of a ProcessedPage: everything the
// extractor produced, plus the identity and bookkeeping fields the Storage
// Manager adds. id is a deterministic, total hash of the canonical URL;
// (sourceId, id) uniquely locates the document on disk.
type StoredDocument struct {
	ID            string      `json:"id"`
	SourceID      string      `json:"source_id"`
	URL           string      `json:"url"`
	Title         string      `json:"title"`
	Headings      []Heading   `json:"headings"`
	Paragraphs    []string    `json:"paragraphs"`
	CodeBlocks    []CodeBlock `json:"code_blocks"`
	OutboundLinks []string    `json:"outbound_links"`
	MainContent   string      `json:"main_content,omitempty"`
	FullHTML      string      `json:"full_html,omitempty"`
	Markdown      string      `json:"markdown,omitempty"`
	IndexedAt     time.Time   `json:"indexed_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// TextContent mirrors ProcessedPage.TextContent, used by the store
// operation's updateOnlyIfChanged comparison.
func (d *StoredDocument) TextContent() string {
	var b []byte
	for _, h := range d.Headings {
		b = append(b, h.Text...)
	}
	for _, para := range d.Paragraphs {
		b = append(b, para...)
	}
	return string(b)
}

// FromProcessedPage builds a StoredDocument from extraction output plus the
// identity fields the Storage Manager assigns.
func FromProcessedPage(page *ProcessedPage, id, sourceID string, now time.Time) *StoredDocument {
	return &StoredDocument{
		ID:            id,
		SourceID:      sourceID,
		URL:           page.URL,
		Title:         page.Title,
		Headings:      page.Headings,
		Paragraphs:    page.Paragraphs,
		CodeBlocks:    page.CodeBlocks,
		OutboundLinks: page.OutboundLinks,
		MainContent:   page.MainContent,
		FullHTML:      page.FullHTML,
		Markdown:      page.Markdown,
		IndexedAt:     page.IndexedAt,
		UpdatedAt:     now,
	}
}
