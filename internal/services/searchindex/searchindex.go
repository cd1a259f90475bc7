// Package searchindex implements the Search Index (C6): an in-memory,
// per-source fuzzy index over StoredDocuments, rebuilt from the Storage
// Manager's corpus and persisted as rebuildable lookup/hierarchy caches.
// Field-weighted scoring is new (the teacher has no search-ranking
// component at all — its search/common.go only filters by exact
// metadata/tag match); sahilm/fuzzy supplies the actual fuzzy-match
// primitive, the pack's idiomatic choice for this concern.
package searchindex

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docsi/internal/errs"
	"github.com/ternarybob/docsi/internal/interfaces"
	"github.com/ternarybob/docsi/internal/models"
)

const (
	weightTitle    = 2.0
	weightHeadings = 1.5
	weightContent  = 1.0
	weightTags     = 0.8
	weightTotal    = weightTitle + weightHeadings + weightContent + weightTags

	matchThreshold     = 0.4
	minMatchLength     = 3
	maxResultsPerGroup = 5
)

// indexedDoc is one document's searchable projection, matching §4.6's
// per-document representation.
type indexedDoc struct {
	doc          *models.StoredDocument
	title        string
	headingsText string
	content      string
	tags         string
	pathSegments []string
}

// sourceState is one source's in-memory index plus the breadcrumb tree
// keyed by URL path.
type sourceState struct {
	sourceName string
	docs       []indexedDoc
	byPath     map[string]string // joined path -> title, for breadcrumb lookups
}

// Index implements interfaces.SearchIndex.
type Index struct {
	logger  arbor.ILogger
	dataDir string

	mu      sync.RWMutex
	sources map[string]*sourceState

	customLinks []models.CustomLink
}

// New creates a Search Index. Call Rebuild once per source before Search
// returns anything for it.
func New(logger arbor.ILogger, dataDir string) *Index {
	return &Index{
		logger:  logger,
		dataDir: dataDir,
		sources: make(map[string]*sourceState),
	}
}

// SetCustomLinks replaces the pinned custom links consulted by Search,
// mirroring the Source Registry's customLinks sequence (§4.9).
func (idx *Index) SetCustomLinks(links []models.CustomLink) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.customLinks = links
}

// Rebuild re-derives sourceID's searchable projection from docs and
// persists the document-lookup.json / hierarchy.json caches §6 names,
// rebuildable artifacts rather than a source of truth. tags are the
// source's own Tags (StoredDocument carries no per-document tags of its
// own), applied uniformly across every document so score.go's tagsScore
// dimension has something to match against.
func (idx *Index) Rebuild(ctx context.Context, sourceID, sourceName string, tags []string, docs []*models.StoredDocument) error {
	state := &sourceState{
		sourceName: sourceName,
		byPath:     make(map[string]string),
	}

	tagsText := strings.Join(tags, " ")
	for _, doc := range docs {
		entry := indexedDoc{
			doc:          doc,
			title:        doc.Title,
			headingsText: headingsText(doc.Headings),
			content:      contentText(doc),
			tags:         tagsText,
			pathSegments: pathSegmentsOf(doc.URL),
		}
		state.docs = append(state.docs, entry)
		state.byPath[strings.Join(entry.pathSegments, "/")] = doc.Title
	}

	idx.mu.Lock()
	idx.sources[sourceID] = state
	idx.mu.Unlock()

	if idx.dataDir == "" {
		return nil
	}
	if err := idx.persistCaches(sourceID, state); err != nil {
		return err
	}
	return nil
}

func headingsText(headings []models.Heading) string {
	var b strings.Builder
	for _, h := range headings {
		b.WriteString(h.Text)
		b.WriteByte(' ')
	}
	return b.String()
}

// contentText concatenates title, headings, paragraphs, and code, the
// "content" field §4.6 scores against.
func contentText(doc *models.StoredDocument) string {
	var b strings.Builder
	b.WriteString(doc.Title)
	b.WriteByte(' ')
	b.WriteString(headingsText(doc.Headings))
	for _, p := range doc.Paragraphs {
		b.WriteString(p)
		b.WriteByte(' ')
	}
	for _, c := range doc.CodeBlocks {
		b.WriteString(c.Code)
		b.WriteByte(' ')
	}
	return b.String()
}

func pathSegmentsOf(rawURL string) []string {
	idx := strings.Index(rawURL, "://")
	path := rawURL
	if idx >= 0 {
		rest := rawURL[idx+3:]
		if slash := strings.Index(rest, "/"); slash >= 0 {
			path = rest[slash:]
		} else {
			path = "/"
		}
	}
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

type lookupCache struct {
	Entries []models.IndexedPage `json:"entries"`
}

type hierarchyCache struct {
	Paths map[string]string `json:"paths"`
}

func (idx *Index) persistCaches(sourceID string, state *sourceState) error {
	dir := filepath.Join(idx.dataDir, sourceID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("searchindex: create source dir: %w", errs.ErrStorage)
	}

	lookup := lookupCache{}
	for _, d := range state.docs {
		lookup.Entries = append(lookup.Entries, models.IndexedPage{ID: d.doc.ID, URL: d.doc.URL, Title: d.doc.Title})
	}
	if err := writeJSON(filepath.Join(dir, "document-lookup.json"), lookup); err != nil {
		return err
	}

	hierarchy := hierarchyCache{Paths: state.byPath}
	if err := writeJSON(filepath.Join(dir, "hierarchy.json"), hierarchy); err != nil {
		return err
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("searchindex: marshal cache: %w", errs.ErrStorage)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("searchindex: write cache: %w", errs.ErrStorage)
	}
	return nil
}

var _ interfaces.SearchIndex = (*Index)(nil)
