// Package sourceregistry implements the Source Registry (C9): CRUD over
// the set of configured DocumentSources plus the pinned custom links
// surfaced alongside search results, persisted as the single JSON document
// dataDir/config.json.
//
// Grounded on the teacher's internal/services/sources/service.go
// (validate -> touch timestamps -> persist -> publish pattern), adapted
// from a per-record storage interface backed by a generic document store
// to a single-document-on-disk registry, since §6 names config.json as
// the Source Registry's entire on-disk state rather than one record per
// source. The write-to-temp-then-rename durability idiom is shared with
// internal/storage/docstore (itself grounded on the retrieval pack's
// gob-encoded HTTP cache).
package sourceregistry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docsi/internal/common"
	"github.com/ternarybob/docsi/internal/errs"
	"github.com/ternarybob/docsi/internal/interfaces"
	"github.com/ternarybob/docsi/internal/models"
)

// Registry implements interfaces.SourceRegistry over a single JSON
// document. All mutating operations serialize through mu so concurrent
// Add/Remove/Update calls never race on config.json.
type Registry struct {
	logger  arbor.ILogger
	dataDir string
	storage interfaces.StorageManager

	mu sync.RWMutex
}

// New creates a Source Registry backed by dataDir/config.json. storage is
// consulted on Remove to cascade-delete the source's persisted documents.
func New(logger arbor.ILogger, dataDir string, storage interfaces.StorageManager) *Registry {
	return &Registry{logger: logger, dataDir: dataDir, storage: storage}
}

func (r *Registry) configPath() string {
	return filepath.Join(r.dataDir, "config.json")
}

func (r *Registry) load() (*models.SourceRegistryDocument, error) {
	data, err := os.ReadFile(r.configPath())
	if os.IsNotExist(err) {
		return &models.SourceRegistryDocument{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sourceregistry: read config: %w", errs.ErrStorage)
	}
	var doc models.SourceRegistryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("sourceregistry: unmarshal config: %w", errs.ErrStorage)
	}
	return &doc, nil
}

func (r *Registry) save(doc *models.SourceRegistryDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("sourceregistry: marshal config: %w", errs.ErrStorage)
	}
	if err := os.MkdirAll(r.dataDir, 0o755); err != nil {
		return fmt.Errorf("sourceregistry: create data dir: %w", errs.ErrStorage)
	}
	tmp := r.configPath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("sourceregistry: write temp config: %w", errs.ErrStorage)
	}
	if err := os.Rename(tmp, r.configPath()); err != nil {
		return fmt.Errorf("sourceregistry: rename temp config: %w", errs.ErrStorage)
	}
	return nil
}

// Add validates source, assigns it an ID and timestamps if not already
// set, and persists it. Rejects a name already in use by another source.
func (r *Registry) Add(ctx context.Context, source *models.DocumentSource) error {
	if err := source.Validate(); err != nil {
		return fmt.Errorf("sourceregistry: %w: %w", err, errs.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return err
	}
	for _, existing := range doc.Sources {
		if existing.Name == source.Name {
			return fmt.Errorf("sourceregistry: source name %q already in use: %w", source.Name, errs.ErrValidation)
		}
	}

	if source.ID == "" {
		source.ID = common.NewSourceID()
	}
	now := time.Now()
	source.AddedAt = now
	source.LastUpdated = now

	doc.Sources = append(doc.Sources, *source)
	if err := r.save(doc); err != nil {
		return err
	}

	r.logger.Info().Str("id", source.ID).Str("name", source.Name).Str("base_url", source.BaseURL).Msg("source added")
	return nil
}

// Remove deletes the source named name from the registry and cascades the
// deletion to its persisted documents via the Storage Manager, returning
// the record as it was just before removal.
func (r *Registry) Remove(ctx context.Context, name string) (*models.DocumentSource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, existing := range doc.Sources {
		if existing.Name == name {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("sourceregistry: source %q not found: %w", name, errs.ErrValidation)
	}

	removed := doc.Sources[idx]
	doc.Sources = append(doc.Sources[:idx], doc.Sources[idx+1:]...)
	if err := r.save(doc); err != nil {
		return nil, err
	}

	if r.storage != nil {
		if err := r.storage.DeleteSource(ctx, removed.ID); err != nil {
			return nil, fmt.Errorf("sourceregistry: cascade delete source %s: %w", removed.ID, err)
		}
	}

	r.logger.Info().Str("id", removed.ID).Str("name", removed.Name).Msg("source removed")
	return &removed, nil
}

// Update validates source and replaces the record sharing its ID,
// preserving the original AddedAt timestamp.
func (r *Registry) Update(ctx context.Context, source *models.DocumentSource) error {
	if err := source.Validate(); err != nil {
		return fmt.Errorf("sourceregistry: %w: %w", err, errs.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return err
	}

	idx := -1
	for i, existing := range doc.Sources {
		if existing.ID == source.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("sourceregistry: source %s not found: %w", source.ID, errs.ErrValidation)
	}

	source.AddedAt = doc.Sources[idx].AddedAt
	source.LastUpdated = time.Now()
	doc.Sources[idx] = *source

	if err := r.save(doc); err != nil {
		return err
	}

	r.logger.Info().Str("id", source.ID).Str("name", source.Name).Msg("source updated")
	return nil
}

// List returns every configured source.
func (r *Registry) List(ctx context.Context) ([]*models.DocumentSource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	result := make([]*models.DocumentSource, len(doc.Sources))
	for i := range doc.Sources {
		src := doc.Sources[i]
		result[i] = &src
	}
	return result, nil
}

// FindByName returns the source named name, or ErrValidation if none
// exists.
func (r *Registry) FindByName(ctx context.Context, name string) (*models.DocumentSource, error) {
	sources, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, source := range sources {
		if source.Name == name {
			return source, nil
		}
	}
	return nil, fmt.Errorf("sourceregistry: source %q not found: %w", name, errs.ErrValidation)
}

// FindByID returns the source with the given id, or ErrValidation if none
// exists.
func (r *Registry) FindByID(ctx context.Context, id string) (*models.DocumentSource, error) {
	sources, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, source := range sources {
		if source.ID == id {
			return source, nil
		}
	}
	return nil, fmt.Errorf("sourceregistry: source id %q not found: %w", id, errs.ErrValidation)
}

// CustomLinks returns the pinned links persisted alongside the source
// list, consulted at startup to seed the Search Index's SetCustomLinks.
func (r *Registry) CustomLinks(ctx context.Context) ([]models.CustomLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	return doc.CustomLinks, nil
}

var _ interfaces.SourceRegistry = (*Registry)(nil)
