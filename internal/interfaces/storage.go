package interfaces

import (
	"context"

	"github.com/ternarybob/docsi/internal/models"
)

// StorageManager is the Storage Manager's (C5) public contract: a
// content-addressed, per-source document store rooted at dataDir. All
// identifiers it accepts are validated against [A-Za-z0-9_-] before any
// filesystem call is made.
type StorageManager interface {
	// Store persists document, returning the StoredDocument actually on
	// disk afterward (which may be the pre-existing one if overwrite is
	// false, or unchanged if updateOnlyIfChanged finds no diff).
	Store(ctx context.Context, sourceID string, doc *models.StoredDocument, opts StoreOptions) (*models.StoredDocument, error)
	FindByURL(ctx context.Context, sourceID, url string) (*models.StoredDocument, error)
	FindByID(ctx context.Context, sourceID, docID string) (*models.StoredDocument, error)
	ListSource(ctx context.Context, sourceID string) (*models.SourceIndex, error)
	DeleteSource(ctx context.Context, sourceID string) error
}

// StoreOptions controls Store's upsert behavior (§4.5).
type StoreOptions struct {
	Overwrite           bool
	UpdateOnlyIfChanged bool
}

// SourceRegistry is the Source Registry's (C9) public contract: CRUD over
// named DocumentSource records plus pinned custom links.
type SourceRegistry interface {
	Add(ctx context.Context, source *models.DocumentSource) error
	Remove(ctx context.Context, name string) (*models.DocumentSource, error)
	Update(ctx context.Context, source *models.DocumentSource) error
	List(ctx context.Context) ([]*models.DocumentSource, error)
	FindByName(ctx context.Context, name string) (*models.DocumentSource, error)
	FindByID(ctx context.Context, id string) (*models.DocumentSource, error)
}

// JobStorage is the Job Manager's (C8) persistence contract, backed by an
// embedded KV store so job state and progress survive process restart.
type JobStorage interface {
	Save(ctx context.Context, job *models.Job) error
	Get(ctx context.Context, jobID string) (*models.Job, error)
	FindRunningBySource(ctx context.Context, sourceID string) (*models.Job, error)
	List(ctx context.Context, limit int) ([]*models.Job, error)
}
