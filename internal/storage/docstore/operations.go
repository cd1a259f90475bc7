package docstore

import (
	"context"
	"fmt"
	"os"

	"github.com/ternarybob/docsi/internal/errs"
	"github.com/ternarybob/docsi/internal/interfaces"
	"github.com/ternarybob/docsi/internal/models"
)

// Store persists doc under sourceID. If a document with the same URL
// already exists and opts.Overwrite is false, the existing document is
// returned unchanged. If opts.Overwrite is true and opts.UpdateOnlyIfChanged
// is set, a byte-equal comparison of title, text content, and raw HTML
// length skips the write entirely when nothing changed. Otherwise the
// document is written atomically and the source's index.json is rewritten.
func (s *Store) Store(ctx context.Context, sourceID string, doc *models.StoredDocument, opts interfaces.StoreOptions) (*models.StoredDocument, error) {
	if err := validateIdentifier(sourceID); err != nil {
		return nil, err
	}
	if err := validateIdentifier(doc.ID); err != nil {
		return nil, err
	}

	lock := s.lockFor(sourceID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.readDocument(sourceID, doc.ID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if !opts.Overwrite {
			return existing, nil
		}
		if opts.UpdateOnlyIfChanged && documentsEqual(existing, doc) {
			return existing, nil
		}
	}

	if err := os.MkdirAll(s.sourceDir(sourceID), 0o755); err != nil {
		return nil, fmt.Errorf("docstore: create source dir: %w", errs.ErrStorage)
	}

	data, err := marshalDocument(doc)
	if err != nil {
		return nil, err
	}
	if err := writeAtomic(s.docPath(sourceID, doc.ID), data); err != nil {
		return nil, err
	}

	if err := s.appendToIndex(sourceID, doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// documentsEqual compares the fields updateOnlyIfChanged cares about:
// title, concatenated text content, and raw HTML length — a cheap proxy
// for "did the page actually change" without diffing every field.
func documentsEqual(a, b *models.StoredDocument) bool {
	return a.Title == b.Title &&
		a.TextContent() == b.TextContent() &&
		len(a.FullHTML) == len(b.FullHTML)
}

func (s *Store) appendToIndex(sourceID string, doc *models.StoredDocument) error {
	index, err := s.readIndex(sourceID)
	if err != nil {
		return err
	}

	index.ID = sourceID
	replaced := false
	for i, page := range index.Pages {
		if page.ID == doc.ID {
			index.Pages[i] = models.IndexedPage{ID: doc.ID, URL: doc.URL, Title: doc.Title}
			replaced = true
			break
		}
	}
	if !replaced {
		index.Pages = append(index.Pages, models.IndexedPage{ID: doc.ID, URL: doc.URL, Title: doc.Title})
	}
	index.PageCount = len(index.Pages)
	index.IndexedAt = doc.UpdatedAt

	return s.writeIndex(sourceID, index)
}

// FindByURL scans sourceID's index for an entry whose URL matches, then
// loads that document by id.
func (s *Store) FindByURL(ctx context.Context, sourceID, url string) (*models.StoredDocument, error) {
	if err := validateIdentifier(sourceID); err != nil {
		return nil, err
	}
	index, err := s.readIndex(sourceID)
	if err != nil {
		return nil, err
	}
	for _, page := range index.Pages {
		if page.URL == url {
			return s.readDocument(sourceID, page.ID)
		}
	}
	return nil, nil
}

// FindByID loads a single document directly by its content-addressed id.
func (s *Store) FindByID(ctx context.Context, sourceID, docID string) (*models.StoredDocument, error) {
	if err := validateIdentifier(sourceID); err != nil {
		return nil, err
	}
	if err := validateIdentifier(docID); err != nil {
		return nil, err
	}
	return s.readDocument(sourceID, docID)
}

// ListSource returns sourceID's manifest.
func (s *Store) ListSource(ctx context.Context, sourceID string) (*models.SourceIndex, error) {
	if err := validateIdentifier(sourceID); err != nil {
		return nil, err
	}
	return s.readIndex(sourceID)
}

// DeleteSource removes sourceID's entire directory, best-effort atomic: a
// partial failure mid-delete leaves whatever files os.RemoveAll did not
// reach, but never touches any other source's directory.
func (s *Store) DeleteSource(ctx context.Context, sourceID string) error {
	if err := validateIdentifier(sourceID); err != nil {
		return err
	}
	lock := s.lockFor(sourceID)
	lock.Lock()
	defer lock.Unlock()

	if err := os.RemoveAll(s.sourceDir(sourceID)); err != nil {
		return fmt.Errorf("docstore: delete source directory: %w", errs.ErrStorage)
	}
	return nil
}
