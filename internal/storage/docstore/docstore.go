// Package docstore implements the Storage Manager (C5): a content-
// addressed, per-source JSON document store rooted at a data directory.
// The write-to-temp-then-rename durability idiom is grounded on the
// retrieval pack's gob-encoded HTTP cache (agentberlin-bluesnake's
// http_backend.go), adapted from gob to JSON since §4.5 names JSON as the
// on-disk document format.
package docstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docsi/internal/errs"
	"github.com/ternarybob/docsi/internal/interfaces"
	"github.com/ternarybob/docsi/internal/models"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Store implements interfaces.StorageManager over dataDir. All mutating
// operations against a single source serialize through a per-source lock
// so a concurrent store/delete can never race on index.json.
type Store struct {
	logger  arbor.ILogger
	dataDir string

	mu         sync.Mutex
	sourceLock map[string]*sync.Mutex
}

// New creates a Storage Manager rooted at dataDir.
func New(logger arbor.ILogger, dataDir string) *Store {
	return &Store{
		logger:     logger,
		dataDir:    dataDir,
		sourceLock: make(map[string]*sync.Mutex),
	}
}

func (s *Store) lockFor(sourceID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.sourceLock[sourceID]
	if !ok {
		lock = &sync.Mutex{}
		s.sourceLock[sourceID] = lock
	}
	return lock
}

// validateIdentifier rejects any sourceID/docID containing characters
// outside [A-Za-z0-9_-], the security invariant that keeps every path
// this package builds a descendant of dataDir.
func validateIdentifier(id string) error {
	if id == "" || !identifierRe.MatchString(id) {
		return fmt.Errorf("docstore: invalid identifier %q: %w", id, errs.ErrValidation)
	}
	return nil
}

func (s *Store) sourceDir(sourceID string) string {
	return filepath.Join(s.dataDir, sourceID)
}

func (s *Store) indexPath(sourceID string) string {
	return filepath.Join(s.sourceDir(sourceID), "index.json")
}

func (s *Store) docPath(sourceID, docID string) string {
	return filepath.Join(s.sourceDir(sourceID), docID+".json")
}

// writeAtomic writes data to path by first writing path+".tmp" and
// renaming it over the destination, so a crash mid-write never leaves a
// truncated file visible at path.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("docstore: write temp file: %w", errs.ErrStorage)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("docstore: rename temp file: %w", errs.ErrStorage)
	}
	return nil
}

func (s *Store) readIndex(sourceID string) (*models.SourceIndex, error) {
	data, err := os.ReadFile(s.indexPath(sourceID))
	if os.IsNotExist(err) {
		return &models.SourceIndex{ID: sourceID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("docstore: read index: %w", errs.ErrStorage)
	}
	var index models.SourceIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("docstore: unmarshal index: %w", errs.ErrStorage)
	}
	return &index, nil
}

func (s *Store) writeIndex(sourceID string, index *models.SourceIndex) error {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("docstore: marshal index: %w", errs.ErrStorage)
	}
	if err := os.MkdirAll(s.sourceDir(sourceID), 0o755); err != nil {
		return fmt.Errorf("docstore: create source dir: %w", errs.ErrStorage)
	}
	return writeAtomic(s.indexPath(sourceID), data)
}

func (s *Store) readDocument(sourceID, docID string) (*models.StoredDocument, error) {
	data, err := os.ReadFile(s.docPath(sourceID, docID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("docstore: read document: %w", errs.ErrStorage)
	}
	var doc models.StoredDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("docstore: unmarshal document: %w", errs.ErrStorage)
	}
	return &doc, nil
}

func marshalDocument(doc *models.StoredDocument) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("docstore: marshal document: %w", errs.ErrStorage)
	}
	return data, nil
}

var _ interfaces.StorageManager = (*Store)(nil)
