// Package badger persists Job Manager state (C8) in an embedded
// badgerhold store, so a job's status and progress survive process
// restart. This is the teacher's own storage technology — its
// connection.go scaffold is kept in shape, trimmed to the one
// collection this design actually needs.
package badger

import (
	"fmt"
	"os"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// DB wraps a badgerhold store opened at a fixed path.
type DB struct {
	store  *badgerhold.Store
	logger arbor.ILogger
}

// Open creates the data directory if necessary and opens a badgerhold
// store rooted at path.
func Open(logger arbor.ILogger, path string) (*DB, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("badger: create data directory %s: %w", path, err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("badger: open store at %s: %w", path, err)
	}

	logger.Debug().Str("path", path).Msg("job store opened")
	return &DB{store: store, logger: logger}, nil
}

// Store returns the underlying badgerhold handle.
func (d *DB) Store() *badgerhold.Store {
	return d.store
}

// Close releases the underlying store.
func (d *DB) Close() error {
	if d.store == nil {
		return nil
	}
	return d.store.Close()
}
