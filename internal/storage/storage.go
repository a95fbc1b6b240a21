// Package storage persists the project table between runs.
//
// Two backends implement Backend. FileStore writes the flat delimited file
// through a codec and replaces it atomically on every save. SQLiteStore keeps
// the same rows in a single SQLite table and rewrites it in one transaction.
// Both always store the complete table: there are no partial updates.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/fyrsmithlabs/impactd/internal/codec"
	"github.com/fyrsmithlabs/impactd/internal/config"
	"github.com/fyrsmithlabs/impactd/internal/logging"
	"github.com/fyrsmithlabs/impactd/internal/project"
)

// ErrIO wraps every persistence failure.
var ErrIO = errors.New("storage i/o failed")

// Backend loads and saves the full ordered project table.
type Backend interface {
	// Load returns the persisted entries in stored order. A missing store
	// yields no entries and no error.
	Load(ctx context.Context) ([]project.Entry, error)

	// Save replaces the persisted table with entries.
	Save(ctx context.Context, entries []project.Entry) error

	Close() error
}

// Open builds the backend selected by cfg.
func Open(cfg config.StorageConfig, logger *logging.Logger) (Backend, error) {
	switch cfg.Backend {
	case "file", "":
		c, err := codec.New(codec.Strategy(cfg.Codec))
		if err != nil {
			return nil, err
		}
		return NewFileStore(cfg.Path, c, logger), nil
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func ioError(op, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrIO, op, path, err)
}
