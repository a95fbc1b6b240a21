package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/impactd/internal/codec"
	"github.com/fyrsmithlabs/impactd/internal/logging"
	"github.com/fyrsmithlabs/impactd/internal/project"
)

// FileStore persists projects to a delimited text file.
type FileStore struct {
	path   string
	codec  codec.Codec
	logger *logging.Logger
}

// NewFileStore returns a file backend at path. A nil logger discards output.
func NewFileStore(path string, c codec.Codec, logger *logging.Logger) *FileStore {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &FileStore{
		path:   path,
		codec:  c,
		logger: logger.Named("storage.file"),
	}
}

// Path returns the data file location.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads and decodes the file. Malformed lines are logged and skipped.
func (f *FileStore) Load(ctx context.Context) ([]project.Entry, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		f.logger.Info(ctx, "data file not found, starting empty", zap.String("path", f.path))
		return nil, nil
	}
	if err != nil {
		return nil, ioError("read", f.path, err)
	}

	entries, lineErrs := f.codec.Decode(data)
	for _, le := range lineErrs {
		f.logger.Warn(ctx, "skipping malformed record",
			zap.String("path", f.path),
			zap.Int("line", le.Line),
			zap.String("text", le.Text),
			zap.Error(le.Err),
		)
	}

	f.logger.Debug(ctx, "loaded projects",
		zap.String("path", f.path),
		zap.Int("count", len(entries)),
		zap.Int("skipped", len(lineErrs)),
	)
	return entries, nil
}

// Save writes all entries to a temp file and renames it over the data file.
func (f *FileStore) Save(ctx context.Context, entries []project.Entry) error {
	data := f.codec.Encode(entries)

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return ioError("mkdir", dir, err)
		}
	}

	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return ioError("write", tmpPath, err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return ioError("rename", f.path, err)
	}

	f.logger.Trace(ctx, "saved projects", zap.String("path", f.path), zap.Int("count", len(entries)))
	return nil
}

// Close is a no-op.
func (f *FileStore) Close() error {
	return nil
}
