package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/impactd/internal/codec"
	"github.com/fyrsmithlabs/impactd/internal/config"
	"github.com/fyrsmithlabs/impactd/internal/logging"
	"github.com/fyrsmithlabs/impactd/internal/project"
)

func sampleEntries() []project.Entry {
	return []project.Entry{
		{ID: 1, Project: project.Project{
			Name: "Victory Park", Problem: "Litter on the paths", Initiator: "A. Ivanov",
			Deadline: "2025-05-01", Status: "New", Executor: "Unassigned",
		}},
		{ID: 3, Project: project.Project{
			Name: "Bus stop", Problem: "Broken bench", Initiator: "B. Petrova",
			Deadline: "2025-06-01", Status: "In progress", Executor: "City works",
		}},
	}
}

func newFileStore(t *testing.T, strategy codec.Strategy, logger *logging.Logger) *FileStore {
	t.Helper()
	c, err := codec.New(strategy)
	require.NoError(t, err)
	return NewFileStore(filepath.Join(t.TempDir(), "projects.csv"), c, logger)
}

func TestFileStore_MissingFileLoadsEmpty(t *testing.T) {
	fs := newFileStore(t, codec.StrategyLegacy, nil)

	entries, err := fs.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileStore_SaveLoad(t *testing.T) {
	for _, strategy := range []codec.Strategy{codec.StrategyLegacy, codec.StrategyQuoted} {
		t.Run(string(strategy), func(t *testing.T) {
			ctx := context.Background()
			fs := newFileStore(t, strategy, nil)

			require.NoError(t, fs.Save(ctx, sampleEntries()))
			got, err := fs.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, sampleEntries(), got)

			_, err = os.Stat(fs.Path() + ".tmp")
			assert.True(t, errors.Is(err, os.ErrNotExist), "temp file must not remain")
		})
	}
}

func TestFileStore_LegacyFileLayout(t *testing.T) {
	fs := newFileStore(t, codec.StrategyLegacy, nil)
	require.NoError(t, fs.Save(context.Background(), sampleEntries()[:1]))

	data, err := os.ReadFile(fs.Path())
	require.NoError(t, err)
	assert.Equal(t,
		"ID,Name,Problem,Initiator,Deadline,Status,Executor\n"+
			"1,Victory Park,Litter on the paths,A. Ivanov,2025-05-01,New,Unassigned\n",
		string(data))
}

func TestFileStore_SaveEmptyWritesHeader(t *testing.T) {
	fs := newFileStore(t, codec.StrategyLegacy, nil)
	require.NoError(t, fs.Save(context.Background(), nil))

	data, err := os.ReadFile(fs.Path())
	require.NoError(t, err)
	assert.Equal(t, "ID,Name,Problem,Initiator,Deadline,Status,Executor\n", string(data))
}

func TestFileStore_MalformedLinesLogged(t *testing.T) {
	tl := logging.NewTestLogger()
	fs := newFileStore(t, codec.StrategyLegacy, tl.Logger)

	content := "ID,Name,Problem,Initiator,Deadline,Status,Executor\n" +
		"1,Park,Litter,Ann,May,New,Unassigned\n" +
		"2,Broken,line\n"
	require.NoError(t, os.WriteFile(fs.Path(), []byte(content), 0644))

	entries, err := fs.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].ID)

	tl.AssertLogged(t, zapcore.WarnLevel, "skipping malformed record")
	tl.AssertField(t, "skipping malformed record", "line", int64(3))
}

func TestFileStore_CreatesParentDir(t *testing.T) {
	c, err := codec.New(codec.StrategyLegacy)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "nested", "data", "projects.csv")
	fs := NewFileStore(path, c, nil)

	require.NoError(t, fs.Save(context.Background(), sampleEntries()))
	assert.FileExists(t, path)
}

func TestFileStore_SaveFailureWrapsErrIO(t *testing.T) {
	c, err := codec.New(codec.StrategyLegacy)
	require.NoError(t, err)
	// The data path is an existing directory, so the rename cannot succeed.
	dir := t.TempDir()
	fs := NewFileStore(dir, c, nil)

	err = fs.Save(context.Background(), sampleEntries())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)

	_, statErr := os.Stat(dir + ".tmp")
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestSQLiteStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "impactd.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	entries := sampleEntries()
	entries[0].Project.Problem = "Litter, glass, and \"bottles\"\nnear the gate"
	require.NoError(t, s.Save(ctx, entries))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err = reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestSQLiteStore_SaveReplacesAndKeepsOrder(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "impactd.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(ctx, sampleEntries()))

	require.NoError(t, s.Save(ctx, sampleEntries()[1:]))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].ID)

	// Order follows the slice, not the key.
	both := []project.Entry{sampleEntries()[1], sampleEntries()[0]}
	require.NoError(t, s.Save(ctx, both))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1}, []int{got[0].ID, got[1].ID})
}

func TestSQLiteStore_DuplicateIDRollsBack(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "impactd.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(ctx, sampleEntries()))

	dup := append(sampleEntries(), sampleEntries()[0])
	err = s.Save(ctx, dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleEntries(), got, "failed save must leave previous snapshot")
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     config.StorageConfig
		want    interface{}
		wantErr bool
	}{
		{name: "file legacy", cfg: config.StorageConfig{Backend: "file", Path: filepath.Join(dir, "a.csv"), Codec: "legacy"}, want: &FileStore{}},
		{name: "file quoted", cfg: config.StorageConfig{Backend: "file", Path: filepath.Join(dir, "b.csv"), Codec: "quoted"}, want: &FileStore{}},
		{name: "sqlite", cfg: config.StorageConfig{Backend: "sqlite", Path: filepath.Join(dir, "c.db")}, want: &SQLiteStore{}},
		{name: "bad codec", cfg: config.StorageConfig{Backend: "file", Path: filepath.Join(dir, "d.csv"), Codec: "tsv"}, wantErr: true},
		{name: "bad backend", cfg: config.StorageConfig{Backend: "s3"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Open(tt.cfg, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer b.Close()
			assert.IsType(t, tt.want, b)
		})
	}
}
