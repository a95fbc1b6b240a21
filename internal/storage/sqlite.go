package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/fyrsmithlabs/impactd/internal/project"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS projects (
	id        INTEGER PRIMARY KEY,
	position  INTEGER NOT NULL,
	name      TEXT NOT NULL,
	problem   TEXT NOT NULL,
	initiator TEXT NOT NULL,
	deadline  TEXT NOT NULL,
	status    TEXT NOT NULL,
	executor  TEXT NOT NULL
)`

// SQLiteStore persists projects to a SQLite table, snapshotting the whole
// table on every save.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "impactd.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, ioError("mkdir", filepath.Dir(path), err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, ioError("open", path, err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, ioError("create table", path, err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Load returns all rows in stored order.
func (s *SQLiteStore) Load(ctx context.Context) ([]project.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, problem, initiator, deadline, status, executor FROM projects ORDER BY position`)
	if err != nil {
		return nil, ioError("select", s.path, err)
	}
	defer func() { _ = rows.Close() }()

	var entries []project.Entry
	for rows.Next() {
		var e project.Entry
		p := &e.Project
		if err := rows.Scan(&e.ID, &p.Name, &p.Problem, &p.Initiator, &p.Deadline, &p.Status, &p.Executor); err != nil {
			return nil, ioError("scan", s.path, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, ioError("select", s.path, err)
	}
	return entries, nil
}

// Save replaces every row inside one transaction.
func (s *SQLiteStore) Save(ctx context.Context, entries []project.Entry) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ioError("begin", s.path, err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM projects`); err != nil {
		return ioError("delete", s.path, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO projects(id, position, name, problem, initiator, deadline, status, executor) VALUES(?,?,?,?,?,?,?,?)`)
	if err != nil {
		return ioError("prepare", s.path, err)
	}
	defer stmt.Close()

	for i, e := range entries {
		p := e.Project
		if _, err := stmt.ExecContext(ctx, e.ID, i, p.Name, p.Problem, p.Initiator, p.Deadline, p.Status, p.Executor); err != nil {
			return ioError("insert", s.path, fmt.Errorf("project %d: %w", e.ID, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return ioError("commit", s.path, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the configured database path.
func (s *SQLiteStore) Path() string { return s.path }
