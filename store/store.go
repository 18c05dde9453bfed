// Package store persists named snapshots to SQLite so saved values
// survive process restarts. The payload is the snapshot's CBOR
// encoding; version validation happens on restore, not here.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/jdbancal/MyFavoriteDouble/registry"
)

// ErrNotFound indicates no snapshot is stored under the given name.
var ErrNotFound = errors.New("snapshot not found")

// Store is a durable shelf of named snapshots.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens (creating if necessary) the snapshot database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: setting busy timeout: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS snapshots (
		name TEXT PRIMARY KEY,
		data BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: creating table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Put stores a snapshot under name, replacing any previous one.
func (s *Store) Put(name string, snap *registry.Snapshot) error {
	data, err := registry.EncodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("store: encoding snapshot %q: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(
		"INSERT OR REPLACE INTO snapshots (name, data) VALUES (?, ?)",
		name, data,
	); err != nil {
		return fmt.Errorf("store: saving snapshot %q: %w", name, err)
	}
	return nil
}

// Get loads the snapshot stored under name.
func (s *Store) Get(name string) (*registry.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data []byte
	err := s.db.QueryRow("SELECT data FROM snapshots WHERE name = ?", name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store: snapshot %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: loading snapshot %q: %w", name, err)
	}

	snap, err := registry.DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("store: snapshot %q: %w", name, err)
	}
	return snap, nil
}

// List returns the names of all stored snapshots in lexical order.
func (s *Store) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT name FROM snapshots ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("store: listing snapshots: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("store: listing snapshots: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: listing snapshots: %w", err)
	}
	return names, nil
}

// Delete removes the snapshot stored under name. Removing a name that
// was never stored is an error, consistent with registry deletion.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM snapshots WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("store: deleting snapshot %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: deleting snapshot %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("store: snapshot %q: %w", name, ErrNotFound)
	}
	return nil
}
