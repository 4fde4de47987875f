// Package sqlite provides a SQLite-backed implementation of the
// storage.Slot interface using Go's standard database/sql package.
//
// The database acts as a plain key-value store: one table, one row per
// named slot, the value being the whole encoded collection. SQLite keeps
// everything in a single file on disk, which is exactly the durability
// the record store needs and nothing more.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Slot.
// Key is the slot name; several slots can share one database file.
type SQLite struct {
	Db  *sql.DB
	Key string
}

var _ storage.Slot = (*SQLite)(nil)

// New opens the SQLite database at cfg.StoragePath, creates the slots
// table if it does not already exist, and returns a slot bound to
// cfg.SlotKey.
func New(cfg *config.Config) (*SQLite, error) {
	return Open(cfg.StoragePath, cfg.SlotKey)
}

// Open is New without a Config, for callers that only have a path.
func Open(path, key string) (*SQLite, error) {
	if key == "" {
		return nil, errors.New("sqlite.Open: empty slot key")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.Open: open db: %w", err)
	}

	// CREATE TABLE IF NOT EXISTS is idempotent — safe on every startup.
	//
	// Schema:
	//   key   — slot name, e.g. "students-data"
	//   value — the full collection as a JSON array
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS slots (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.Open: create table: %w", err)
	}

	return &SQLite{Db: db, Key: key}, nil
}

// Load reads the slot row. A missing row or an empty value means the slot
// has never been written.
func (s *SQLite) Load() ([]types.Student, bool, error) {
	stmt, err := s.Db.Prepare("SELECT value FROM slots WHERE key = ? LIMIT 1")
	if err != nil {
		return nil, false, fmt.Errorf("Load: prepare: %w", err)
	}
	defer stmt.Close()

	var value string
	err = stmt.QueryRow(s.Key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("Load: scan: %w", err)
	}
	if value == "" {
		return nil, false, nil
	}

	records, err := storage.Unmarshal([]byte(value))
	if err != nil {
		return nil, false, fmt.Errorf("Load: %w", err)
	}
	return records, true, nil
}

// Save replaces the slot row with the encoded collection.
// ON CONFLICT turns the INSERT into an UPDATE when the key already exists,
// so the row is written in a single statement.
func (s *SQLite) Save(records []types.Student) error {
	data, err := storage.Marshal(records)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}

	stmt, err := s.Db.Prepare(`
		INSERT INTO slots (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`)
	if err != nil {
		return fmt.Errorf("Save: prepare: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.Exec(s.Key, string(data)); err != nil {
		return fmt.Errorf("Save: exec: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}
