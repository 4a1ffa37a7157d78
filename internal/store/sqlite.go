// internal/store/sqlite.go
//
// SQLite Store implementation.
// Responsibilities:
//   - Opening the database with safe defaults (WAL, busy timeout,
//     foreign keys) and ensuring the parent directory exists.
//   - A single rooms table holding one JSON snapshot per room.
//
// Save replaces the table contents in one transaction so the durable state
// always reflects a single consistent registry snapshot.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS rooms (
    id       TEXT PRIMARY KEY,
    snapshot TEXT NOT NULL
);`

// SQLiteStore persists room snapshots in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and creates if missing) the database at dsn.
//
//   - Ensures the parent directory exists for relative DSNs (e.g. ./data/rooms.db).
//   - Configures busy timeout and WAL journaling.
//   - Applies the schema idempotently.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save replaces all persisted rooms inside one transaction.
func (s *SQLiteStore) Save(ctx context.Context, rooms map[string]RoomSnapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rooms`); err != nil {
		return fmt.Errorf("clear rooms: %w", err)
	}
	for id, snap := range rooms {
		data, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("marshal room %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rooms (id, snapshot) VALUES (?, ?)`, id, string(data)); err != nil {
			return fmt.Errorf("insert room %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// Load retrieves all persisted rooms.
func (s *SQLiteStore) Load(ctx context.Context) (map[string]RoomSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, snapshot FROM rooms`)
	if err != nil {
		return nil, fmt.Errorf("select rooms: %w", err)
	}
	defer rows.Close()

	out := map[string]RoomSnapshot{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		var snap RoomSnapshot
		if err := json.Unmarshal([]byte(data), &snap); err != nil {
			return nil, fmt.Errorf("unmarshal room %s: %w", id, err)
		}
		out[id] = snap
	}
	return out, rows.Err()
}

// Clear discards all persisted rooms.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM rooms`)
	return err
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }
