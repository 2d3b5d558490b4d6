package storage

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// recordName is the single key-value entry the snapshot lives under, the
// same record name the app has always used for its local storage.
const recordName = "notes-storage"

const kvSchemaSQL = `
CREATE TABLE IF NOT EXISTS kv (
	name  TEXT PRIMARY KEY,
	value BLOB NOT NULL
);
`

// SQLite implements Provider backed by a local SQLite database holding the
// snapshot as one named record in a kv table.
type SQLite struct {
	conn *sql.DB
}

// OpenSQLite opens (or creates) the database and applies the kv schema.
func OpenSQLite(dsn string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("storage: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	if _, err := conn.Exec(kvSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: apply schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// Load reads the snapshot record. A missing row means "no snapshot yet".
func (s *SQLite) Load() ([]byte, error) {
	var value []byte
	err := s.conn.QueryRow(`SELECT value FROM kv WHERE name = ?`, recordName).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: load snapshot: %w", err)
	}
	return value, nil
}

// Save upserts the snapshot record.
func (s *SQLite) Save(data []byte) error {
	_, err := s.conn.Exec(`
		INSERT INTO kv (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value
	`, recordName, data)
	if err != nil {
		return fmt.Errorf("storage: save snapshot: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}
