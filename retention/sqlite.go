package retention

import (
	"database/sql"
	"errors"
	"fmt"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps retained slots in a SQLite database.
type SQLiteStore struct {
	*sql.DB
}

// NewSQLiteStore opens, and creates when needed, the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("retention: opening %s: %w", path, err)
	}

	return NewSQLiteStoreWithDB(db)
}

// NewSQLiteStoreWithDB uses an already opened database.
func NewSQLiteStoreWithDB(db *sql.DB) (*SQLiteStore, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS retention (
	slot TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);`)
	if err != nil {
		return nil, fmt.Errorf("retention: creating table: %w", err)
	}

	return &SQLiteStore{DB: db}, nil
}

// Read returns the value held by the slot.
func (s *SQLiteStore) Read(slot string) (int64, bool, error) {
	var v int64

	err := s.QueryRow(
		"SELECT value FROM retention WHERE slot = ?", slot).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}

	if err != nil {
		return 0, false, fmt.Errorf("retention: reading %s: %w", slot, err)
	}

	return v, true, nil
}

// Write stores a value into the slot.
func (s *SQLiteStore) Write(slot string, value int64) error {
	_, err := s.Exec(`INSERT INTO retention (slot, value) VALUES (?, ?)
ON CONFLICT(slot) DO UPDATE SET value = excluded.value`, slot, value)
	if err != nil {
		return fmt.Errorf("retention: writing %s: %w", slot, err)
	}

	return nil
}

// Erase deletes all the slots.
func (s *SQLiteStore) Erase() error {
	_, err := s.Exec("DELETE FROM retention")
	if err != nil {
		return fmt.Errorf("retention: erasing: %w", err)
	}

	return nil
}
