package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"lapwatch/internal/core/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the stopwatch record as a JSON value in a key-value table.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens or creates the database at dbPath.
// Use ":memory:" for an in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (store *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	_, err := store.db.Exec(schema)
	return err
}

// Load reads the stopwatch record.
func (store *SQLiteStore) Load() (model.State, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	var value []byte
	err := store.db.QueryRow("SELECT value FROM kv WHERE key = ?", model.StateKey).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.State{}, model.ErrStateNotFound
		}
		return model.State{}, fmt.Errorf("query state: %w", err)
	}

	var state model.State
	if err := json.Unmarshal(value, &state); err != nil {
		return model.State{}, fmt.Errorf("%w: unmarshal state: %v", model.ErrStateCorrupt, err)
	}
	if err := state.Validate(); err != nil {
		return model.State{}, err
	}
	return state.Clone(), nil
}

// Save upserts the stopwatch record.
func (store *SQLiteStore) Save(state model.State) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	value, err := json.Marshal(state.Clone())
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	_, err = store.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		model.StateKey, value, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert state: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (store *SQLiteStore) Close() error {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.db.Close()
}
