// Package sqlite provides a LibraryStore backed by a single SQLite file,
// using the pure Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/promptdrafter/pkg/domain"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store implements ports.LibraryStore using SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// New opens (or creates) the database at path and runs migrations.
func New(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %q: %w", pragma, err)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// Migrate creates the schema if needed.
func (s *Store) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS records (
			category TEXT NOT NULL,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			data TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (category, name)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_updated_at ON records(category, updated_at)`,
	}
	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func checkCategory(category domain.Category) error {
	for _, c := range domain.Categories {
		if c == category {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
}

// Save upserts a record.
func (s *Store) Save(ctx context.Context, category domain.Category, record *domain.Record) error {
	if err := checkCategory(category); err != nil {
		return err
	}
	if record.Name == "" {
		return fmt.Errorf("save %s: %w", category, domain.ErrNameRequired)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	now := time.Now().UTC()
	created := record.Created
	if created.IsZero() {
		created = now
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (category, name, type, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(category, name) DO UPDATE SET
			type = excluded.type,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		string(category), record.Name, record.Type, string(data), created, now)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// Load retrieves a record.
func (s *Store) Load(ctx context.Context, category domain.Category, name string) (*domain.Record, error) {
	if err := checkCategory(category); err != nil {
		return nil, err
	}

	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM records WHERE category = ? AND name = ?`,
		string(category), name).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to load record: %w", err)
	}

	var record domain.Record
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &record, nil
}

// Delete removes a record.
func (s *Store) Delete(ctx context.Context, category domain.Category, name string) error {
	if err := checkCategory(category); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE category = ? AND name = ?`,
		string(category), name)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if n == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

// List returns the record names of a category, sorted.
func (s *Store) List(ctx context.Context, category domain.Category) ([]string, error) {
	if err := checkCategory(category); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM records WHERE category = ? ORDER BY name`,
		string(category))
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan record name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
