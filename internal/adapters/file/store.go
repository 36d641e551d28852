package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/promptdrafter/pkg/domain"
)

// Store implements ports.LibraryStore using the local filesystem.
// Each category lives in its own directory and every record is a JSON file
// named after its sanitized name.
type Store struct {
	BasePath string
	Paths    map[domain.Category]string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to "saved". Category directories default
// to <basePath>/<category>; paths overrides them, and relative overrides are
// resolved against basePath.
func New(basePath string, paths map[domain.Category]string) *Store {
	if basePath == "" {
		basePath = "saved"
	}
	s := &Store{BasePath: basePath, Paths: make(map[domain.Category]string)}
	for _, c := range domain.Categories {
		dir := filepath.Join(basePath, string(c))
		if p, ok := paths[c]; ok && p != "" {
			dir = p
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(basePath, dir)
			}
		}
		s.Paths[c] = dir
	}
	return s
}

// Dir returns the directory that holds a category.
func (s *Store) Dir(category domain.Category) (string, error) {
	dir, ok := s.Paths[category]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}
	return dir, nil
}

func (s *Store) path(category domain.Category, name string) (string, error) {
	dir, err := s.Dir(category)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SanitizeFilename(name)+".json"), nil
}

// Save persists the record to a JSON file atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, category domain.Category, record *domain.Record) error {
	if record.Name == "" {
		return fmt.Errorf("save %s: %w", category, domain.ErrNameRequired)
	}

	destPath, err := s.path(category, record.Name)
	if err != nil {
		return err
	}
	dir := filepath.Dir(destPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure %s directory: %w", category, err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	// Same directory keeps the rename on one filesystem.
	tmpFile, err := os.CreateTemp(dir, "tmp-*.json.partial")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing record for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file into place: %w", err)
	}
	return nil
}

// Load retrieves a record from its JSON file.
func (s *Store) Load(ctx context.Context, category domain.Category, name string) (*domain.Record, error) {
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	filePath, err := s.path(category, name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}

	var record domain.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	if record.Name == "" {
		record.Name = name
	}
	if record.Type == "" {
		record.Type = category.RecordType()
	}
	return &record, nil
}

// Delete removes the record file.
func (s *Store) Delete(ctx context.Context, category domain.Category, name string) error {
	if name == "" {
		return domain.ErrNameRequired
	}
	filePath, err := s.path(category, name)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.ErrRecordNotFound
		}
		return fmt.Errorf("failed to delete record file: %w", err)
	}
	return nil
}

// List returns the record names of a category, sorted.
// Names are read from the files; unreadable files fall back to their file name.
func (s *Store) List(ctx context.Context, category domain.Category) ([]string, error) {
	dir, err := s.Dir(category)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", category, err)
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		fallback := strings.TrimSuffix(entry.Name(), ".json")

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			names = append(names, fallback)
			continue
		}
		var header struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(data, &header); err != nil || header.Name == "" {
			names = append(names, fallback)
			continue
		}
		names = append(names, header.Name)
	}

	sort.Strings(names)
	return names, nil
}

// SanitizeFilename turns a record name into a safe file name.
func SanitizeFilename(name string) string {
	result := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`<>:"/\|?*`, r) {
			return '_'
		}
		return r
	}, name)

	result = strings.Trim(result, " .")
	if result == "" {
		result = "unnamed"
	}
	return result
}
