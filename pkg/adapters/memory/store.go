package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/promptdrafter/pkg/domain"
)

// Store implements ports.LibraryStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[domain.Category]map[string]*domain.Record
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[domain.Category]map[string]*domain.Record),
	}
}

// Save persists the record in memory.
func (s *Store) Save(ctx context.Context, category domain.Category, record *domain.Record) error {
	if record.Name == "" {
		return fmt.Errorf("save %s: %w", category, domain.ErrNameRequired)
	}

	// Copy to ensure isolation, similar to serialization
	copied := record.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.data[category]
	if !ok {
		bucket = make(map[string]*domain.Record)
		s.data[category] = bucket
	}
	bucket[record.Name] = copied
	return nil
}

// Load retrieves the record from memory.
func (s *Store) Load(ctx context.Context, category domain.Category, name string) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.data[category][name]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	// Create a copy on read so caller can't mutate store state directly by pointer
	return record.Clone(), nil
}

// Delete removes the record.
func (s *Store) Delete(ctx context.Context, category domain.Category, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[category][name]; !ok {
		return domain.ErrRecordNotFound
	}
	delete(s.data[category], name)
	return nil
}

// List returns the sorted record names of a category.
func (s *Store) List(ctx context.Context, category domain.Category) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data[category]))
	for name := range s.data[category] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
