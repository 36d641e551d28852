package ports

import (
	"context"

	"github.com/aretw0/promptdrafter/pkg/domain"
)

// LibraryStore defines the interface for persisting saved prompts and wildcard lists.
// Records are addressed by category and user-supplied name.
type LibraryStore interface {
	// Save persists the record under its name, replacing any previous version.
	Save(ctx context.Context, category domain.Category, record *domain.Record) error

	// Load retrieves a record by name.
	// Returns domain.ErrRecordNotFound if it does not exist.
	Load(ctx context.Context, category domain.Category, name string) (*domain.Record, error)

	// Delete removes a record.
	// Returns domain.ErrRecordNotFound if it does not exist.
	Delete(ctx context.Context, category domain.Category, name string) error

	// List returns the names of all records in the category, sorted.
	List(ctx context.Context, category domain.Category) ([]string, error)
}
