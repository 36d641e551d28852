package ports

import (
	"context"

	"github.com/aretw0/promptdrafter/pkg/domain"
)

// Watchable defines an interface for stores that can notify about backend changes.
// It lets clients refresh their saved-record dropdowns without polling.
type Watchable interface {
	// Watch returns a channel that receives an event whenever records of a category change.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan domain.LibraryEvent, error)
}
