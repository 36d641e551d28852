package editor

import (
	"fmt"

	"github.com/aretw0/promptdrafter/pkg/domain"
	"github.com/aretw0/promptdrafter/pkg/ports"
)

// Sync brings the store's dynamic ports in the namespace in line with the
// wildcard references found in texts and returns the applied edit.
//
// A nil store is a programming error and panics.
func Sync(store ports.PortStore, namespace string, texts ...string) (domain.PortEdit, error) {
	return SyncNames(store, namespace, domain.ExtractWildcards(texts...))
}

// SyncNames is Sync with the required port names already computed.
func SyncNames(store ports.PortStore, namespace string, required []string) (domain.PortEdit, error) {
	if store == nil {
		panic("editor: reconcile against a nil port store")
	}

	edit := domain.Reconcile(domain.DynamicPorts(store.CurrentNames(), namespace), required)
	edit.Namespace = namespace
	if edit.IsEmpty() {
		return edit, nil
	}

	if err := store.Apply(edit); err != nil {
		return edit, fmt.Errorf("failed to apply port edit: %w", err)
	}
	if r, ok := store.(ports.Redrawer); ok {
		r.MarkDirty()
	}
	return edit, nil
}
