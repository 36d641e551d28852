package ports

import "github.com/aretw0/promptdrafter/pkg/domain"

// PortStore is the host side of a node's dynamic ports.
// The reconciler reads the current names and hands back an edit plan; it never
// keeps ports itself.
type PortStore interface {
	// CurrentNames returns the names of every port on the node, dynamic or not.
	CurrentNames() []string

	// Apply detaches the ports in edit.ToRemove and attaches edit.ToAdd with
	// type domain.PortType. It must not change the node's size.
	Apply(edit domain.PortEdit) error
}

// Redrawer is implemented by port stores that need an explicit dirty signal
// after their ports change.
type Redrawer interface {
	MarkDirty()
}
