package domain

import (
	"strings"

	"github.com/samber/lo"
)

// PortType is the data type given to every dynamically attached port.
const PortType = "STRING"

// PortEdit is the edit plan that brings a node's dynamic ports in line with
// the references required by its text. It is recomputed on every change and
// never persisted.
type PortEdit struct {
	// Namespace is the port name prefix the edit applies to.
	Namespace string `json:"namespace"`

	ToAdd    []string `json:"to_add,omitempty"`
	ToRemove []string `json:"to_remove,omitempty"`
}

// Reconcile computes the ports to add (required but absent) and the ports to
// remove (present but no longer required). Running it again after the edit
// has been applied yields an empty edit.
func Reconcile(current, required []string) PortEdit {
	toRemove, toAdd := lo.Difference(lo.Uniq(current), lo.Uniq(required))

	edit := PortEdit{}
	if len(toAdd) > 0 {
		edit.ToAdd = toAdd
	}
	if len(toRemove) > 0 {
		edit.ToRemove = toRemove
	}
	return edit
}

// DynamicPorts keeps only the port names that belong to the namespace.
func DynamicPorts(names []string, namespace string) []string {
	return lo.Filter(names, func(name string, _ int) bool {
		return strings.HasPrefix(name, namespace)
	})
}

// IsEmpty checks if the edit contains any actionable changes.
func (e PortEdit) IsEmpty() bool {
	return len(e.ToAdd) == 0 && len(e.ToRemove) == 0
}

// Apply returns names with the edit applied, preserving the order of the
// ports that survive and appending new ones at the end.
func (e PortEdit) Apply(names []string) []string {
	out := lo.Without(names, e.ToRemove...)
	for _, name := range e.ToAdd {
		if !lo.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}
