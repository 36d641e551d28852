package memory

import (
	"sync"

	"github.com/aretw0/promptdrafter/pkg/domain"
)

// Port is a connection point attached to a node.
type Port struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Ports implements ports.PortStore for nodes that live inside this process.
// Static ports (prefix/suffix inputs) are kept in front of the dynamic ones.
type Ports struct {
	mu    sync.Mutex
	ports []Port
	dirty int
	size  [2]float64
}

// NewPorts creates a port store seeded with static ports.
func NewPorts(static ...string) *Ports {
	p := &Ports{size: [2]float64{400, 200}}
	for _, name := range static {
		p.ports = append(p.ports, Port{Name: name, Type: domain.PortType})
	}
	return p
}

// CurrentNames returns every port name in attachment order.
func (p *Ports) CurrentNames() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, len(p.ports))
	for i, port := range p.ports {
		names[i] = port.Name
	}
	return names
}

// Apply detaches removed ports and attaches new ones. The node size is left
// untouched.
func (p *Ports) Apply(edit domain.PortEdit) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(edit.ToRemove) > 0 {
		drop := make(map[string]bool, len(edit.ToRemove))
		for _, name := range edit.ToRemove {
			drop[name] = true
		}
		kept := p.ports[:0]
		for _, port := range p.ports {
			if !drop[port.Name] {
				kept = append(kept, port)
			}
		}
		p.ports = kept
	}

	for _, name := range edit.ToAdd {
		if p.indexOf(name) >= 0 {
			continue
		}
		p.ports = append(p.ports, Port{Name: name, Type: domain.PortType})
	}
	return nil
}

// MarkDirty records a redraw request.
func (p *Ports) MarkDirty() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dirty++
}

// DirtyCount returns how many redraws have been requested.
func (p *Ports) DirtyCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dirty
}

// Size returns the node's visual size.
func (p *Ports) Size() [2]float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.size
}

// Snapshot returns a copy of the ports.
func (p *Ports) Snapshot() []Port {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Port(nil), p.ports...)
}

func (p *Ports) indexOf(name string) int {
	for i, port := range p.ports {
		if port.Name == name {
			return i
		}
	}
	return -1
}
