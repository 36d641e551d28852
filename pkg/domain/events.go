package domain

import (
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventPortsReconciled EventType = "ports_reconciled"
	EventNodeDestroyed   EventType = "node_destroyed"
	EventLibraryChanged  EventType = "library_changed"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// PortEvent reports an edit that was applied to a node's dynamic ports.
type PortEvent struct {
	EventBase
	NodeID string   `json:"node_id"`
	Edit   PortEdit `json:"edit"`
	Ports  []string `json:"ports"`
}

// LibraryEvent reports that saved records of a category changed on disk.
type LibraryEvent struct {
	EventBase
	Category Category `json:"category"`
}
