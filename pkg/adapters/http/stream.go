package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/promptdrafter/pkg/domain"
)

// StreamManager fans events out to SSE subscribers, keyed by node id or
// LibraryStream.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan string]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates an empty StreamManager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel under key. The returned func
// unregisters and closes it.
func (sm *StreamManager) Subscribe(key string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[key]; !ok {
		sm.subscribers[key] = make(map[chan string]struct{})
	}
	sm.subscribers[key][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		subs, ok := sm.subscribers[key]
		if !ok {
			return
		}
		if _, ok := subs[ch]; !ok {
			return
		}
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(sm.subscribers, key)
		}
	}
}

// Subscribers returns the number of channels registered under key.
func (sm *StreamManager) Subscribers(key string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[key])
}

// Broadcast sends msg to every subscriber of key. Slow clients miss messages
// rather than block the publisher.
func (sm *StreamManager) Broadcast(key string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[key] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE: Client buffer full, dropping message", "stream", key)
		}
	}
}

// Close ends every subscription under key.
func (sm *StreamManager) Close(key string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for ch := range sm.subscribers[key] {
		close(ch)
	}
	delete(sm.subscribers, key)
}

// PublishPort is an editor.Listener. A destroyed node's streams are closed
// after the final event.
func (sm *StreamManager) PublishPort(event domain.PortEvent) {
	sm.publish(event.NodeID, event)
	if event.Type == domain.EventNodeDestroyed {
		sm.Close(event.NodeID)
	}
}

// PublishLibrary is a library.Listener.
func (sm *StreamManager) PublishLibrary(event domain.LibraryEvent) {
	sm.publish(LibraryStream, event)
}

func (sm *StreamManager) publish(key string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		sm.logger.Error("Failed to encode event", "stream", key, "err", err)
		return
	}
	sm.Broadcast(key, string(data))
}

// stream serves an SSE connection for key until the client leaves or the
// stream is closed.
func (s *Server) stream(w http.ResponseWriter, r *http.Request, key string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SSE: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(key)
	defer cancel()
	s.logger.Debug("SSE: Client subscribed", "stream", key)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE: Client disconnected", "stream", key)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
