// Package watch turns filesystem changes in the file backend's category
// directories into debounced library events.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/promptdrafter/internal/logging"
	"github.com/aretw0/promptdrafter/pkg/debounce"
	"github.com/aretw0/promptdrafter/pkg/domain"
	"github.com/fsnotify/fsnotify"
)

// DefaultDelay coalesces the write-rename pair of an atomic save and bursts
// of edits made by hand.
const DefaultDelay = 250 * time.Millisecond

const eventBuffer = 16

// Watcher implements ports.Watchable over a set of category directories.
type Watcher struct {
	dirs   map[domain.Category]string
	delay  time.Duration
	logger *slog.Logger
}

// Option configures the Watcher.
type Option func(*Watcher)

// WithDelay sets the debounce delay per category.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) {
		w.delay = d
	}
}

// WithLogger configures a logger for the Watcher.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// New creates a Watcher for the given category directories.
func New(dirs map[domain.Category]string, opts ...Option) *Watcher {
	w := &Watcher{
		dirs:   dirs,
		delay:  DefaultDelay,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch starts watching. Missing directories are created. The returned
// channel receives one event per category after each burst of changes and is
// closed when ctx is done.
func (w *Watcher) Watch(ctx context.Context) (<-chan domain.LibraryEvent, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	byDir := make(map[string]domain.Category, len(w.dirs))
	for category, dir := range w.dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to ensure %s directory: %w", category, err)
		}
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		byDir[filepath.Clean(dir)] = category
	}

	out := make(chan domain.LibraryEvent, eventBuffer)
	debouncers := make(map[domain.Category]*debounce.Debouncer, len(byDir))
	for _, category := range byDir {
		debouncers[category] = debounce.New(w.delay)
	}

	go func() {
		defer close(out)
		defer func() {
			for _, d := range debouncers {
				d.Stop()
			}
		}()
		defer fsw.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				category, ok := byDir[filepath.Dir(filepath.Clean(event.Name))]
				if !ok || !relevant(event) {
					continue
				}
				w.logger.Debug("Library change detected", "path", event.Name, "op", event.Op.String())

				debouncers[category].Trigger(func() {
					e := domain.LibraryEvent{
						EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventLibraryChanged},
						Category:  category,
					}
					select {
					case out <- e:
					case <-ctx.Done():
					}
				})

			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				w.logger.Error("Watcher error", "err", err)
			}
		}
	}()

	w.logger.Info("Library watcher started", "dirs", len(byDir), "debounce", w.delay)
	return out, nil
}

// relevant keeps changes to record files and drops temp files of atomic saves.
func relevant(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if strings.HasSuffix(name, ".partial") || filepath.Ext(name) != ".json" {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
