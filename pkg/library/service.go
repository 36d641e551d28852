package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/promptdrafter/internal/logging"
	"github.com/aretw0/promptdrafter/pkg/domain"
	"github.com/aretw0/promptdrafter/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

// ErrInvalidPayload is returned when a save payload cannot be decoded into a record.
var ErrInvalidPayload = errors.New("invalid record payload")

// DefaultLockTTL bounds how long a distributed record lock may be held.
const DefaultLockTTL = 30 * time.Second

// Listener is told about every successful write.
type Listener func(event domain.LibraryEvent)

// Observer is notified about each store operation, typically to record metrics.
type Observer interface {
	StoreOp(op string, category domain.Category, err error, took time.Duration)
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Service orchestrates access to the library store.
// It uses reference counting to garbage collect unused record locks.
type Service struct {
	store ports.LibraryStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker    ports.DistributedLocker
	lockTTL   time.Duration
	logger    *slog.Logger
	listeners []Listener
	observer  Observer
	now       func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(s *Service) {
		s.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithListener registers a listener for library changes.
func WithListener(l Listener) Option {
	return func(s *Service) {
		s.listeners = append(s.listeners, l)
	}
}

// WithObserver registers an observer for store operations.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		s.observer = o
	}
}

// WithClock replaces time.Now for the created timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a Service over the given store.
func NewService(store ports.LibraryStore, opts ...Option) *Service {
	s := &Service{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying store.
func (s *Service) Store() ports.LibraryStore {
	return s.store
}

func lockKey(category domain.Category, name string) string {
	return string(category) + ":" + name
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(key) after unlocking.
func (s *Service) acquire(key string) *lockEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.locks[key]
	if !exists {
		entry = &lockEntry{}
		s.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (s *Service) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.locks[key]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(s.locks, key)
	}
}

// WithLock executes fn while holding the lock for the record.
func (s *Service) WithLock(ctx context.Context, category domain.Category, name string, fn func(context.Context) error) error {
	key := lockKey(category, name)
	entry := s.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		s.release(key)
	}()

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, key, s.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				s.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"key", key,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.ErrNameRequired
	}
	return name, nil
}

// Save validates, stamps and persists a record. The record's type is forced to
// match the category; wildcard values are parsed from the raw text.
func (s *Service) Save(ctx context.Context, category domain.Category, record *domain.Record) (*domain.Record, error) {
	if category.RecordType() == "" {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}
	name, err := normalizeName(record.Name)
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", category, err)
	}

	rec := record.Clone()
	rec.Name = name
	rec.Type = category.RecordType()
	rec.Created = s.now().UTC()
	switch category {
	case domain.CategoryDual:
		rec.Prompt, rec.RawText, rec.Values = "", "", nil
	case domain.CategorySingle:
		rec.Positive, rec.Negative, rec.RawText, rec.Values = "", "", "", nil
	case domain.CategoryWildcard:
		rec.Positive, rec.Negative, rec.Prompt = "", "", ""
		rec.Values = domain.ParseValueList(rec.RawText)
	}

	err = s.observe("save", category, func() error {
		return s.WithLock(ctx, category, name, func(ctx context.Context) error {
			return s.store.Save(ctx, category, rec)
		})
	})
	if err != nil {
		s.logger.Error("Failed to save record", "category", category, "name", name, "err", err)
		return nil, err
	}

	s.logger.Info("Record saved", "category", category, "name", name)
	s.notify(category)
	return rec, nil
}

// SaveDual saves a positive/negative prompt pair.
func (s *Service) SaveDual(ctx context.Context, name, positive, negative string) (*domain.Record, error) {
	return s.Save(ctx, domain.CategoryDual, &domain.Record{Name: name, Positive: positive, Negative: negative})
}

// SaveSingle saves a single prompt.
func (s *Service) SaveSingle(ctx context.Context, name, prompt string) (*domain.Record, error) {
	return s.Save(ctx, domain.CategorySingle, &domain.Record{Name: name, Prompt: prompt})
}

// SaveWildcard saves a wildcard list; its values are parsed from rawText.
func (s *Service) SaveWildcard(ctx context.Context, name, rawText string) (*domain.Record, error) {
	return s.Save(ctx, domain.CategoryWildcard, &domain.Record{Name: name, RawText: rawText})
}

// SaveFromMap decodes a loosely typed payload (HTTP body, MCP arguments) into
// a record and saves it. Unknown keys are rejected.
func (s *Service) SaveFromMap(ctx context.Context, category domain.Category, payload map[string]interface{}) (*domain.Record, error) {
	var rec domain.Record
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &rec,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(payload); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, category, err)
	}
	return s.Save(ctx, category, &rec)
}

// Load retrieves a record.
func (s *Service) Load(ctx context.Context, category domain.Category, name string) (*domain.Record, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	var rec *domain.Record
	err = s.observe("load", category, func() error {
		var err error
		rec, err = s.store.Load(ctx, category, name)
		return err
	})
	return rec, err
}

// Delete removes a record.
func (s *Service) Delete(ctx context.Context, category domain.Category, name string) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}
	err = s.observe("delete", category, func() error {
		return s.WithLock(ctx, category, name, func(ctx context.Context) error {
			return s.store.Delete(ctx, category, name)
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("Record deleted", "category", category, "name", name)
	s.notify(category)
	return nil
}

// List returns the names saved in a category, sorted.
func (s *Service) List(ctx context.Context, category domain.Category) ([]string, error) {
	var names []string
	err := s.observe("list", category, func() error {
		var err error
		names, err = s.store.List(ctx, category)
		return err
	})
	return names, err
}

func (s *Service) observe(op string, category domain.Category, fn func() error) error {
	start := time.Now()
	err := fn()
	if s.observer != nil {
		s.observer.StoreOp(op, category, err, time.Since(start))
	}
	return err
}

func (s *Service) notify(category domain.Category) {
	event := domain.LibraryEvent{
		EventBase: domain.EventBase{Timestamp: s.now(), Type: domain.EventLibraryChanged},
		Category:  category,
	}
	for _, l := range s.listeners {
		l(event)
	}
}
