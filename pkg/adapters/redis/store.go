package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aretw0/promptdrafter/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "promptdrafter:"

// Store implements ports.LibraryStore using Redis.
// Records are JSON strings under <prefix><category>:<name>; each category keeps
// a ZSET index scored by expiry so List can prune lazily.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for records.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for records.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Client exposes the underlying client so a Locker can share it.
func (s *Store) Client() *backend.Client {
	return s.client
}

// Prefix returns the key prefix in use.
func (s *Store) Prefix() string {
	return s.prefix
}

func (s *Store) key(category domain.Category, name string) string {
	return s.prefix + string(category) + ":" + name
}

func (s *Store) indexKey(category domain.Category) string {
	return s.prefix + string(category) + ":index"
}

func checkCategory(category domain.Category) error {
	for _, c := range domain.Categories {
		if c == category {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
}

// Save persists the record to Redis.
func (s *Store) Save(ctx context.Context, category domain.Category, record *domain.Record) error {
	if err := checkCategory(category); err != nil {
		return err
	}
	if record.Name == "" {
		return fmt.Errorf("save %s: %w", category, domain.ErrNameRequired)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	pipe := s.client.Pipeline()

	// Use 0 for no expiration if ttl is not set.
	pipe.Set(ctx, s.key(category, record.Name), data, s.ttl)

	// Score = Now + TTL. If TTL = 0, Score = +Inf (approx).
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}

	pipe.ZAdd(ctx, s.indexKey(category), backend.Z{
		Score:  score,
		Member: record.Name,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}

	return nil
}

// Load retrieves the record from Redis.
func (s *Store) Load(ctx context.Context, category domain.Category, name string) (*domain.Record, error) {
	if err := checkCategory(category); err != nil {
		return nil, err
	}
	val, err := s.client.Get(ctx, s.key(category, name)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var record domain.Record
	if err := json.Unmarshal([]byte(val), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}

	return &record, nil
}

// Delete removes the record and its index entry.
func (s *Store) Delete(ctx context.Context, category domain.Category, name string) error {
	if err := checkCategory(category); err != nil {
		return err
	}
	pipe := s.client.Pipeline()

	del := pipe.Del(ctx, s.key(category, name))
	pipe.ZRem(ctx, s.indexKey(category), name)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	if del.Val() == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

// List returns the record names of a category, sorted.
// Expired entries are pruned from the index first.
func (s *Store) List(ctx context.Context, category domain.Category) ([]string, error) {
	if err := checkCategory(category); err != nil {
		return nil, err
	}
	now := float64(time.Now().Unix())

	// If everything is infinite, this removes nothing.
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(category), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired records: %w", err)
	}

	names, err := s.client.ZRange(ctx, s.indexKey(category), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	sort.Strings(names)
	return names, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
