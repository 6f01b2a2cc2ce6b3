package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/openprobity/crosswalk/pkg/domain"
	"github.com/openprobity/crosswalk/pkg/schema"
)

// Store implements ports.DefinitionStore using Redis. Definitions are
// stored as JSON values keyed by kind and name, with a ZSET index per
// kind for listing.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for stored definitions.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for definitions.
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
		prefix: "crosswalk:definition:",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) key(kind, name string) string {
	return s.prefix + kind + ":" + name
}

func (s *Store) indexKey(kind string) string {
	return s.prefix + kind + ":index"
}

func (s *Store) save(ctx context.Context, kind, name string, doc any) error {
	if name == "" {
		return fmt.Errorf("%s name cannot be empty", kind)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", kind, err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(kind, name), data, s.ttl)

	// Index score is the expiry time; no-expiry entries get a far-future
	// score so lazy pruning leaves them alone.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}

	pipe.ZAdd(ctx, s.indexKey(kind), backend.Z{
		Score:  score,
		Member: name,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save %s to redis: %w", kind, err)
	}

	return nil
}

func (s *Store) load(ctx context.Context, kind, name string, doc any) error {
	val, err := s.client.Get(ctx, s.key(kind, name)).Result()
	if err != nil {
		if err == backend.Nil {
			return domain.ErrDefinitionNotFound
		}
		return fmt.Errorf("failed to get %s from redis: %w", kind, err)
	}

	if err := json.Unmarshal([]byte(val), doc); err != nil {
		return fmt.Errorf("failed to unmarshal %s %q: %w", kind, name, err)
	}
	return nil
}

// SaveSchema persists a schema definition.
func (s *Store) SaveSchema(ctx context.Context, sc *schema.Schema) error {
	return s.save(ctx, "schema", sc.Name, sc)
}

// LoadSchema retrieves a schema definition by name.
func (s *Store) LoadSchema(ctx context.Context, name string) (*schema.Schema, error) {
	var sc schema.Schema
	if err := s.load(ctx, "schema", name, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// SaveCrosswalk persists a crosswalk definition.
func (s *Store) SaveCrosswalk(ctx context.Context, c *domain.Crosswalk) error {
	return s.save(ctx, "crosswalk", c.Name, c)
}

// LoadCrosswalk retrieves a crosswalk definition by name.
func (s *Store) LoadCrosswalk(ctx context.Context, name string) (*domain.Crosswalk, error) {
	var c domain.Crosswalk
	if err := s.load(ctx, "crosswalk", name, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// SaveTransform persists a transform audit record.
func (s *Store) SaveTransform(ctx context.Context, t *domain.Transform) error {
	return s.save(ctx, "transform", t.Name, t)
}

// LoadTransform retrieves a transform audit record by name.
func (s *Store) LoadTransform(ctx context.Context, name string) (*domain.Transform, error) {
	var t domain.Transform
	if err := s.load(ctx, "transform", name, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns stored definition names of one kind, pruning expired
// index entries lazily.
func (s *Store) List(ctx context.Context, kind string) ([]string, error) {
	now := float64(time.Now().Unix())

	err := s.client.ZRemRangeByScore(ctx, s.indexKey(kind), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired %s entries: %w", kind, err)
	}

	names, err := s.client.ZRange(ctx, s.indexKey(kind), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s definitions: %w", kind, err)
	}

	return names, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
