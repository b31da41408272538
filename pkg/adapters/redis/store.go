package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/fangraph/pkg/config"
	"github.com/aretw0/fangraph/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by this package.
const DefaultPrefix = "fangraph:config:"

// Store implements ports.ConfigStore using Redis.
// Each config is a JSON document; a sorted set indexes the names.
type Store struct {
	client *backend.Client
	prefix string
}

type Option func(*Store)

// WithPrefix sets the key prefix for configs.
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
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client returns the underlying client, e.g. to share it with a Locker.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(name string) string {
	return s.prefix + name
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the config to Redis.
func (s *Store) Save(ctx context.Context, name string, cfg *config.Config) error {
	if name == "" {
		return fmt.Errorf("config name cannot be empty")
	}
	data, err := config.Encode(cfg, config.FormatJSON)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(name), data, 0)
	// Equal scores keep the index in lexicographic order
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: 0, Member: name})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the config from Redis.
func (s *Store) Load(ctx context.Context, name string) (*config.Config, error) {
	val, err := s.client.Get(ctx, s.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	cfg, err := config.Decode(val, config.FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("config %q: %w", name, err)
	}
	return cfg, nil
}

// Delete removes the config.
func (s *Store) Delete(ctx context.Context, name string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(name))
	pipe.ZRem(ctx, s.indexKey(), name)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns the saved config names, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	names, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list configs: %w", err)
	}
	return names, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
