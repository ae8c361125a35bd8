// Package redis stores diagram layouts in Redis, for deployments where several
// editor instances share one set of layouts.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	backend "github.com/redis/go-redis/v9"

	"threatforge/internal/domain"
	"threatforge/internal/repository"
)

// DefaultPrefix namespaces every key written by the store
const DefaultPrefix = "threatforge:layout:"

// Store implements repository.LayoutStore using Redis
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

var (
	_ repository.LayoutStore  = (*Store)(nil)
	_ repository.LayoutLister = (*Store)(nil)
)

type Option func(*Store)

// WithTTL sets the expiration for saved layouts
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for saved layouts
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// New creates a new Redis layout store
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis layout store from an existing client
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

func (s *Store) key(k repository.LayoutKey) string {
	return s.prefix + k.ID()
}

func (s *Store) indexKey(modelPath string) string {
	return s.prefix + "index:" + modelPath
}

// Ping checks connectivity
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to reach redis: %w", err)
	}
	return nil
}

// SaveLayout persists the layout and records its diagram in the model's index
func (s *Store) SaveLayout(ctx context.Context, key repository.LayoutKey, layout *domain.DiagramLayout) error {
	data, err := json.Marshal(layout)
	if err != nil {
		return fmt.Errorf("failed to marshal layout: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(key), data, s.ttl)
	pipe.SAdd(ctx, s.indexKey(key.ModelPath), key.DiagramID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}

	return nil
}

// LoadLayout retrieves the layout saved for key
func (s *Store) LoadLayout(ctx context.Context, key repository.LayoutKey) (*domain.DiagramLayout, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrLayoutNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var layout domain.DiagramLayout
	if err := json.Unmarshal(val, &layout); err != nil {
		return nil, fmt.Errorf("failed to unmarshal layout: %w", err)
	}
	if layout.Nodes == nil {
		layout.Nodes = make([]domain.NodePosition, 0)
	}

	return &layout, nil
}

// DeleteLayout removes the layout saved for key
func (s *Store) DeleteLayout(ctx context.Context, key repository.LayoutKey) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(key))
	pipe.SRem(ctx, s.indexKey(key.ModelPath), key.DiagramID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// ListLayouts returns the sorted diagram ids with a saved layout for a model path.
// Index entries whose layout expired are pruned.
func (s *Store) ListLayouts(ctx context.Context, modelPath string) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey(modelPath)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list layouts: %w", err)
	}

	live := make([]string, 0, len(ids))
	for _, id := range ids {
		k := repository.LayoutKey{ModelPath: modelPath, DiagramID: id}
		n, err := s.client.Exists(ctx, s.key(k)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to check layout %s: %w", id, err)
		}
		if n == 0 {
			s.client.SRem(ctx, s.indexKey(modelPath), id)
			continue
		}
		live = append(live, id)
	}
	sort.Strings(live)
	return live, nil
}

// Close closes the redis client
func (s *Store) Close() error {
	return s.client.Close()
}
