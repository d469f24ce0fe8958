package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/vtarasov/url-shortener/internal/storage"
)

const keyPrefix = "url:"

// Storage implements MappingStore on top of a Redis instance. SETNX gives
// the atomic insert-if-absent; mappings never expire.
type Storage struct {
	client *redis.Client
}

// NewStorage connects to Redis at the given address and verifies the
// connection.
func NewStorage(ctx context.Context, addr string) (*Storage, error) {
	if addr == "" {
		return nil, errors.New("redis address is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Storage{client: client}, nil
}

// NewStorageWithClient wraps an existing client. Used by tests.
func NewStorageWithClient(client *redis.Client) *Storage {
	return &Storage{client: client}
}

// InsertIfAbsent stores the mapping with SETNX so only the first insert
// for a code wins.
func (s *Storage) InsertIfAbsent(ctx context.Context, code, originalURL string) error {
	ok, err := s.client.SetNX(ctx, keyPrefix+code, originalURL, 0).Result()
	if err != nil {
		return fmt.Errorf("error inserting URL into redis: %w", err)
	}

	if !ok {
		return storage.ErrCodeExists
	}

	return nil
}

// Get retrieves the original URL for a given short code.
func (s *Storage) Get(ctx context.Context, code string) (string, error) {
	originalURL, err := s.client.Get(ctx, keyPrefix+code).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("error querying redis: %w", err)
	}

	return originalURL, nil
}

// Ping checks Redis connectivity.
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *Storage) Close() error {
	return s.client.Close()
}
