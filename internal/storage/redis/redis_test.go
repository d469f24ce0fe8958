package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/vtarasov/url-shortener/internal/storage"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	mr := miniredis.RunT(t)

	client := goredis.NewClient(&goredis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewStorageWithClient(client)
}

func TestStorage_InsertIfAbsent(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if err := s.InsertIfAbsent(ctx, "abc123", "https://example.com"); err != nil {
		t.Fatalf("Storage.InsertIfAbsent() error = %v", err)
	}

	err := s.InsertIfAbsent(ctx, "abc123", "https://other.example.com")
	if !errors.Is(err, storage.ErrCodeExists) {
		t.Errorf("Storage.InsertIfAbsent() error = %v, want %v", err, storage.ErrCodeExists)
	}

	originalURL, err := s.Get(ctx, "abc123")
	if err != nil {
		t.Fatalf("Storage.Get() error = %v", err)
	}

	if originalURL != "https://example.com" {
		t.Errorf("Storage.Get() = %v, conflicting insert overwrote the mapping", originalURL)
	}
}

func TestStorage_Get_NotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Get(context.Background(), "nonexistent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Storage.Get() error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestStorage_Ping(t *testing.T) {
	s := newTestStorage(t)

	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Storage.Ping() error = %v", err)
	}
}
