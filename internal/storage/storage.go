package storage

import (
	"context"
	"errors"
)

var (
	// ErrCodeExists is returned by InsertIfAbsent when the short code is
	// already taken.
	ErrCodeExists = errors.New("short code already exists")

	// ErrNotFound is returned by Get when no mapping exists for the code.
	ErrNotFound = errors.New("short code not found")
)

// MappingStore is the persistence contract for short-code mappings.
// InsertIfAbsent is an atomic check-and-set: it never overwrites an
// existing code, and no two concurrent inserts for the same code can both
// succeed. Get observes the latest committed write.
type MappingStore interface {
	InsertIfAbsent(ctx context.Context, code, originalURL string) error

	Get(ctx context.Context, code string) (string, error)

	Ping(ctx context.Context) error
}
