package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vtarasov/url-shortener/internal/generator"
	"github.com/vtarasov/url-shortener/internal/storage"
	"github.com/vtarasov/url-shortener/internal/worker"
)

var (
	// ErrInvalidURL is returned when the submitted URL is not an absolute
	// http(s) URL. Nothing is persisted in that case.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrCollisionExhausted is returned when no free short code was found
	// within the retry bound. It signals an undersized code space, not a
	// caller mistake.
	ErrCollisionExhausted = errors.New("collision retry limit exhausted")
)

const (
	defaultCodeLength   = 6
	defaultMaxAttempts  = 5
	defaultStoreTimeout = 3 * time.Second
)

// ResolveCache keeps resolved mappings close to the request path.
type ResolveCache interface {
	Get(code string) (string, bool)
	Set(code, originalURL string)
}

// StatsSink receives operational events; submissions must not block.
type StatsSink interface {
	Submit(event worker.Event) bool
}

// Options tune the service. Zero values fall back to defaults; Cache and
// Stats are optional.
type Options struct {
	CodeLength   int
	MaxAttempts  int
	StoreTimeout time.Duration
	Cache        ResolveCache
	Stats        StatsSink
}

// Shortened is the result of a successful shorten call.
type Shortened struct {
	ShortCode string
	ShortURL  string
}

// URLService provides business logic for creating and resolving short URLs.
type URLService struct {
	storage      storage.MappingStore
	baseURL      string
	codeLength   int
	maxAttempts  int
	storeTimeout time.Duration
	cache        ResolveCache
	stats        StatsSink
}

// NewURLService constructs a URLService with the given storage and base URL.
func NewURLService(store storage.MappingStore, baseURL string, opts Options) *URLService {
	if opts.CodeLength <= 0 {
		opts.CodeLength = defaultCodeLength
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = defaultStoreTimeout
	}

	return &URLService{
		storage:      store,
		baseURL:      baseURL,
		codeLength:   opts.CodeLength,
		maxAttempts:  opts.MaxAttempts,
		storeTimeout: opts.StoreTimeout,
		cache:        opts.Cache,
		stats:        opts.Stats,
	}
}

// Shorten validates the URL, generates a free short code and persists the
// mapping. Collisions are retried with fresh codes up to the bound.
func (s *URLService) Shorten(ctx context.Context, originalURL string) (Shortened, error) {
	if err := validateURL(originalURL); err != nil {
		return Shortened{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		code, err := generator.GenerateCode(s.codeLength)
		if err != nil {
			return Shortened{}, fmt.Errorf("error generating code: %w", err)
		}

		err = s.storage.InsertIfAbsent(ctx, code, originalURL)
		if errors.Is(err, storage.ErrCodeExists) {
			s.submit(worker.EventCollision)
			continue
		}
		if err != nil {
			return Shortened{}, fmt.Errorf("error saving mapping: %w", err)
		}

		if s.cache != nil {
			s.cache.Set(code, originalURL)
		}
		s.submit(worker.EventShortened)

		shortURL, err := url.JoinPath(s.baseURL, code)
		if err != nil {
			return Shortened{}, fmt.Errorf("error composing short URL: %w", err)
		}

		return Shortened{ShortCode: code, ShortURL: shortURL}, nil
	}

	log.Error().
		Int("attempts", s.maxAttempts).
		Int("codeLength", s.codeLength).
		Msg("Could not find a free short code")

	return Shortened{}, ErrCollisionExhausted
}

// Resolve returns the original URL for a short code, or
// storage.ErrNotFound. Reads never mutate a mapping.
func (s *URLService) Resolve(ctx context.Context, code string) (string, error) {
	if s.cache != nil {
		if originalURL, found := s.cache.Get(code); found {
			s.submit(worker.EventResolved)
			return originalURL, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	originalURL, err := s.storage.Get(ctx, code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.submit(worker.EventNotFound)
		}
		return "", err
	}

	if s.cache != nil {
		s.cache.Set(code, originalURL)
	}
	s.submit(worker.EventResolved)

	return originalURL, nil
}

func (s *URLService) submit(event worker.Event) {
	if s.stats != nil {
		s.stats.Submit(event)
	}
}

func validateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ErrInvalidURL
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrInvalidURL
	}

	if parsed.Host == "" {
		return ErrInvalidURL
	}

	return nil
}
