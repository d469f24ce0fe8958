package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vtarasov/url-shortener/internal/cache"
	"github.com/vtarasov/url-shortener/internal/config"
	"github.com/vtarasov/url-shortener/internal/handler"
	"github.com/vtarasov/url-shortener/internal/service"
	"github.com/vtarasov/url-shortener/internal/storage"
	"github.com/vtarasov/url-shortener/internal/storage/file"
	"github.com/vtarasov/url-shortener/internal/storage/memory"
	"github.com/vtarasov/url-shortener/internal/storage/postgres"
	"github.com/vtarasov/url-shortener/internal/storage/redis"
	"github.com/vtarasov/url-shortener/internal/worker"
)

const (
	shutdownTimeout = 10 * time.Second
	workerTimeout   = 5 * time.Second
)

type App struct {
	config       *config.Config
	handler      http.Handler
	statsWorker  *worker.StatsWorker
	mappingCache *cache.MappingCache
	closeStore   func()
}

// NewApp wires storage, cache, service and handlers together. The storage
// backend is selected from the configuration: postgres when a DSN is set,
// redis when an address is set, the file journal when a path is set,
// otherwise in-memory.
func NewApp(cfg *config.Config) (*App, error) {
	store, closeStore, err := newStore(cfg)
	if err != nil {
		return nil, err
	}

	mappingCache, err := cache.New(10_000)
	if err != nil {
		return nil, err
	}

	statsWorker := worker.NewStatsWorker(worker.DefaultConfig())
	statsWorker.Start()

	urlService := service.NewURLService(store, cfg.BaseURL, service.Options{
		CodeLength:   cfg.CodeLength,
		StoreTimeout: cfg.StoreTimeout,
		Cache:        mappingCache,
		Stats:        statsWorker,
	})

	httpHandler := handler.NewHandler(urlService, store)

	return &App{
		config:       cfg,
		handler:      httpHandler.RegisterRoutes(),
		statsWorker:  statsWorker,
		mappingCache: mappingCache,
		closeStore:   closeStore,
	}, nil
}

func newStore(cfg *config.Config) (storage.MappingStore, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	switch {
	case cfg.DatabaseDSN != "":
		store, err := postgres.NewStorage(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Msg("Using postgres storage")
		return store, store.Close, nil

	case cfg.RedisAddr != "":
		store, err := redis.NewStorage(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("Using redis storage")
		return store, func() { store.Close() }, nil

	case cfg.FileStoragePath != "":
		store, err := file.NewStorage(cfg.FileStoragePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", cfg.FileStoragePath).Msg("Using file storage")
		return store, nil, nil

	default:
		log.Info().Msg("Using in-memory storage")
		return memory.NewStorage(), nil, nil
	}
}

// Run starts the HTTP server and blocks until shutdown completes.
func (a *App) Run() error {
	server := &http.Server{
		Addr:         a.config.ServerAddress,
		Handler:      a.handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info().Str("address", a.config.ServerAddress).Str("baseURL", a.config.BaseURL).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		a.close()
		return err
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)

	a.close()
	return err
}

func (a *App) close() {
	if err := a.statsWorker.Shutdown(workerTimeout); err != nil {
		log.Warn().Err(err).Msg("Stats worker shutdown timed out")
	}

	a.mappingCache.Close()

	if a.closeStore != nil {
		a.closeStore()
	}
}
