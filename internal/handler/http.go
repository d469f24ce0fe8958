package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/vtarasov/url-shortener/internal/logger"
	"github.com/vtarasov/url-shortener/internal/middleware"
	"github.com/vtarasov/url-shortener/internal/service"
	"github.com/vtarasov/url-shortener/internal/storage"
)

const notFoundBody = "Short URL not found"

type URLService interface {
	Shorten(ctx context.Context, originalURL string) (service.Shortened, error)
	Resolve(ctx context.Context, code string) (string, error)
}

type DBPinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	urlService URLService
	dbPinger   DBPinger
}

func NewHandler(urlService URLService, dbPinger DBPinger) *Handler {
	return &Handler{
		urlService: urlService,
		dbPinger:   dbPinger,
	}
}

func (h *Handler) RegisterRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Use(logger.RequestLogger)

	r.Use(middleware.GzipReader)
	r.Use(middleware.GzipMiddleware)

	r.Post("/shorten", h.HandleShorten)
	r.Get("/lookup", h.handleLookup)
	r.Get("/ping", h.handlePing)
	r.Get("/{shortCode}", h.handleRedirect)

	return r
}

func (h *Handler) handleRedirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "shortCode")
	if code == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	originalURL, err := h.urlService.Resolve(r.Context(), code)
	if err != nil {
		writeResolveError(w, err)
		return
	}

	w.Header().Set("Location", originalURL)
	w.WriteHeader(http.StatusFound)
}

func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	originalURL, err := h.urlService.Resolve(r.Context(), code)
	if err != nil {
		writeResolveError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(originalURL))
}

func (h *Handler) handlePing(w http.ResponseWriter, r *http.Request) {
	if h.dbPinger == nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	err := h.dbPinger.Ping(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func writeResolveError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(notFoundBody))
		return
	}

	w.WriteHeader(http.StatusInternalServerError)
}
