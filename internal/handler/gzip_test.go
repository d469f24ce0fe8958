package handler

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/vtarasov/url-shortener/internal/middleware"
	"github.com/vtarasov/url-shortener/internal/service"
)

func TestGzipCompression(t *testing.T) {
	mockService := &mockURLService{
		shortenFunc: func(ctx context.Context, originalURL string) (service.Shortened, error) {
			return service.Shortened{
				ShortCode: "abc123",
				ShortURL:  "http://localhost:8080/abc123",
			}, nil
		},
	}

	h := NewHandler(mockService, nil)

	r := chi.NewRouter()
	r.Use(middleware.GzipReader)
	r.Use(middleware.GzipMiddleware)
	r.Post("/shorten", h.HandleShorten)

	reqBodyBytes, _ := json.Marshal(ShortenRequest{URL: "https://example.com"})

	req := httptest.NewRequest(http.MethodPost, "/shorten", bytes.NewBuffer(reqBodyBytes))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")

	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want %v", rec.Code, http.StatusOK)
	}

	if enc := rec.Header().Get("Content-Encoding"); enc != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", enc)
	}

	gz, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip.NewReader() error = %v", err)
	}
	defer gz.Close()

	body, err := io.ReadAll(gz)
	if err != nil {
		t.Fatalf("failed to read gzipped body: %v", err)
	}

	var response ShortenResponse
	if err := json.Unmarshal(body, &response); err != nil {
		t.Fatalf("invalid JSON in gzipped body: %v", err)
	}

	if response.ShortCode != "abc123" {
		t.Errorf("short_code = %v, want abc123", response.ShortCode)
	}
}

func TestGzipRequestBody(t *testing.T) {
	var received string
	mockService := &mockURLService{
		shortenFunc: func(ctx context.Context, originalURL string) (service.Shortened, error) {
			received = originalURL
			return service.Shortened{
				ShortCode: "abc123",
				ShortURL:  "http://localhost:8080/abc123",
			}, nil
		},
	}

	h := NewHandler(mockService, nil)

	r := chi.NewRouter()
	r.Use(middleware.GzipReader)
	r.Use(middleware.GzipMiddleware)
	r.Post("/shorten", h.HandleShorten)

	reqBodyBytes, _ := json.Marshal(ShortenRequest{URL: "https://example.com/compressed"})

	var compressed bytes.Buffer
	gz := gzip.NewWriter(&compressed)
	if _, err := gz.Write(reqBodyBytes); err != nil {
		t.Fatalf("failed to compress request body: %v", err)
	}
	gz.Close()

	req := httptest.NewRequest(http.MethodPost, "/shorten", &compressed)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")

	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want %v", rec.Code, http.StatusOK)
	}

	if received != "https://example.com/compressed" {
		t.Errorf("service received URL %q, want %q", received, "https://example.com/compressed")
	}
}
