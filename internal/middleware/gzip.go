package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/vtarasov/url-shortener/internal/pool"
)

// gzipWriterItem adapts *gzip.Writer to the pool's Resettable contract.
type gzipWriterItem struct {
	*gzip.Writer
}

func (g *gzipWriterItem) Reset() {
	g.Writer.Reset(io.Discard)
}

var gzipWriterPool = pool.New[*gzipWriterItem](32)

// GzipMiddleware compresses eligible responses with gzip when accepted by the client.
func GzipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		wrapper := &responseWriterWrapper{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapper, r)

		contentType := wrapper.Header().Get("Content-Type")

		if strings.Contains(contentType, "application/json") ||
			strings.Contains(contentType, "text/html") ||
			strings.Contains(contentType, "text/plain") {

			item := gzipWriterPool.Get()
			if item == nil {
				gz, err := gzip.NewWriterLevel(w, gzip.BestSpeed)
				if err != nil {
					w.WriteHeader(wrapper.statusCode)
					w.Write(wrapper.body)
					return
				}
				item = &gzipWriterItem{Writer: gz}
			} else {
				item.Writer.Reset(w)
			}

			w.Header().Set("Content-Encoding", "gzip")
			w.WriteHeader(wrapper.statusCode)

			item.Write(wrapper.body)
			item.Close()
			gzipWriterPool.Put(item)
		} else {
			w.WriteHeader(wrapper.statusCode)
			w.Write(wrapper.body)
		}
	})
}

type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
	body       []byte
}

// WriteHeader captures the status code without immediately writing it.
func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
}

// Write appends the byte slice to the body buffer.
func (w *responseWriterWrapper) Write(b []byte) (int, error) {
	w.body = append(w.body, b...)
	return len(b), nil
}

// GzipReader transparently decompresses gzipped request bodies.
func GzipReader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Encoding") != "gzip" {
			next.ServeHTTP(w, r)
			return
		}

		gzReader, err := gzip.NewReader(r.Body)
		if err != nil {
			http.Error(w, "Failed to read gzipped request", http.StatusBadRequest)
			return
		}
		defer gzReader.Close()

		r.Body = io.NopCloser(gzReader)
		r.ContentLength = -1

		next.ServeHTTP(w, r)
	})
}
