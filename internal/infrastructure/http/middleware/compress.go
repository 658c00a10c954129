package middleware

import (
	"io"
	"net/http"

	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5/middleware"
)

// Compress compresses HTML and JSON responses, preferring brotli over gzip
// and deflate when the client accepts it.
func Compress(level int) func(next http.Handler) http.Handler {
	c := middleware.NewCompressor(level, "text/html", "application/json")
	c.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})
	return c.Handler
}
