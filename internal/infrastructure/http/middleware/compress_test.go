package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompress(t *testing.T) {
	page := strings.Repeat("<p>Clifton Sunset Lawn Suit</p>", 200)
	h := Compress(5)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, page)
	}))

	serve := func(acceptEncoding string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if acceptEncoding != "" {
			req.Header.Set("Accept-Encoding", acceptEncoding)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	t.Run("Brotli", func(t *testing.T) {
		rec := serve("gzip, deflate, br")
		require.Equal(t, "br", rec.Header().Get("Content-Encoding"))

		body, err := io.ReadAll(brotli.NewReader(rec.Body))
		require.NoError(t, err)
		assert.Equal(t, page, string(body))
	})

	t.Run("Gzip", func(t *testing.T) {
		rec := serve("gzip")
		require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

		zr, err := gzip.NewReader(rec.Body)
		require.NoError(t, err)
		body, err := io.ReadAll(zr)
		require.NoError(t, err)
		assert.Equal(t, page, string(body))
	})

	t.Run("Identity", func(t *testing.T) {
		rec := serve("")
		assert.Empty(t, rec.Header().Get("Content-Encoding"))
		assert.Equal(t, page, rec.Body.String())
	})
}
