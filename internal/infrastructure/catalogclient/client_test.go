package catalogclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mrops-br/karachi-couture/internal/domain"
	"github.com/mrops-br/karachi-couture/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	opts = append([]Option{WithHTTPClient(srv.Client())}, opts...)
	c, err := New(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	for _, raw := range []string{"", "localhost:8000", "ftp://example.com", "http://"} {
		_, err := New(raw)
		assert.Error(t, err, raw)
	}

	c, err := New("http://localhost:8000")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", c.BaseURL())
}

func TestProductsURL(t *testing.T) {
	c, err := New("http://localhost:8000")
	require.NoError(t, err)

	tests := []struct {
		category domain.Category
		want     string
	}{
		{domain.CategoryAll, "http://localhost:8000/api/products"},
		{"", "http://localhost:8000/api/products"},
		{domain.CategoryWomen, "http://localhost:8000/api/products?category=Women"},
		{domain.CategoryMen, "http://localhost:8000/api/products?category=Men"},
		{domain.CategoryKids, "http://localhost:8000/api/products?category=Kids"},
		{domain.Category("Eid & Festive"), "http://localhost:8000/api/products?category=Eid%20%26%20Festive"},
	}
	for _, tt := range tests {
		t.Run(tt.category.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, c.ProductsURL(tt.category))
		})
	}

	t.Run("BasePath", func(t *testing.T) {
		c, err := New("https://shop.example.com/store/")
		require.NoError(t, err)
		assert.Equal(t, "https://shop.example.com/store/api/products?category=Kids", c.ProductsURL(domain.CategoryKids))
	})
}

func TestListProducts(t *testing.T) {
	t.Run("SendsCategoryQuery", func(t *testing.T) {
		var gotQuery, gotPath string
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotQuery = r.URL.RawQuery
			_, _ = w.Write([]byte(`[{"id":"1","title":"Lawn Suit","category":"Women","price":49.5}]`))
		})

		list, err := c.ListProducts(context.Background(), domain.CategoryWomen)
		require.NoError(t, err)
		assert.Equal(t, "/api/products", gotPath)
		assert.Equal(t, "category=Women", gotQuery)
		require.Len(t, list.Products, 1)
		assert.Equal(t, "49.50", list.Products[0].Price.StringFixed(2))
	})

	t.Run("AllOmitsQuery", func(t *testing.T) {
		var gotQuery string
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			_, _ = w.Write([]byte(`[]`))
		})

		list, err := c.ListProducts(context.Background(), domain.CategoryAll)
		require.NoError(t, err)
		assert.Empty(t, gotQuery)
		assert.Empty(t, list.Products)
	})

	t.Run("NonArrayPayload", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"detail":"oops"}`))
		})

		list, err := c.ListProducts(context.Background(), domain.CategoryAll)
		require.NoError(t, err)
		assert.True(t, list.NotArray)
		assert.Empty(t, list.Products)
	})

	t.Run("StatusError", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := c.ListProducts(context.Background(), domain.CategoryAll)
		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	})

	t.Run("RetriesServerErrors", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(`[]`))
		}, WithMaxAttempts(3), WithBackoff(retry.ConstantBackoff(time.Millisecond)))

		_, err := c.ListProducts(context.Background(), domain.CategoryAll)
		require.NoError(t, err)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("DoesNotRetryClientErrors", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}, WithMaxAttempts(3), WithBackoff(retry.ConstantBackoff(time.Millisecond)))

		_, err := c.ListProducts(context.Background(), domain.CategoryAll)
		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("Timeout", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}, WithTimeout(20*time.Millisecond))

		_, err := c.ListProducts(context.Background(), domain.CategoryAll)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestSeed(t *testing.T) {
	t.Run("Message", func(t *testing.T) {
		var gotMethod, gotPath string
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			_, _ = w.Write([]byte(`{"message":"Seeded 8 products"}`))
		})

		resp, err := c.Seed(context.Background())
		require.NoError(t, err)
		assert.Equal(t, http.MethodPost, gotMethod)
		assert.Equal(t, "/api/seed", gotPath)
		assert.Equal(t, "Seeded 8 products", resp.Message)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		})

		_, err := c.Seed(context.Background())
		require.Error(t, err)
	})
}
