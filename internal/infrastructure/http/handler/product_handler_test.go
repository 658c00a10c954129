package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mrops-br/karachi-couture/internal/app/dto"
	"github.com/mrops-br/karachi-couture/internal/app/service"
	"github.com/mrops-br/karachi-couture/internal/infrastructure/http/response"
	"github.com/mrops-br/karachi-couture/internal/infrastructure/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func newTestProductHandler() *ProductHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := tracenoop.NewTracerProvider().Tracer("test")
	repo := memory.NewProductRepository(tracer, logger)
	svc := service.NewProductService(repo, tracer, metricnoop.NewMeterProvider().Meter("test"), logger)
	return NewProductHandler(svc, logger)
}

func listProducts(t *testing.T, h *ProductHandler, target string) []dto.ProductResponse {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ListProducts(rec, httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var out []dto.ProductResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestProductHandler(t *testing.T) {
	h := newTestProductHandler()

	// Empty catalog is an empty array, not null
	rec := httptest.NewRecorder()
	h.ListProducts(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.SeedProducts(rec, httptest.NewRequest(http.MethodPost, "/api/seed", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var seeded dto.SeedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &seeded))
	assert.Equal(t, "Seeded 8 Karachi styles", seeded.Message)

	all := listProducts(t, h, "/api/products")
	assert.Len(t, all, 8)

	kids := listProducts(t, h, "/api/products?category=kids")
	require.Len(t, kids, 2)
	for _, p := range kids {
		assert.Equal(t, "Kids", p.Category)
		assert.NotEmpty(t, p.ID)
	}

	assert.Len(t, listProducts(t, h, "/api/products?category=All"), 8)
}

func TestProductHandlerUnknownCategory(t *testing.T) {
	h := newTestProductHandler()

	rec := httptest.NewRecorder()
	h.ListProducts(rec, httptest.NewRequest(http.MethodGet, "/api/products?category=Shoes", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp response.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "bad_request", errResp.Error)
	assert.NotEmpty(t, errResp.Message)
}
