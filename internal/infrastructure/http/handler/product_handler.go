package handler

import (
	"log/slog"
	"net/http"

	"github.com/mrops-br/karachi-couture/internal/app/service"
	"github.com/mrops-br/karachi-couture/internal/domain"
	"github.com/mrops-br/karachi-couture/internal/infrastructure/http/response"
)

// ProductHandler serves the demo backend API under /api
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// ListProducts handles GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	category, err := domain.ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		h.logger.WarnContext(r.Context(), "Rejected product listing",
			slog.String("error", err.Error()),
		)
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	products, err := h.service.ListProducts(r.Context(), category)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}

	response.JSON(w, http.StatusOK, products)
}

// SeedProducts handles POST /api/seed
func (h *ProductHandler) SeedProducts(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.SeedProducts(r.Context())
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}

	response.JSON(w, http.StatusOK, resp)
}
