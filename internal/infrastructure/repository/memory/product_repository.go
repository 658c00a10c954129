package memory

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/mrops-br/karachi-couture/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ProductRepository is an in-memory implementation of domain.ProductRepository
type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewProductRepository creates a new in-memory product repository
func NewProductRepository(tracer trace.Tracer, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{
		products: make(map[string]*domain.Product),
		tracer:   tracer,
		logger:   logger,
	}
}

// ReplaceAll swaps the stored catalog for the given products
func (r *ProductRepository) ReplaceAll(ctx context.Context, products []*domain.Product) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.ReplaceAll")
	defer span.End()

	span.SetAttributes(attribute.Int("product.count", len(products)))

	next := make(map[string]*domain.Product, len(products))
	for _, p := range products {
		next[p.ID] = p
	}

	r.mu.Lock()
	r.products = next
	r.mu.Unlock()

	r.logger.InfoContext(ctx, "Catalog replaced in repository",
		slog.Int("count", len(next)),
	)

	span.SetStatus(codes.Ok, "Catalog replaced")
	return nil
}

// FindAll retrieves all products ordered by title
func (r *ProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindAll")
	defer span.End()

	products := r.collect(func(*domain.Product) bool { return true })

	span.SetAttributes(attribute.Int("product.count", len(products)))

	r.logger.DebugContext(ctx, "Products retrieved from repository",
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products retrieved successfully")
	return products, nil
}

// FindByCategory retrieves the products of one category ordered by title
func (r *ProductRepository) FindByCategory(ctx context.Context, category domain.Category) ([]*domain.Product, error) {
	if category.IsAll() {
		return r.FindAll(ctx)
	}

	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindByCategory")
	defer span.End()

	span.SetAttributes(attribute.String("product.category", category.String()))

	products := r.collect(func(p *domain.Product) bool {
		return strings.EqualFold(p.Category, category.String())
	})

	span.SetAttributes(attribute.Int("product.count", len(products)))

	r.logger.DebugContext(ctx, "Products retrieved from repository",
		slog.String("category", category.String()),
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products retrieved successfully")
	return products, nil
}

func (r *ProductRepository) collect(keep func(*domain.Product) bool) []*domain.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]*domain.Product, 0, len(r.products))
	for _, product := range r.products {
		if keep(product) {
			products = append(products, product)
		}
	}

	sort.Slice(products, func(i, j int) bool {
		if products[i].Title == products[j].Title {
			return products[i].ID < products[j].ID
		}
		return products[i].Title < products[j].Title
	})
	return products
}
