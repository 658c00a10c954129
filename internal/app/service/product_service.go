package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mrops-br/karachi-couture/internal/app/dto"
	"github.com/mrops-br/karachi-couture/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ProductService handles the demo backend's product use cases
type ProductService struct {
	repo              domain.ProductRepository
	tracer            trace.Tracer
	logger            *slog.Logger
	productsSeeded    metric.Int64Counter
	productOperations metric.Int64Counter
}

// NewProductService creates a new product service
func NewProductService(
	repo domain.ProductRepository,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *ProductService {
	productsSeeded, _ := meter.Int64Counter(
		"products.seeded.total",
		metric.WithDescription("Total number of sample products installed"),
	)

	productOperations, _ := meter.Int64Counter(
		"products.operations",
		metric.WithDescription("Total number of product operations"),
	)

	return &ProductService{
		repo:              repo,
		tracer:            tracer,
		logger:            logger,
		productsSeeded:    productsSeeded,
		productOperations: productOperations,
	}
}

// ListProducts retrieves the catalog, optionally narrowed to one category
func (s *ProductService) ListProducts(ctx context.Context, category domain.Category) ([]*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.ListProducts")
	defer span.End()

	span.SetAttributes(attribute.String("product.category", category.String()))

	s.logger.InfoContext(ctx, "Listing products",
		slog.String("category", category.String()),
	)

	products, err := s.repo.FindByCategory(ctx, category)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to retrieve products")
		s.logger.ErrorContext(ctx, "Failed to list products",
			slog.String("error", err.Error()),
		)
		s.record(ctx, "list", "failure")
		return nil, err
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	s.record(ctx, "list", "success")

	s.logger.InfoContext(ctx, "Products listed successfully",
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products listed successfully")
	return dto.ToProductResponseList(products), nil
}

// SeedProducts replaces the catalog with the curated sample collection
func (s *ProductService) SeedProducts(ctx context.Context) (*dto.SeedResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.SeedProducts")
	defer span.End()

	s.logger.InfoContext(ctx, "Seeding sample products")

	products, err := buildSampleCatalog()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid sample catalog")
		s.record(ctx, "seed", "failure")
		return nil, fmt.Errorf("failed to build sample catalog: %w", err)
	}

	if err := s.repo.ReplaceAll(ctx, products); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to store products")
		s.logger.ErrorContext(ctx, "Failed to store sample products",
			slog.String("error", err.Error()),
		)
		s.record(ctx, "seed", "failure")
		return nil, err
	}

	s.productsSeeded.Add(ctx, int64(len(products)))
	s.record(ctx, "seed", "success")

	span.SetAttributes(attribute.Int("product.count", len(products)))
	span.SetStatus(codes.Ok, "Sample products seeded")

	return &dto.SeedResponse{
		Message: fmt.Sprintf("Seeded %d Karachi styles", len(products)),
	}, nil
}

func (s *ProductService) record(ctx context.Context, operation, result string) {
	s.productOperations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("result", result),
		),
	)
}
