package domain

import (
	"context"
)

// ProductRepository defines the contract for the demo backend's product storage
type ProductRepository interface {
	ReplaceAll(ctx context.Context, products []*Product) error
	FindAll(ctx context.Context) ([]*Product, error)
	FindByCategory(ctx context.Context, category Category) ([]*Product, error)
}
