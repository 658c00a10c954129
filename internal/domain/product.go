package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidProductTitle = errors.New("product title is required")
	ErrInvalidProductPrice = errors.New("product price must not be negative")
	ErrUnknownCategory     = errors.New("unknown category")
)

// Category is the storefront facet used to narrow the product list
type Category string

const (
	CategoryAll   Category = "All"
	CategoryWomen Category = "Women"
	CategoryMen   Category = "Men"
	CategoryKids  Category = "Kids"
)

var categories = []Category{CategoryAll, CategoryWomen, CategoryMen, CategoryKids}

// Categories returns the selectable categories in display order
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory resolves a user supplied value; an empty value means All
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CategoryAll, nil
	}
	for _, c := range categories {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// IsAll reports whether the category places no restriction on the list
func (c Category) IsAll() bool {
	return c == "" || c == CategoryAll
}

func (c Category) String() string {
	if c == "" {
		return string(CategoryAll)
	}
	return string(c)
}

// Product represents a catalog entry as shown on the storefront
type Product struct {
	ID          string
	Title       string
	Description string
	Category    string
	Price       decimal.Decimal
	ImageURL    string
}

// NewProduct creates a new product with a generated ID and validation
func NewProduct(title, description string, category Category, price decimal.Decimal, imageURL string) (*Product, error) {
	product := &Product{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		Category:    category.String(),
		Price:       price,
		ImageURL:    imageURL,
	}

	if err := product.Validate(); err != nil {
		return nil, err
	}

	return product, nil
}

// Key identifies the product within a rendered list
func (p Product) Key() string {
	if p.ID != "" {
		return p.ID
	}
	return p.Title
}

// Validate checks the fields a product card cannot be rendered without
func (p Product) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrInvalidProductTitle
	}
	if p.Price.IsNegative() {
		return ErrInvalidProductPrice
	}
	return nil
}
