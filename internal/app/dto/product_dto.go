package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mrops-br/karachi-couture/internal/domain"
	"github.com/shopspring/decimal"
)

var ErrMissingProductPrice = errors.New("product price is required")

// ProductPayload is a product as sent by the backend API.
// Identifier and image fields accept the aliases seen across backends.
type ProductPayload struct {
	ID          json.RawMessage  `json:"id,omitempty"`
	MongoID     json.RawMessage  `json:"_id,omitempty"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Price       *decimal.Decimal `json:"price"`
	Image       string           `json:"image,omitempty"`
	ImageURL    string           `json:"imageUrl,omitempty"`
}

// ToDomain converts the payload into a validated domain Product
func (p *ProductPayload) ToDomain() (domain.Product, error) {
	if p.Price == nil {
		return domain.Product{}, ErrMissingProductPrice
	}

	product := domain.Product{
		ID:          p.identifier(),
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Price:       *p.Price,
		ImageURL:    p.Image,
	}
	if product.ImageURL == "" {
		product.ImageURL = p.ImageURL
	}

	if err := product.Validate(); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

func (p *ProductPayload) identifier() string {
	if id := rawIdentifier(p.ID); id != "" {
		return id
	}
	return rawIdentifier(p.MongoID)
}

// rawIdentifier renders a string or numeric JSON id as text
func rawIdentifier(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}

	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}

// Rejection describes a list entry that was dropped during decoding
type Rejection struct {
	Index  int
	Reason string
}

// ProductList is the decoded result of GET /api/products
type ProductList struct {
	Products []domain.Product
	Rejected []Rejection
	// NotArray is set when the payload was valid JSON but not an array.
	NotArray bool
}

// DecodeProductList decodes a product list response.
// A payload that is not a JSON array yields an empty list; entries that fail
// to decode or validate are dropped individually and reported in Rejected.
func DecodeProductList(data []byte) (ProductList, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return ProductList{}, fmt.Errorf("failed to decode product list: %w", err)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return ProductList{Products: []domain.Product{}, NotArray: true}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return ProductList{}, fmt.Errorf("failed to decode product list: %w", err)
	}

	list := ProductList{Products: make([]domain.Product, 0, len(items))}
	for i, item := range items {
		var payload ProductPayload
		if err := json.Unmarshal(item, &payload); err != nil {
			list.Rejected = append(list.Rejected, Rejection{Index: i, Reason: err.Error()})
			continue
		}

		product, err := payload.ToDomain()
		if err != nil {
			list.Rejected = append(list.Rejected, Rejection{Index: i, Reason: err.Error()})
			continue
		}
		list.Products = append(list.Products, product)
	}

	return list, nil
}

// ProductResponse represents a product served by the demo backend
type ProductResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *domain.Product) *ProductResponse {
	return &ProductResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price.InexactFloat64(),
		Image:       p.ImageURL,
	}
}

// ToProductResponseList converts a list of domain Products to ProductResponse list
func ToProductResponseList(products []*domain.Product) []*ProductResponse {
	responses := make([]*ProductResponse, len(products))
	for i, p := range products {
		responses[i] = ToProductResponse(p)
	}
	return responses
}
