package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"time"

	"github.com/mrops-br/karachi-couture/internal/app/catalog"
	"github.com/mrops-br/karachi-couture/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/yosssi/gohtml"
)

//go:embed templates/*.html
var templateFS embed.FS

// CategoryTab is one filter button of the shop section
type CategoryTab struct {
	Name     string
	Href     string
	Selected bool
}

// Card is one rendered product
type Card struct {
	Key         string
	Title       string
	Description string
	Category    string
	ImageURL    string
	Price       string
}

// ShopData is the shop section derived from a catalog view state
type ShopData struct {
	Categories    []CategoryTab
	StatusMessage string
	Loading       bool
	Cards         []Card
}

// PageData is the full storefront page
type PageData struct {
	Shop ShopData
	Year int
}

// StatusData is the backend status page
type StatusData struct {
	BackendURL   string
	Reachable    bool
	ProductCount int
	Error        string
	Latency      time.Duration
	Sessions     int
}

// Renderer executes the embedded storefront templates
type Renderer struct {
	templates *template.Template
	pretty    bool
}

// New parses the embedded templates; pretty re-indents the produced HTML
func New(pretty bool) (*Renderer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{templates: t, pretty: pretty}, nil
}

// NewShopData maps a view state to what the shop section shows.
// While loading no cards are produced.
func NewShopData(state catalog.ViewState) ShopData {
	selected := state.Category
	if selected == "" {
		selected = domain.CategoryAll
	}

	data := ShopData{
		StatusMessage: state.StatusMessage,
		Loading:       state.Loading,
	}

	for _, c := range domain.Categories() {
		data.Categories = append(data.Categories, CategoryTab{
			Name:     c.String(),
			Href:     categoryHref(c),
			Selected: c == selected,
		})
	}

	if state.Loading {
		return data
	}

	data.Cards = make([]Card, 0, len(state.Items))
	for _, p := range state.Items {
		data.Cards = append(data.Cards, Card{
			Key:         p.Key(),
			Title:       p.Title,
			Description: p.Description,
			Category:    p.Category,
			ImageURL:    p.ImageURL,
			Price:       FormatPrice(p.Price),
		})
	}
	return data
}

// FormatPrice renders a price with two fixed decimals, e.g. $12.50
func FormatPrice(price decimal.Decimal) string {
	return "$" + price.StringFixed(2)
}

// categoryHref always names the category so that All overrides the filter
// remembered in the session.
func categoryHref(c domain.Category) string {
	return "/?category=" + url.QueryEscape(c.String()) + "#shop"
}

// Page writes the full storefront
func (r *Renderer) Page(w io.Writer, data PageData) error {
	return r.execute(w, "page", data)
}

// Shop writes only the shop section
func (r *Renderer) Shop(w io.Writer, data ShopData) error {
	return r.execute(w, "shop", data)
}

// Status writes the backend status page
func (r *Renderer) Status(w io.Writer, data StatusData) error {
	return r.execute(w, "status", data)
}

func (r *Renderer) execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	out := buf.Bytes()
	if r.pretty {
		out = gohtml.FormatBytes(out)
	}

	_, err := w.Write(out)
	return err
}
