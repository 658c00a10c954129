package catalogclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mrops-br/karachi-couture/internal/app/dto"
	"github.com/mrops-br/karachi-couture/internal/domain"
	"github.com/mrops-br/karachi-couture/pkg/retry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxResponseBytes = 10 << 20

// StatusError is returned when the backend answers with a non-2xx status
type StatusError struct {
	Op         string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: backend returned status %d", e.Op, e.StatusCode)
}

// Client talks to the product backend over HTTP
type Client struct {
	baseURL     *url.URL
	httpClient  *http.Client
	timeout     time.Duration
	maxAttempts int
	backoff     retry.Backoff
	logger      *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the instrumented default client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds each request; zero leaves requests unbounded
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithMaxAttempts sets how many times a product listing is attempted
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		c.maxAttempts = n
	}
}

func WithBackoff(b retry.Backoff) Option {
	return func(c *Client) {
		c.backoff = b
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the backend at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid backend url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q: scheme and host are required", baseURL)
	}

	c := &Client{
		baseURL: u,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		maxAttempts: 1,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// BaseURL returns the backend address the client was configured with
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ProductsURL builds the listing URL; the category is percent-encoded and
// omitted entirely for All.
func (c *Client) ProductsURL(category domain.Category) string {
	u := c.baseURL.JoinPath("api", "products")
	u.RawQuery = ""
	if !category.IsAll() {
		u.RawQuery = "category=" + encodeQueryComponent(category.String())
	}
	return u.String()
}

func (c *Client) seedURL() string {
	u := c.baseURL.JoinPath("api", "seed")
	u.RawQuery = ""
	return u.String()
}

// ListProducts fetches the product list, optionally filtered by category
func (c *Client) ListProducts(ctx context.Context, category domain.Category) (dto.ProductList, error) {
	const op = "catalogclient.ListProducts"
	target := c.ProductsURL(category)

	cfg := retry.RetryConfig{
		MaxAttempts: c.maxAttempts,
		Backoff:     c.backoff,
		ShouldRetry: retryable,
	}
	body, err := retry.DoWithResult(ctx, cfg, func() ([]byte, error) {
		return c.do(ctx, op, http.MethodGet, target)
	})
	if err != nil {
		return dto.ProductList{}, err
	}

	list, err := dto.DecodeProductList(body)
	if err != nil {
		return dto.ProductList{}, fmt.Errorf("%s: %w", op, err)
	}

	c.logger.DebugContext(ctx, "Products received from backend",
		slog.String("category", category.String()),
		slog.Int("count", len(list.Products)),
		slog.Int("rejected", len(list.Rejected)),
	)
	return list, nil
}

// Seed asks the backend to populate itself with demonstration products
func (c *Client) Seed(ctx context.Context) (dto.SeedResponse, error) {
	const op = "catalogclient.Seed"

	body, err := c.do(ctx, op, http.MethodPost, c.seedURL())
	if err != nil {
		return dto.SeedResponse{}, err
	}

	resp, err := dto.DecodeSeedResponse(body)
	if err != nil {
		return dto.SeedResponse{}, fmt.Errorf("%s: %w", op, err)
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, op, method, target string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.DebugContext(ctx, "Calling product backend",
		slog.String("method", method),
		slog.String("url", target),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &StatusError{Op: op, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read body: %w", op, err)
	}
	return body, nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500
	}
	return true
}

// encodeQueryComponent escapes s the way browsers' encodeURIComponent does
func encodeQueryComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
