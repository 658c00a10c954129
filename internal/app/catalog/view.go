package catalog

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mrops-br/karachi-couture/internal/app/dto"
	"github.com/mrops-br/karachi-couture/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Status messages shown above the product grid
const (
	MessageLoadFailed   = "Could not load products. Please try again."
	MessageSeeding      = "Seeding sample Karachi styles..."
	MessageSeedComplete = "Seed complete"
	MessageSeedFailed   = "Seeding failed"
)

// Backend is the remote product API the view reads from
type Backend interface {
	ListProducts(ctx context.Context, category domain.Category) (dto.ProductList, error)
	Seed(ctx context.Context) (dto.SeedResponse, error)
}

// ViewState is everything the shop section is rendered from
type ViewState struct {
	Category      domain.Category
	Items         []domain.Product
	Loading       bool
	StatusMessage string
}

// View holds the catalog state of one shopper.
//
// Every fetch takes a sequence number. Starting a fetch cancels the one in
// flight, and a response whose sequence is no longer current is dropped, so
// the last request issued always wins.
type View struct {
	backend Backend
	tracer  trace.Tracer
	metrics *Metrics
	logger  *slog.Logger

	mu       sync.Mutex
	state    ViewState
	seq      uint64
	inFlight context.CancelFunc
	started  bool
}

// NewView creates a view with the All filter selected and no items
func NewView(backend Backend, tracer trace.Tracer, metrics *Metrics, logger *slog.Logger) *View {
	return &View{
		backend: backend,
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
		state: ViewState{
			Category: domain.CategoryAll,
			Items:    []domain.Product{},
		},
	}
}

// Snapshot returns a copy of the current state
func (v *View) Snapshot() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := v.state
	s.Items = make([]domain.Product, len(v.state.Items))
	copy(s.Items, v.state.Items)
	return s
}

// Started reports whether a fetch has ever been issued
func (v *View) Started() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.started
}

// SelectCategory stores the filter and refreshes the list with it
func (v *View) SelectCategory(ctx context.Context, category domain.Category) {
	if category == "" {
		category = domain.CategoryAll
	}

	v.mu.Lock()
	v.state.Category = category
	v.mu.Unlock()

	v.FetchProducts(ctx, category)
}

// FetchProducts replaces the item list with the backend's products.
// Failures are logged and surfaced only through the status message.
func (v *View) FetchProducts(ctx context.Context, category domain.Category) {
	ctx, span := v.tracer.Start(ctx, "CatalogView.FetchProducts")
	defer span.End()

	span.SetAttributes(attribute.String("catalog.category", category.String()))

	// The fetch belongs to the view, not to the request that triggered it.
	fetchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	v.mu.Lock()
	v.seq++
	seq := v.seq
	if v.inFlight != nil {
		v.inFlight()
	}
	v.inFlight = cancel
	v.started = true
	v.state.Loading = true
	v.mu.Unlock()

	defer func() {
		cancel()
		v.mu.Lock()
		if v.seq == seq {
			v.state.Loading = false
			v.inFlight = nil
		}
		v.mu.Unlock()
	}()

	v.logger.DebugContext(ctx, "Fetching products",
		slog.String("category", category.String()),
		slog.Uint64("seq", seq),
	)

	list, err := v.backend.ListProducts(fetchCtx, category)

	v.mu.Lock()
	defer v.mu.Unlock()

	if seq != v.seq {
		v.metrics.fetch(ctx, "stale")
		span.SetAttributes(attribute.Bool("catalog.stale", true))
		v.logger.DebugContext(ctx, "Discarding superseded product response",
			slog.Uint64("seq", seq),
			slog.Uint64("current_seq", v.seq),
		)
		return
	}

	if err != nil {
		v.state.Items = []domain.Product{}
		v.state.StatusMessage = MessageLoadFailed

		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load products")
		v.metrics.fetch(ctx, "failure")
		v.logger.WarnContext(ctx, "Failed to load products",
			slog.String("category", category.String()),
			slog.String("error", err.Error()),
		)
		return
	}

	if list.NotArray {
		v.logger.WarnContext(ctx, "Backend returned a non-array product payload",
			slog.String("category", category.String()),
		)
	}
	for _, r := range list.Rejected {
		v.logger.WarnContext(ctx, "Dropped malformed product",
			slog.Int("index", r.Index),
			slog.String("reason", r.Reason),
		)
	}
	v.metrics.rejected(ctx, len(list.Rejected))

	items := list.Products
	if items == nil {
		items = []domain.Product{}
	}
	v.state.Items = items
	if v.state.StatusMessage == MessageLoadFailed {
		v.state.StatusMessage = ""
	}

	span.SetAttributes(attribute.Int("product.count", len(items)))
	span.SetStatus(codes.Ok, "Products loaded")
	v.metrics.fetch(ctx, "success")
	v.logger.InfoContext(ctx, "Products loaded",
		slog.String("category", category.String()),
		slog.Int("count", len(items)),
	)
}

// SeedSampleData asks the backend for demonstration products and, when that
// succeeds, refreshes the list with the selected filter.
func (v *View) SeedSampleData(ctx context.Context) {
	ctx, span := v.tracer.Start(ctx, "CatalogView.SeedSampleData")
	defer span.End()

	v.setMessage(MessageSeeding)

	resp, err := v.backend.Seed(context.WithoutCancel(ctx))
	if err != nil {
		v.setMessage(MessageSeedFailed)

		span.RecordError(err)
		span.SetStatus(codes.Error, "Seeding failed")
		v.metrics.seed(ctx, "failure")
		v.logger.WarnContext(ctx, "Failed to seed sample products",
			slog.String("error", err.Error()),
		)
		return
	}

	message := resp.Message
	if message == "" {
		message = MessageSeedComplete
	}
	v.setMessage(message)
	v.metrics.seed(ctx, "success")
	v.logger.InfoContext(ctx, "Sample products seeded",
		slog.String("message", message),
	)

	v.mu.Lock()
	category := v.state.Category
	v.mu.Unlock()

	v.FetchProducts(ctx, category)
}

// Close cancels any fetch still in flight
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.inFlight != nil {
		v.inFlight()
		v.inFlight = nil
	}
}

func (v *View) setMessage(message string) {
	v.mu.Lock()
	v.state.StatusMessage = message
	v.mu.Unlock()
}
