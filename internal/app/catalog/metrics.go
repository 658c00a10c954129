package catalog

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics are shared by every view of the process
type Metrics struct {
	fetches       metric.Int64Counter
	rejectedItems metric.Int64Counter
	seeds         metric.Int64Counter
	sessions      metric.Int64UpDownCounter
}

func NewMetrics(meter metric.Meter) *Metrics {
	fetches, _ := meter.Int64Counter(
		"catalog.fetches",
		metric.WithDescription("Product list fetches by result"),
	)

	rejectedItems, _ := meter.Int64Counter(
		"catalog.rejected_items",
		metric.WithDescription("Malformed products dropped from backend responses"),
	)

	seeds, _ := meter.Int64Counter(
		"catalog.seeds",
		metric.WithDescription("Seed requests by result"),
	)

	sessions, _ := meter.Int64UpDownCounter(
		"catalog.sessions.active",
		metric.WithDescription("Catalog views currently held in memory"),
	)

	return &Metrics{
		fetches:       fetches,
		rejectedItems: rejectedItems,
		seeds:         seeds,
		sessions:      sessions,
	}
}

func (m *Metrics) fetch(ctx context.Context, result string) {
	m.fetches.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (m *Metrics) rejected(ctx context.Context, n int) {
	if n > 0 {
		m.rejectedItems.Add(ctx, int64(n))
	}
}

func (m *Metrics) seed(ctx context.Context, result string) {
	m.seeds.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (m *Metrics) sessionDelta(ctx context.Context, n int) {
	m.sessions.Add(ctx, int64(n))
}
