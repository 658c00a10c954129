package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mrops-br/karachi-couture/internal/infrastructure/config"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Telemetry holds all OpenTelemetry components
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *metric.MeterProvider
	// LoggerProvider is nil when OTLP export is disabled
	LoggerProvider *sdklog.LoggerProvider
	Registry       *prometheus.Registry
	Logger         *slog.Logger

	level *slog.LevelVar
}

// NewTelemetry initializes all OpenTelemetry components with OTLP export
func NewTelemetry(cfg *config.OTLPConfig, level slog.Level) (*Telemetry, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	// Initialize logger first for debugging
	logger := initLogger(cfg, levelVar)

	logger.Info("Initializing OpenTelemetry",
		slog.String("endpoint", cfg.Endpoint),
		slog.String("service_name", cfg.ServiceName),
	)

	res, err := newResource(cfg)
	if err != nil {
		return nil, err
	}

	tp, err := initTracerProvider(cfg, res)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer provider: %w", err)
	}

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	logger.Info("Tracer provider initialized successfully")

	// Meter provider with dual readers (OTLP + Prometheus)
	registry := prometheus.NewRegistry()
	mp, err := initMeterProvider(cfg, res, registry, true)
	if err != nil {
		_ = tp.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to initialize meter provider: %w", err)
	}

	otel.SetMeterProvider(mp)
	logger.Info("Meter provider initialized successfully (OTLP + Prometheus exporters)")

	lp, err := initLoggerProvider(cfg, res)
	if err != nil {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to initialize logger provider: %w", err)
	}

	// From here on every record is written to stdout and exported over OTLP
	logger = initLogger(cfg, levelVar,
		otelslog.NewHandler(cfg.ServiceName, otelslog.WithLoggerProvider(lp)),
	)
	logger.Info("Logger provider initialized successfully")

	return &Telemetry{
		TracerProvider: tp,
		MeterProvider:  mp,
		LoggerProvider: lp,
		Registry:       registry,
		Logger:         logger,
		level:          levelVar,
	}, nil
}

// NewNoOpTelemetry creates a telemetry instance that exports nothing over OTLP.
// Spans are still created so logs carry trace ids, and metrics remain
// available on the Prometheus registry.
func NewNoOpTelemetry(cfg *config.OTLPConfig, level slog.Level) (*Telemetry, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	logger := initLogger(cfg, levelVar)

	res, err := newResource(cfg)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithResource(res))

	registry := prometheus.NewRegistry()
	mp, err := initMeterProvider(cfg, res, registry, false)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize meter provider: %w", err)
	}

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	logger.Info("Telemetry initialized in no-op mode (OTLP export disabled)")

	return &Telemetry{
		TracerProvider: tp,
		MeterProvider:  mp,
		Registry:       registry,
		Logger:         logger,
		level:          levelVar,
	}, nil
}

// SetLevel changes the minimum level of Logger and every logger derived from it
func (t *Telemetry) SetLevel(level slog.Level) {
	if t.level.Level() == level {
		return
	}
	t.level.Set(level)
	t.Logger.Info("Log level changed", slog.String("level", level.String()))
}

// Shutdown gracefully shuts down all telemetry components
func (t *Telemetry) Shutdown(ctx context.Context) error {
	t.Logger.Info("Shutting down OpenTelemetry")

	errs := []error{
		t.TracerProvider.Shutdown(ctx),
		t.MeterProvider.Shutdown(ctx),
	}
	if t.LoggerProvider != nil {
		errs = append(errs, t.LoggerProvider.Shutdown(ctx))
	}

	if err := errors.Join(errs...); err != nil {
		t.Logger.Error("Failed to shutdown telemetry", slog.String("error", err.Error()))
		return err
	}

	t.Logger.Info("OpenTelemetry shutdown successfully")
	return nil
}
