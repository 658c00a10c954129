package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/mrops-br/karachi-couture/internal/app/catalog"
	"github.com/mrops-br/karachi-couture/internal/app/service"
	"github.com/mrops-br/karachi-couture/internal/infrastructure/catalogclient"
	"github.com/mrops-br/karachi-couture/internal/infrastructure/config"
	"github.com/mrops-br/karachi-couture/internal/infrastructure/http"
	"github.com/mrops-br/karachi-couture/internal/infrastructure/http/handler"
	"github.com/mrops-br/karachi-couture/internal/infrastructure/http/render"
	"github.com/mrops-br/karachi-couture/internal/infrastructure/repository/memory"
	"github.com/mrops-br/karachi-couture/internal/infrastructure/telemetry"
	"github.com/mrops-br/karachi-couture/pkg/sigctx"
)

const instrumentationName = "karachi-couture"

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Printf("Storefront exited: %v", err)
		os.Exit(1)
	}
}

// run returns once the server has stopped; deferred shutdowns complete
// before it returns.
func run(args []string) error {
	// Load configuration
	cfg, err := config.LoadConfig(args)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	level, _ := cfg.Level()

	// Initialize OpenTelemetry
	var telem *telemetry.Telemetry
	if cfg.OTLP.Enabled {
		telem, err = telemetry.NewTelemetry(&cfg.OTLP, level)
	} else {
		telem, err = telemetry.NewNoOpTelemetry(&cfg.OTLP, level)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	ctx, stop := sigctx.NotifyContext(context.Background())
	defer stop()

	// Ensure telemetry is shutdown on exit
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := telem.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	if cfg.WatchLogLevel(func(level slog.Level, err error) {
		if err != nil {
			telem.Logger.Warn("Ignoring config change", slog.String("error", err.Error()))
			return
		}
		telem.SetLevel(level)
	}) {
		telem.Logger.Info("Watching config file for log level changes")
	}

	tracer := telem.TracerProvider.Tracer(instrumentationName)
	meter := telem.MeterProvider.Meter(instrumentationName)
	logger := telem.Logger

	logger.Info("Starting Karachi Couture storefront",
		slog.String("backend_url", cfg.Backend.URL),
		slog.Bool("demo_backend", cfg.DemoBackend.Enabled),
	)

	// Product API client
	client, err := catalogclient.New(cfg.Backend.URL,
		catalogclient.WithTimeout(cfg.Backend.Timeout),
		catalogclient.WithMaxAttempts(cfg.Backend.MaxAttempts),
		catalogclient.WithLogger(logger),
	)
	if err != nil {
		logger.Error("Invalid backend configuration", slog.String("error", err.Error()))
		return fmt.Errorf("invalid backend configuration: %w", err)
	}

	// One catalog view per shopper
	metrics := catalog.NewMetrics(meter)
	sessions := catalog.NewSessions(cfg.Session.TTL, metrics, func() *catalog.View {
		return catalog.NewView(client, tracer, metrics, logger)
	})

	renderer, err := render.New(cfg.Render.Pretty)
	if err != nil {
		logger.Error("Failed to load templates", slog.String("error", err.Error()))
		return fmt.Errorf("failed to load templates: %w", err)
	}
	storefront := handler.NewStorefrontHandler(sessions, renderer, client, cfg.Session.TTL, logger)

	// Optional in-process product API
	var products *handler.ProductHandler
	if cfg.DemoBackend.Enabled {
		repo := memory.NewProductRepository(tracer, logger)
		productService := service.NewProductService(repo, tracer, meter, logger)
		products = handler.NewProductHandler(productService, logger)
	}

	server := http.NewServer(&cfg.Server, storefront, products, logger, telem)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case serveErr = <-errCh:
		if serveErr != nil {
			logger.Error("Server error", slog.String("error", serveErr.Error()))
		}
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", slog.String("error", err.Error()))
	}
	sessions.Close(shutdownCtx)

	logger.Info("Server stopped")
	if serveErr != nil {
		return fmt.Errorf("server error: %w", serveErr)
	}
	return nil
}
