// Impactd is the social-project registry daemon.
//
// It loads the project table from disk, serves the chat webhook and the
// dashboard feed over HTTP, and rewrites the table after every mutation.
//
// Configuration comes from ~/.config/impactd/config.yaml when present,
// overridden by IMPACTD_* environment variables. See internal/config.
//
// Usage:
//
//	# Start with defaults (projects.csv in the working directory, port 8080)
//	impactd
//
//	# Configure via environment
//	IMPACTD_SERVER_PORT=9090 IMPACTD_REGISTRY_LOCALE=ru impactd
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/impactd/internal/codec"
	"github.com/fyrsmithlabs/impactd/internal/config"
	"github.com/fyrsmithlabs/impactd/internal/events"
	httpserver "github.com/fyrsmithlabs/impactd/internal/http"
	"github.com/fyrsmithlabs/impactd/internal/logging"
	"github.com/fyrsmithlabs/impactd/internal/registry"
	"github.com/fyrsmithlabs/impactd/internal/storage"
	"github.com/fyrsmithlabs/impactd/internal/telemetry"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default ~/.config/impactd/config.yaml)")
	flag.Parse()
	args := flag.Args()

	if len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  impactd [-config path]   Start the registry daemon\n")
			fmt.Fprintf(os.Stderr, "  impactd version          Show version information\n")
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

func printVersion() {
	fmt.Printf("impactd by Fyrsmith Labs\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run starts impactd and blocks until ctx is cancelled.
//
//  1. Loads and validates configuration
//  2. Initializes logger and telemetry
//  3. Opens the storage backend and the event publisher
//  4. Loads the registry
//  5. Serves HTTP until ctx is done, then shuts down gracefully
func run(ctx context.Context, configPath string) error {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info(ctx, "starting impactd",
		zap.String("version", version),
		zap.String("addr", cfg.Server.Addr()),
		zap.String("storage_backend", cfg.Storage.Backend),
		zap.String("storage_path", cfg.Storage.Path),
	)

	tel, err := telemetry.New(ctx, telemetry.NewConfig(cfg.Telemetry))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	if err := tel.Fault(); err != nil {
		logger.Warn(ctx, "telemetry exporters unavailable, continuing without them", zap.Error(err))
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			logger.Warn(ctx, "telemetry shutdown failed", zap.Error(err))
		}
	}()

	deps, err := initDependencies(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.Close(ctx, logger)

	svc, reg, err := initRegistry(ctx, cfg, deps, tel, logger)
	if err != nil {
		return err
	}

	exportCodec, err := codec.New(codec.Strategy(cfg.Storage.Codec))
	if err != nil {
		return err
	}

	srv, err := httpserver.NewServer(svc, logger, &httpserver.Config{
		Host:      cfg.Server.Host,
		Port:      cfg.Server.Port,
		RateLimit: cfg.Server.RateLimit,
		RateBurst: cfg.Server.RateBurst,
		Gatherer:  reg,
		Meter:     tel.Meter("github.com/fyrsmithlabs/impactd/internal/http"),
		Codec:     exportCodec,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// dependencies holds the infrastructure the registry writes to.
type dependencies struct {
	backend   storage.Backend
	publisher events.Publisher
}

// Close releases all infrastructure resources.
func (d *dependencies) Close(ctx context.Context, logger *logging.Logger) {
	if err := d.publisher.Close(); err != nil {
		logger.Warn(ctx, "failed to close event publisher", zap.Error(err))
	}
	if err := d.backend.Close(); err != nil {
		logger.Warn(ctx, "failed to close storage", zap.Error(err))
	}
}

// initLogger builds the zap logger from the logging section.
func initLogger(cfg config.LoggingConfig) (*logging.Logger, error) {
	lc := logging.NewDefaultConfig()

	level, err := logging.LevelFromString(cfg.Level)
	if err != nil {
		return nil, err
	}
	lc.Level = level
	if cfg.Format != "" {
		lc.Format = cfg.Format
	}
	if cfg.Output != "" {
		lc.Output = cfg.Output
	}
	lc.Fields["version"] = version

	return logging.NewLogger(lc)
}

// initDependencies opens storage and, when configured, connects to NATS.
func initDependencies(cfg *config.Config, logger *logging.Logger) (*dependencies, error) {
	backend, err := storage.Open(cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	deps := &dependencies{backend: backend, publisher: events.Nop{}}
	if cfg.Events.NATSURL == "" {
		return deps, nil
	}

	pub, err := events.Connect(cfg.Events.NATSURL, cfg.Events.Token.Reveal(), cfg.Events.SubjectPrefix)
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.Events.NATSURL, err)
	}
	logger.Info(context.Background(), "connected to NATS",
		zap.String("url", cfg.Events.NATSURL),
		zap.String("subject_prefix", cfg.Events.SubjectPrefix),
	)
	deps.publisher = pub
	return deps, nil
}

// initRegistry creates the registry service and loads the persisted table.
func initRegistry(ctx context.Context, cfg *config.Config, deps *dependencies, tel *telemetry.Telemetry, logger *logging.Logger) (*registry.Service, *prometheus.Registry, error) {
	policy, err := registry.ParseIDPolicy(cfg.Registry.IDPolicy)
	if err != nil {
		return nil, nil, err
	}
	locale, err := registry.ParseLocale(cfg.Registry.Locale)
	if err != nil {
		return nil, nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc := registry.New(nil, deps.backend,
		registry.WithLogger(logger),
		registry.WithMetrics(registry.NewMetrics(reg)),
		registry.WithPublisher(deps.publisher),
		registry.WithTracer(tel.Tracer("github.com/fyrsmithlabs/impactd/internal/registry")),
		registry.WithLocale(locale),
		registry.WithIDPolicy(policy),
		registry.WithDashboardURL(cfg.Dashboard.URL),
	)
	if err := svc.Load(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to load projects: %w", err)
	}
	return svc, reg, nil
}
