package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"attraction_sync/internal/config"
	"attraction_sync/internal/domain"
	"attraction_sync/internal/fetch"
	"attraction_sync/internal/geocode"
	"attraction_sync/internal/loader"
	"attraction_sync/internal/publisher"
	"attraction_sync/internal/scheduler"
	"attraction_sync/internal/service"
	"attraction_sync/internal/storage/postgres"
	"attraction_sync/internal/version"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Setup logger
	logger := setupLogger("info")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Initialize RabbitMQ publisher
	rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
		URL:        cfg.RabbitMQ.URL,
		Exchange:   cfg.RabbitMQ.Exchange,
		RoutingKey: cfg.RabbitMQ.RoutingKey,
		QueueName:  cfg.RabbitMQ.QueueName,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer rabbitMQ.Close()

	// Initialize stores
	attractionStore := postgres.NewAttractionStore(db)
	versionStore := postgres.NewVersionStore(db)
	runStore := postgres.NewSyncRunStore(db)
	checkpointStore := postgres.NewCheckpointStore(db)
	txManager := postgres.NewTransactionManager(db)

	versioning := version.NewService(attractionStore, versionStore, txManager, logger)
	recordLoader := loader.New(attractionStore, versioning, txManager, rabbitMQ, logger)

	retry := fetch.Config{
		Timeout:        cfg.Source.Timeout,
		MaxAttempts:    cfg.Source.Retry.MaxAttempts,
		InitialBackoff: cfg.Source.Retry.InitialBackoff,
		MaxBackoff:     cfg.Source.Retry.MaxBackoff,
	}
	extractorFactory := service.NewExtractorFactory(retry, logger)

	var geocoder service.Geocoder
	if cfg.Geocoding.Enabled {
		geocoder = geocode.New(fetch.New(retry, logger), geocode.Config{
			BaseURL:     cfg.Geocoding.BaseURL,
			CountryCode: cfg.Geocoding.CountryCode,
			MinInterval: cfg.Geocoding.MinInterval,
		}, logger)
	}

	syncService := service.NewSyncService(
		extractorFactory,
		recordLoader,
		runStore,
		checkpointStore,
		geocoder,
		logger,
		cfg.Sync,
	)

	baseParams := service.RunParams{
		SourceKind: cfg.Source.Kind,
		SourceURL:  cfg.Source.URL,
		Timeout:    cfg.Source.Timeout,
		PageSize:   cfg.Source.PageSize,
		MaxPages:   cfg.Source.MaxPages,
		Streaming:  cfg.Source.Streaming,
		Geocoding:  cfg.Geocoding.Enabled,
	}
	fullParams := baseParams
	fullParams.RunKind = domain.RunKindFull
	incrementalParams := baseParams
	incrementalParams.RunKind = domain.RunKindIncremental

	sched := scheduler.NewScheduler(syncService, versioning, scheduler.Config{
		FullInterval:        cfg.Sync.FullInterval,
		IncrementalInterval: cfg.Sync.IncrementalInterval,
		PruneInterval:       cfg.Sync.PruneInterval,
		KeepVersions:        cfg.Sync.KeepVersions,
		RunTimeout:          cfg.Sync.RunTimeout,
		FullParams:          fullParams,
		IncrementalParams:   incrementalParams,
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	logger.Info("starting attraction syncer",
		"source", cfg.Source.Kind,
		"url", cfg.Source.URL,
		"full_interval", cfg.Sync.FullInterval,
		"incremental_interval", cfg.Sync.IncrementalInterval,
	)

	if err := sched.Start(ctx); err != nil && err != context.Canceled {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
