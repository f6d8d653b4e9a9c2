package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MikeSquared-Agency/Vicinity/internal/amenity"
	"github.com/MikeSquared-Agency/Vicinity/internal/api"
	"github.com/MikeSquared-Agency/Vicinity/internal/config"
	"github.com/MikeSquared-Agency/Vicinity/internal/hermes"
	"github.com/MikeSquared-Agency/Vicinity/internal/metrics"
	"github.com/MikeSquared-Agency/Vicinity/internal/report"
	"github.com/MikeSquared-Agency/Vicinity/internal/session"
	"github.com/MikeSquared-Agency/Vicinity/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(os.Stdout, cfg.Logging)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}
	configs, _ := cfg.ScoringConfigs()
	rankWeights, _ := cfg.RankWeights()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New(prometheus.DefaultRegisterer)

	// Amenity source
	var (
		provider amenity.Provider
		counter  api.AmenityCounter
		writer   api.AmenityWriter
	)
	switch cfg.Amenities.Source {
	case config.SourceFile:
		fp, err := amenity.LoadFile(cfg.Amenities.File)
		if err != nil {
			logger.Error("failed to load amenities", "file", cfg.Amenities.File, "error", err)
			os.Exit(1)
		}
		provider, counter = fp, fp
		logger.Info("loaded amenities from file", "file", cfg.Amenities.File)
	case config.SourceHTTP:
		provider = amenity.NewHTTPProvider(cfg.Amenities.URL, cfg.Amenities.Token)
		logger.Info("using remote amenity service", "url", cfg.Amenities.URL)
	case config.SourcePostgres:
		db, err := store.NewPostgresStore(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		provider, counter, writer = db, db, db
		logger.Info("connected to database")
	}
	provider = amenity.Instrument(provider, m)

	// Hermes (optional)
	var hermesClient hermes.Client
	if cfg.Hermes.URL != "" {
		hc, err := hermes.NewNATSClient(ctx, cfg.Hermes.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			hermesClient = hc
			defer hc.Close()
			logger.Info("connected to hermes")
		}
	}

	builder := report.NewBuilder(provider, configs, report.Options{
		RankWeights:  rankWeights,
		FetchTimeout: cfg.FetchTimeout(),
		Observer:     m,
	}, logger)
	svc := report.NewService(builder, hermesClient, logger)
	if err := svc.SetupSubscriptions(); err != nil {
		logger.Warn("failed to subscribe to report requests", "error", err)
	}

	// Sessions
	sessions := session.NewManager(builder, session.Options{
		IdleTimeout:   cfg.SessionIdleTimeout(),
		SweepInterval: cfg.SweepInterval(),
		MaxSessions:   cfg.Sessions.MaxSessions,
		Gauge:         m,
	}, logger)
	sessions.Start(ctx)
	defer sessions.Stop()
	logger.Info("session manager started", "idle_timeout", cfg.SessionIdleTimeout())

	// API server
	router := api.NewRouter(svc, sessions, api.Options{
		AdminToken: cfg.Server.AdminToken,
		RateLimit:  cfg.Server.RateLimit,
		Counter:    counter,
		Writer:     writer,
	}, logger)
	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:           api.NewMetricsRouter(prometheus.DefaultGatherer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}

func newLogger(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
