package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/hechos-map-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/hechos-map-service/internal/adapter/kafka"
	"github.com/couchcryptid/hechos-map-service/internal/adapter/source"
	"github.com/couchcryptid/hechos-map-service/internal/config"
	"github.com/couchcryptid/hechos-map-service/internal/domain"
	"github.com/couchcryptid/hechos-map-service/internal/observability"
	"github.com/couchcryptid/hechos-map-service/internal/pipeline"
	"github.com/couchcryptid/hechos-map-service/internal/view"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	extra, err := config.LoadCandidates(cfg.KeyCandidatesFile)
	if err != nil {
		logger.Error("failed to load key candidates", "error", err)
		os.Exit(1)
	}
	candidates, err := domain.DefaultCandidates().Extend(extra)
	if err != nil {
		logger.Error("invalid key candidates", "error", err)
		os.Exit(1)
	}
	dates := domain.DateNormalizer{Location: cfg.Location}
	normalizer := domain.Normalizer{Candidates: candidates, Dates: dates}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetcher, err := source.New(ctx, cfg.DataURL, cfg.FetchTimeout, logger)
	if err != nil {
		logger.Error("failed to create data source", "error", err, "data_url", cfg.DataURL)
		os.Exit(1)
	}

	// Publishing is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var (
		publisher pipeline.Publisher
		writer    *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka publishing disabled")
	}

	transformer := pipeline.NewTransformer(normalizer, logger)
	session := pipeline.NewSession(cfg.CategoryLocale, metrics)
	p := pipeline.New(fetcher, transformer, session, publisher, logger, metrics, cfg.RefreshInterval)

	renderer := view.NewRenderer(cfg.DetailURL, view.LatLng{Lat: cfg.MapCenterLat, Lng: cfg.MapCenterLon}, cfg.MapZoom)
	srv := httpadapter.NewServer(cfg.HTTPAddr, session, renderer, dates, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Load and keep refreshing the collection.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
