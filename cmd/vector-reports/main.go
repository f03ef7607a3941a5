package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/radiusdt/vector-reports/internal/config"
	"github.com/radiusdt/vector-reports/internal/database"
	"github.com/radiusdt/vector-reports/internal/geoip"
	"github.com/radiusdt/vector-reports/internal/httpserver"
	"github.com/radiusdt/vector-reports/internal/metrics"
	"github.com/radiusdt/vector-reports/internal/models"
	"github.com/radiusdt/vector-reports/internal/report"
	"github.com/radiusdt/vector-reports/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	defer logger.Sync()

	logger.Info("starting Vector-Reports",
		zap.String("env", cfg.Server.Env),
		zap.String("addr", cfg.Server.Addr),
	)

	ctx := context.Background()

	// Storage backends. PostgreSQL holds campaigns, profiles and (by
	// default) events; without it the service runs on seeded in-memory
	// stores.
	var (
		campaignRepo storage.CampaignRepo
		profileStore storage.ProfileStore
		eventSource  storage.EventSource
	)

	pg, err := database.NewPostgresDB(ctx, cfg.Database, logger)
	if err != nil {
		logger.Warn("PostgreSQL not available, using in-memory storage", zap.Error(err))
		campaignRepo, profileStore, eventSource = seedMemoryStores()
	} else {
		defer pg.Close()
		campaignRepo = storage.NewPostgresCampaignRepo(pg.Pool)
		profileStore = storage.NewPostgresProfileStore(pg.Pool)
		eventSource = storage.NewPostgresEventSource(pg.Pool)
	}

	// Optional warehouse event source.
	if cfg.ClickHouse.Enabled {
		ch, err := database.NewClickHouseDB(ctx, cfg.ClickHouse, logger)
		if err != nil {
			logger.Warn("ClickHouse not available, keeping default event source", zap.Error(err))
		} else {
			defer ch.Close()
			eventSource = storage.NewClickHouseEventSource(ch.DB)
		}
	}

	// Report cache.
	var cache report.ReportCache
	redisDB, err := database.NewRedisDB(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis not available, caching reports in memory", zap.Error(err))
		cache = report.NewMemoryReportCache()
	} else {
		defer redisDB.Close()
		cache = report.NewRedisReportCache(redisDB.Client)
	}

	// Optional GeoIP country fallback.
	var geo *geoip.Resolver
	if cfg.Geo.Enabled {
		geo, err = geoip.Open(cfg.Geo.DatabasePath)
		if err != nil {
			logger.Warn("failed to open GeoIP database, country fallback disabled", zap.Error(err))
			geo = nil
		} else {
			defer geo.Close()
		}
	}

	m := metrics.NewMetrics("vector_reports")
	resolver := report.NewIdentityResolver(profileStore, geo, logger)
	aggregator := report.NewAggregator(cfg.Aggregation.BatchSize)
	reports := report.NewService(campaignRepo, eventSource, resolver, cache, aggregator, cfg.Cache.TTL, logger, m)

	handler := httpserver.NewServer(&httpserver.Dependencies{
		Reports: reports,
		Config:  cfg,
		Logger:  logger,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// seedMemoryStores builds in-memory stores with a small demo campaign so
// the service stays usable without a database.
func seedMemoryStores() (storage.CampaignRepo, storage.ProfileStore, storage.EventSource) {
	now := time.Now().UTC()

	campaigns := storage.NewInMemoryCampaignRepo()
	_ = campaigns.Upsert(context.Background(), &models.Campaign{
		ID:        "demo",
		Name:      "Demo Campaign",
		Budget:    5000,
		Status:    models.CampaignStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	})

	profiles := storage.NewInMemoryProfileStore()
	profiles.Put(models.UserProfile{UserID: "u1", Country: "US"})
	profiles.Put(models.UserProfile{UserID: "u2", Country: "DE"})

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	events := storage.NewInMemoryEventSource()
	events.Add(
		models.EventRecord{CampaignID: "demo", UserID: "u1", Platform: models.PlatformWeb, Date: today, Kind: models.KindImpression},
		models.EventRecord{CampaignID: "demo", UserID: "u2", Platform: models.PlatformMobile, Date: today, Kind: models.KindImpression},
		models.EventRecord{CampaignID: "demo", UserID: "u1", Platform: models.PlatformWeb, Date: today, Kind: models.KindClick},
	)

	return campaigns, profiles, events
}

func setupLogger(cfg *config.Config) *zap.Logger {
	var zapCfg zap.Config

	if cfg.IsDevelopment() {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	switch cfg.Log.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	logger, err := zapCfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to create logger: %v", err))
	}

	return logger
}
