package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/alexivanou/aqimap-api/internal/config"
	"github.com/alexivanou/aqimap-api/internal/database"
	"github.com/alexivanou/aqimap-api/internal/ingest"
	"github.com/alexivanou/aqimap-api/internal/provider"
	"github.com/alexivanou/aqimap-api/internal/repository"
)

func main() {
	every := flag.Duration("every", 0, "Repeat the fetch at this interval (0 runs once)")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if cfg.DB.IsMemory() {
		logger.Warn("Fetching into an in-memory database, results are lost on exit")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.DB, "migrations"); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Sources without credentials are left as nil interfaces and skipped
	var (
		readings  ingest.ReadingSource
		forecasts ingest.ForecastSource
	)
	if cfg.Providers.IQAirKey != "" {
		readings = provider.NewIQAirClient(cfg.Providers.IQAirBaseURL, cfg.Providers.IQAirKey, cfg.Providers.Country, 30*time.Second, logger)
	} else {
		logger.Warn("IQAIR_API_KEY not set, skipping current readings")
	}
	if cfg.Providers.WAQIToken != "" {
		forecasts = provider.NewWAQIClient(cfg.Providers.WAQIBaseURL, cfg.Providers.WAQIToken, 30*time.Second, logger)
	} else {
		logger.Warn("WAQI_TOKEN not set, skipping forecasts")
	}
	if readings == nil && forecasts == nil {
		logger.Fatal("No data source configured")
	}

	provinces := cfg.Providers.Provinces
	if len(provinces) == 0 {
		provinces = ingest.Provinces
	}

	repos := repository.NewRepositories(db, cfg.DB.Type)
	fetcher := ingest.NewFetcher(readings, forecasts, repos, cfg.Providers.IQAirInterval, cfg.Providers.WAQIInterval, logger)

	for {
		if _, err := fetcher.Run(ctx, provinces); err != nil {
			if ctx.Err() != nil {
				logger.Info("Fetch interrupted")
				return
			}
			logger.Fatal("Fetch failed", zap.Error(err))
		}
		if *every <= 0 {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(*every):
		}
	}
}
