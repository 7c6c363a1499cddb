package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/alexivanou/aqimap-api/internal/config"
	"github.com/alexivanou/aqimap-api/internal/database"
	"github.com/alexivanou/aqimap-api/internal/repository"
	"github.com/alexivanou/aqimap-api/internal/seeder"
)

func main() {
	dataDir := flag.String("data", "", "Snapshot directory (overrides SEEDER_DATA_DIR)")
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
	if *dataDir != "" {
		cfg.Seeder.DataDir = *dataDir
	}

	db, err := database.Connect(context.Background(), cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	// Ensure schema exists before import
	if err := database.Migrate(db, cfg.DB, "migrations"); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	logger.Info("Starting data import...", zap.String("dir", cfg.Seeder.DataDir))

	repos := repository.NewRepositories(db, cfg.DB.Type)
	result, err := seeder.Seed(context.Background(), seeder.NewParser(cfg.Seeder), repos, logger)
	if err != nil {
		logger.Fatal("Data import failed", zap.Error(err))
	}

	logger.Info("Data import completed successfully!",
		zap.Int("readings", result.Readings),
		zap.Int("forecasts", result.Forecasts),
		zap.Int("widget_keys", result.WidgetKeys),
	)
}
