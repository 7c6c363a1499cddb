package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/alexivanou/aqimap-api/internal/api"
	"github.com/alexivanou/aqimap-api/internal/config"
	"github.com/alexivanou/aqimap-api/internal/database"
	"github.com/alexivanou/aqimap-api/internal/geocode"
	"github.com/alexivanou/aqimap-api/internal/repository"
	"github.com/alexivanou/aqimap-api/internal/seeder"
	"github.com/alexivanou/aqimap-api/internal/service"
	"github.com/alexivanou/aqimap-api/internal/stats"
	"github.com/alexivanou/aqimap-api/internal/suggest"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(context.Background(), cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	repos := repository.NewRepositories(db, cfg.DB.Type)

	ctx := context.Background()
	if err := database.Migrate(db, cfg.DB, "migrations"); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	isEmpty, err := repository.IsDatabaseEmpty(ctx, db)
	if err != nil {
		logger.Warn("Failed to check if database is empty", zap.Error(err))
	} else if isEmpty {
		logger.Info("Database is empty, seeding from snapshot...", zap.String("dir", cfg.Seeder.DataDir))
		_, err := seeder.Seed(ctx, seeder.NewParser(cfg.Seeder), repos, logger)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logger.Warn("No snapshot found, starting with an empty database", zap.Error(err))
		case err != nil:
			logger.Fatal("Failed to seed database", zap.Error(err))
		default:
			logger.Info("Database seeded successfully")
		}
	}

	geocoder := geocode.NewClient(geocode.Options{
		ProviderURL: cfg.Suggest.ProviderURL,
		Proxies:     cfg.Suggest.Proxies,
		Country:     cfg.Suggest.Country,
		Language:    cfg.Suggest.Language,
		Limit:       cfg.Suggest.Limit,
		Origin:      cfg.Suggest.Origin,
		UserAgent:   cfg.Suggest.UserAgent,
	}, cfg.Suggest.HTTPTimeout, logger)
	suggestSvc := suggest.NewService(geocoder, cfg.Suggest, logger)

	svc := service.NewService(repos.Station, repos.Forecast, repos.Widget)
	statsCollector := stats.NewCollector(db, cfg.DB, suggestSvc)
	router := api.NewRouter(svc, suggestSvc, statsCollector, cfg.Server.AllowedOrigins, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
