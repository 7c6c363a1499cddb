package seeder

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/alexivanou/aqimap-api/internal/model"
	"github.com/alexivanou/aqimap-api/internal/repository"
)

// Result counts what a seed run stored
type Result struct {
	Readings   int
	Skipped    int
	Forecasts  int
	WidgetKeys int
}

// Seed loads every snapshot file into the repositories
func Seed(ctx context.Context, parser *Parser, repos *repository.Container, logger *zap.Logger) (*Result, error) {
	result := &Result{}

	logger.Info("Parsing readings...")
	readings, skipped, err := parser.ParseReadings()
	if err != nil {
		return nil, fmt.Errorf("failed to parse readings: %w", err)
	}
	if len(skipped) > 0 {
		logger.Warn("Skipped provinces without data", zap.Strings("provinces", skipped))
	}
	result.Skipped = len(skipped)

	logger.Info("Inserting readings...", zap.Int("count", len(readings)))
	err = parser.Batches(readings, func(batch []model.Reading) error {
		if err := repos.Station.UpsertReadings(ctx, batch); err != nil {
			return err
		}
		result.Readings += len(batch)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert readings: %w", err)
	}

	logger.Info("Parsing forecasts...")
	forecasts, err := parser.ParseForecasts()
	if err != nil {
		return nil, fmt.Errorf("failed to parse forecasts: %w", err)
	}
	for province, days := range forecasts {
		if err := repos.Forecast.ReplaceForecast(ctx, province, days); err != nil {
			return nil, fmt.Errorf("failed to insert forecast for %s: %w", province, err)
		}
		result.Forecasts++
	}

	keys, err := parser.ParseWidgetKeys()
	if err != nil {
		return nil, fmt.Errorf("failed to parse widget keys: %w", err)
	}
	if len(keys) > 0 {
		if err := repos.Widget.UpsertWidgetKeys(ctx, keys); err != nil {
			return nil, fmt.Errorf("failed to insert widget keys: %w", err)
		}
	}
	result.WidgetKeys = len(keys)

	logger.Info("Seed completed",
		zap.Int("readings", result.Readings),
		zap.Int("skipped", result.Skipped),
		zap.Int("forecasts", result.Forecasts),
		zap.Int("widget_keys", result.WidgetKeys),
	)
	return result, nil
}
