// Package ingest pulls current readings and forecasts for every province
// from the upstream sources and stores them.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/alexivanou/aqimap-api/internal/model"
	"github.com/alexivanou/aqimap-api/internal/provider"
	"github.com/alexivanou/aqimap-api/internal/repository"
)

// ReadingSource returns the current reading for a province
type ReadingSource interface {
	Current(ctx context.Context, province string) (*model.Reading, error)
}

// ForecastSource returns the daily forecast for a province
type ForecastSource interface {
	Forecast(ctx context.Context, province string) ([]model.ForecastDay, error)
}

// Summary counts the outcome of a run
type Summary struct {
	Readings        int
	Forecasts       int
	FailedReadings  int
	FailedForecasts int
}

// Fetcher walks the province list against both sources, each paced by its
// own limiter
type Fetcher struct {
	readings  ReadingSource
	forecasts ForecastSource
	repos     *repository.Container
	logger    *zap.Logger

	readingLimiter  *rate.Limiter
	forecastLimiter *rate.Limiter
}

// NewFetcher creates a fetcher. An interval of zero disables pacing.
func NewFetcher(
	readings ReadingSource,
	forecasts ForecastSource,
	repos *repository.Container,
	readingInterval, forecastInterval time.Duration,
	logger *zap.Logger,
) *Fetcher {
	return &Fetcher{
		readings:        readings,
		forecasts:       forecasts,
		repos:           repos,
		logger:          logger,
		readingLimiter:  limiter(readingInterval),
		forecastLimiter: limiter(forecastInterval),
	}
}

func limiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Run fetches every province. Per-province upstream failures are logged and
// skipped; storage failures and cancellation abort the run.
func (f *Fetcher) Run(ctx context.Context, provinces []string) (*Summary, error) {
	var (
		readings, forecasts             atomic.Int64
		failedReadings, failedForecasts atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)

	if f.readings != nil {
		g.Go(func() error {
			for i, province := range provinces {
				if err := f.readingLimiter.Wait(gctx); err != nil {
					return err
				}
				f.logger.Info("Fetching reading",
					zap.String("province", province),
					zap.Int("n", i+1),
					zap.Int("total", len(provinces)),
				)
				reading, err := f.readings.Current(gctx, province)
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					f.logger.Warn("Reading fetch failed", zap.String("province", province), zap.Error(err))
					failedReadings.Add(1)
					continue
				}
				if err := f.repos.Station.UpsertReadings(gctx, []model.Reading{*reading}); err != nil {
					return fmt.Errorf("failed to store reading for %s: %w", province, err)
				}
				readings.Add(1)
			}
			return nil
		})
	}

	if f.forecasts != nil {
		g.Go(func() error {
			for _, province := range provinces {
				if err := f.forecastLimiter.Wait(gctx); err != nil {
					return err
				}
				days, err := f.forecasts.Forecast(gctx, province)
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					if errors.Is(err, provider.ErrNoForecast) {
						f.logger.Info("No forecast", zap.String("province", province))
					} else {
						f.logger.Warn("Forecast fetch failed", zap.String("province", province), zap.Error(err))
					}
					failedForecasts.Add(1)
					continue
				}
				if err := f.repos.Forecast.ReplaceForecast(gctx, province, days); err != nil {
					return fmt.Errorf("failed to store forecast for %s: %w", province, err)
				}
				forecasts.Add(1)
			}
			return nil
		})
	}

	err := g.Wait()
	summary := &Summary{
		Readings:        int(readings.Load()),
		Forecasts:       int(forecasts.Load()),
		FailedReadings:  int(failedReadings.Load()),
		FailedForecasts: int(failedForecasts.Load()),
	}
	if err != nil {
		return summary, err
	}

	f.logger.Info("Fetch completed",
		zap.Int("readings", summary.Readings),
		zap.Int("forecasts", summary.Forecasts),
		zap.Int("failed_readings", summary.FailedReadings),
		zap.Int("failed_forecasts", summary.FailedForecasts),
	)
	return summary, nil
}
