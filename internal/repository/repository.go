package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/alexivanou/aqimap-api/internal/config"
	"github.com/alexivanou/aqimap-api/internal/model"
)

// StationRepository defines operations for the latest province readings
type StationRepository interface {
	UpsertReadings(ctx context.Context, readings []model.Reading) error
	ListReadings(ctx context.Context) ([]model.Reading, error)
	GetReading(ctx context.Context, province string) (*model.Reading, error)
	ListProvinces(ctx context.Context) ([]string, error)
	// FindNearestReading returns the reading closest to the point and its
	// distance in km, or nil when there are no readings
	FindNearestReading(ctx context.Context, lat, lon float64) (*model.Reading, float64, error)
}

// ForecastRepository defines operations for daily forecasts
type ForecastRepository interface {
	ReplaceForecast(ctx context.Context, province string, days []model.ForecastDay) error
	GetForecast(ctx context.Context, province string) ([]model.ForecastDay, error)
}

// WidgetRepository defines operations for widget keys
type WidgetRepository interface {
	UpsertWidgetKeys(ctx context.Context, keys []model.WidgetKey) error
	GetWidgetKey(ctx context.Context, province string) (string, error)
}

// Container holds all repositories
type Container struct {
	Station  StationRepository
	Forecast ForecastRepository
	Widget   WidgetRepository
}

// NewRepositories creates repository implementations based on DB type
func NewRepositories(db *sqlx.DB, dbType config.DBType) *Container {
	if dbType == config.DBTypePostgreSQL {
		return &Container{
			Station:  &pgStationRepository{db: db},
			Forecast: &pgForecastRepository{db: db},
			Widget:   &pgWidgetRepository{db: db},
		}
	}

	// Default to SQLite
	return &Container{
		Station:  &sqliteStationRepository{db: db},
		Forecast: &sqliteForecastRepository{db: db},
		Widget:   &sqliteWidgetRepository{db: db},
	}
}

// IsDatabaseEmpty reports whether no readings have been stored yet
func IsDatabaseEmpty(ctx context.Context, db *sqlx.DB) (bool, error) {
	var count int
	err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM station_readings")
	if err != nil {
		// Simplify error handling for non-existent tables
		return true, nil
	}
	return count == 0, nil
}

const upsertChunkSize = 100

// latestByProvince keeps the last reading per province so a batch never
// touches the same row twice
func latestByProvince(readings []model.Reading) []model.Reading {
	index := make(map[string]int, len(readings))
	out := make([]model.Reading, 0, len(readings))
	for _, r := range readings {
		if i, ok := index[r.Province]; ok {
			out[i] = r
			continue
		}
		index[r.Province] = len(out)
		out = append(out, r)
	}
	return out
}

func latestWidgetKeys(keys []model.WidgetKey) []model.WidgetKey {
	index := make(map[string]int, len(keys))
	out := make([]model.WidgetKey, 0, len(keys))
	for _, k := range keys {
		if i, ok := index[k.Province]; ok {
			out[i] = k
			continue
		}
		index[k.Province] = len(out)
		out = append(out, k)
	}
	return out
}

func chunks[T any](items []T, size int, fn func([]T) error) error {
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		if err := fn(items[i:end]); err != nil {
			return err
		}
	}
	return nil
}
