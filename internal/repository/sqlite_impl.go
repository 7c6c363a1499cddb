package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/jmoiron/sqlx"

	"github.com/alexivanou/aqimap-api/internal/model"
)

type sqliteStationRepository struct {
	db *sqlx.DB
}

func (r *sqliteStationRepository) UpsertReadings(ctx context.Context, readings []model.Reading) error {
	q := `
		INSERT INTO station_readings (province, lat, lon, aqi, main_pollutant, pm25, pm10,
			temperature, humidity, pressure, wind_speed, observed_at)
		VALUES (:province, :lat, :lon, :aqi, :main_pollutant, :pm25, :pm10,
			:temperature, :humidity, :pressure, :wind_speed, :observed_at)
		ON CONFLICT(province) DO UPDATE SET
			lat = excluded.lat,
			lon = excluded.lon,
			aqi = excluded.aqi,
			main_pollutant = excluded.main_pollutant,
			pm25 = excluded.pm25,
			pm10 = excluded.pm10,
			temperature = excluded.temperature,
			humidity = excluded.humidity,
			pressure = excluded.pressure,
			wind_speed = excluded.wind_speed,
			observed_at = excluded.observed_at`

	return chunks(latestByProvince(readings), upsertChunkSize, func(batch []model.Reading) error {
		_, err := r.db.NamedExecContext(ctx, q, batch)
		return err
	})
}

func (r *sqliteStationRepository) ListReadings(ctx context.Context) ([]model.Reading, error) {
	var readings []model.Reading
	if err := r.db.SelectContext(ctx, &readings, "SELECT * FROM station_readings ORDER BY province"); err != nil {
		return nil, err
	}
	return readings, nil
}

func (r *sqliteStationRepository) GetReading(ctx context.Context, province string) (*model.Reading, error) {
	var reading model.Reading
	q := "SELECT * FROM station_readings WHERE LOWER(province) = LOWER(?)"
	if err := r.db.GetContext(ctx, &reading, q, province); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &reading, nil
}

func (r *sqliteStationRepository) ListProvinces(ctx context.Context) ([]string, error) {
	var provinces []string
	if err := r.db.SelectContext(ctx, &provinces, "SELECT province FROM station_readings ORDER BY province"); err != nil {
		return nil, err
	}
	return provinces, nil
}

// nearestSearchDelta bounds the first pass, in degrees around the point
const nearestSearchDelta = 2.0

func (r *sqliteStationRepository) FindNearestReading(ctx context.Context, lat, lon float64) (*model.Reading, float64, error) {
	q := `
		SELECT * FROM station_readings
		WHERE lat BETWEEN ? AND ? AND lon BETWEEN ? AND ?
	`
	var candidates []model.Reading
	err := r.db.SelectContext(ctx, &candidates, q,
		lat-nearestSearchDelta, lat+nearestSearchDelta, lon-nearestSearchDelta, lon+nearestSearchDelta)
	if err != nil {
		return nil, 0, err
	}

	// Nothing in the box, so compare against every province
	if len(candidates) == 0 {
		if err := r.db.SelectContext(ctx, &candidates, "SELECT * FROM station_readings"); err != nil {
			return nil, 0, err
		}
	}

	var nearest *model.Reading
	minDist := math.MaxFloat64

	for i := range candidates {
		dist := calculateDistance(lat, lon, candidates[i].Lat, candidates[i].Lon)
		if dist < minDist {
			minDist = dist
			nearest = &candidates[i]
		}
	}

	if nearest == nil {
		return nil, 0, nil
	}
	return nearest, minDist, nil
}

// calculateDistance is the haversine distance in km
func calculateDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)
	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

type sqliteForecastRepository struct {
	db *sqlx.DB
}

func (r *sqliteForecastRepository) ReplaceForecast(ctx context.Context, province string, days []model.ForecastDay) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM forecasts WHERE LOWER(province) = LOWER(?)", province); err != nil {
		return fmt.Errorf("failed to clear forecast: %w", err)
	}

	q := `INSERT OR REPLACE INTO forecasts (province, pollutant, day, avg, min, max)
		  VALUES (:province, :pollutant, :day, :avg, :min, :max)`
	err = chunks(withProvince(province, days), 500, func(batch []model.ForecastDay) error {
		_, err := tx.NamedExecContext(ctx, q, batch)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to insert forecast: %w", err)
	}

	return tx.Commit()
}

func (r *sqliteForecastRepository) GetForecast(ctx context.Context, province string) ([]model.ForecastDay, error) {
	q := `SELECT * FROM forecasts WHERE LOWER(province) = LOWER(?) ORDER BY day, pollutant`
	var days []model.ForecastDay
	if err := r.db.SelectContext(ctx, &days, q, province); err != nil {
		return nil, err
	}
	return days, nil
}

type sqliteWidgetRepository struct {
	db *sqlx.DB
}

func (r *sqliteWidgetRepository) UpsertWidgetKeys(ctx context.Context, keys []model.WidgetKey) error {
	q := `INSERT OR REPLACE INTO widget_keys (province, widget_key) VALUES (:province, :widget_key)`
	return chunks(latestWidgetKeys(keys), 500, func(batch []model.WidgetKey) error {
		_, err := r.db.NamedExecContext(ctx, q, batch)
		return err
	})
}

func (r *sqliteWidgetRepository) GetWidgetKey(ctx context.Context, province string) (string, error) {
	var key string
	q := "SELECT widget_key FROM widget_keys WHERE LOWER(province) = LOWER(?)"
	if err := r.db.GetContext(ctx, &key, q, province); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return key, nil
}

// withProvince stamps every day with the owning province
func withProvince(province string, days []model.ForecastDay) []model.ForecastDay {
	out := make([]model.ForecastDay, len(days))
	for i, d := range days {
		d.Province = province
		out[i] = d
	}
	return out
}
