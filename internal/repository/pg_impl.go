package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/alexivanou/aqimap-api/internal/model"
)

// --- PostgreSQL Implementation ---

type pgStationRepository struct {
	db *sqlx.DB
}

func (r *pgStationRepository) UpsertReadings(ctx context.Context, readings []model.Reading) error {
	q := `
		INSERT INTO station_readings (province, lat, lon, aqi, main_pollutant, pm25, pm10,
			temperature, humidity, pressure, wind_speed, observed_at)
		VALUES (:province, :lat, :lon, :aqi, :main_pollutant, :pm25, :pm10,
			:temperature, :humidity, :pressure, :wind_speed, :observed_at)
		ON CONFLICT (province) DO UPDATE SET
			lat = EXCLUDED.lat,
			lon = EXCLUDED.lon,
			aqi = EXCLUDED.aqi,
			main_pollutant = EXCLUDED.main_pollutant,
			pm25 = EXCLUDED.pm25,
			pm10 = EXCLUDED.pm10,
			temperature = EXCLUDED.temperature,
			humidity = EXCLUDED.humidity,
			pressure = EXCLUDED.pressure,
			wind_speed = EXCLUDED.wind_speed,
			observed_at = EXCLUDED.observed_at`

	return chunks(latestByProvince(readings), upsertChunkSize, func(batch []model.Reading) error {
		_, err := r.db.NamedExecContext(ctx, q, batch)
		return err
	})
}

func (r *pgStationRepository) ListReadings(ctx context.Context) ([]model.Reading, error) {
	var readings []model.Reading
	if err := r.db.SelectContext(ctx, &readings, "SELECT * FROM station_readings ORDER BY province"); err != nil {
		return nil, err
	}
	return readings, nil
}

func (r *pgStationRepository) GetReading(ctx context.Context, province string) (*model.Reading, error) {
	var reading model.Reading
	q := "SELECT * FROM station_readings WHERE LOWER(province) = LOWER($1)"
	if err := r.db.GetContext(ctx, &reading, q, province); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &reading, nil
}

func (r *pgStationRepository) ListProvinces(ctx context.Context) ([]string, error) {
	var provinces []string
	if err := r.db.SelectContext(ctx, &provinces, "SELECT province FROM station_readings ORDER BY province"); err != nil {
		return nil, err
	}
	return provinces, nil
}

func (r *pgStationRepository) FindNearestReading(ctx context.Context, lat, lon float64) (*model.Reading, float64, error) {
	// Haversine in SQL, clamped so acos never sees rounding past +-1
	q := `
		SELECT
			*,
			(
				6371 * acos(
					least(1.0, greatest(-1.0,
						cos(radians($1)) * cos(radians(lat)) * cos(radians(lon) - radians($2)) +
						sin(radians($1)) * sin(radians(lat))
					))
				)
			) AS distance
		FROM station_readings
		ORDER BY distance ASC
		LIMIT 1
	`
	type readingWithDist struct {
		model.Reading
		Distance float64 `db:"distance"`
	}

	var res readingWithDist
	if err := r.db.GetContext(ctx, &res, q, lat, lon); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, nil
		}
		return nil, 0, err
	}
	return &res.Reading, res.Distance, nil
}

type pgForecastRepository struct {
	db *sqlx.DB
}

func (r *pgForecastRepository) ReplaceForecast(ctx context.Context, province string, days []model.ForecastDay) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM forecasts WHERE LOWER(province) = LOWER($1)", province); err != nil {
		return fmt.Errorf("failed to clear forecast: %w", err)
	}

	q := `INSERT INTO forecasts (province, pollutant, day, avg, min, max)
		  VALUES (:province, :pollutant, :day, :avg, :min, :max)
		  ON CONFLICT (province, pollutant, day) DO NOTHING`
	err = chunks(withProvince(province, days), 500, func(batch []model.ForecastDay) error {
		_, err := tx.NamedExecContext(ctx, q, batch)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to insert forecast: %w", err)
	}

	return tx.Commit()
}

func (r *pgForecastRepository) GetForecast(ctx context.Context, province string) ([]model.ForecastDay, error) {
	q := `SELECT * FROM forecasts WHERE LOWER(province) = LOWER($1) ORDER BY day, pollutant`
	var days []model.ForecastDay
	if err := r.db.SelectContext(ctx, &days, q, province); err != nil {
		return nil, err
	}
	return days, nil
}

type pgWidgetRepository struct {
	db *sqlx.DB
}

func (r *pgWidgetRepository) UpsertWidgetKeys(ctx context.Context, keys []model.WidgetKey) error {
	q := `INSERT INTO widget_keys (province, widget_key) VALUES (:province, :widget_key)
		  ON CONFLICT (province) DO UPDATE SET widget_key = EXCLUDED.widget_key`
	return chunks(latestWidgetKeys(keys), 500, func(batch []model.WidgetKey) error {
		_, err := r.db.NamedExecContext(ctx, q, batch)
		return err
	})
}

func (r *pgWidgetRepository) GetWidgetKey(ctx context.Context, province string) (string, error) {
	var key string
	q := "SELECT widget_key FROM widget_keys WHERE LOWER(province) = LOWER($1)"
	if err := r.db.GetContext(ctx, &key, q, province); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return key, nil
}
