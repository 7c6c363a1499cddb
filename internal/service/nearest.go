package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/patrickmn/go-cache"

	"github.com/alexivanou/aqimap-api/internal/aqi"
	"github.com/alexivanou/aqimap-api/internal/model"
)

// ErrInvalidCoordinates is returned for a latitude or longitude out of range
var ErrInvalidCoordinates = errors.New("coordinates out of range")

// roundCoord snaps a coordinate to the 0.1 degree grid used as cache key
func roundCoord(v float64) float64 {
	return math.Round(v*10) / 10
}

// GetNearest returns the air quality of the reading closest to the point,
// or nil when no readings are stored. Points sharing a 0.1 degree cell share
// one lookup, made from the cell center.
func (s *Service) GetNearest(ctx context.Context, lat, lon float64) (*model.NearestAirQuality, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, ErrInvalidCoordinates
	}

	cellLat, cellLon := roundCoord(lat), roundCoord(lon)
	key := fmt.Sprintf("%.1f,%.1f", cellLat, cellLon)
	if cached, ok := s.nearest.Get(key); ok {
		result := cached.(model.NearestAirQuality)
		return &result, nil
	}

	reading, dist, err := s.stationRepo.FindNearestReading(ctx, cellLat, cellLon)
	if err != nil {
		return nil, fmt.Errorf("failed to find nearest reading: %w", err)
	}
	if reading == nil {
		return nil, nil
	}

	result := model.NearestAirQuality{
		Province:    reading.Province,
		Coordinates: model.Coordinate{Lat: reading.Lat, Lon: reading.Lon},
		DistanceKm:  math.Round(dist*10) / 10,
		AQI:         reading.AQI,
		PM25:        pollutant(reading.PM25, reading.AQI, aqi.EstimatePM25),
		PM10:        pollutant(reading.PM10, reading.AQI, aqi.EstimatePM10),
		Category:    aqi.DescribeInt(reading.AQI),
		Weather: model.Weather{
			Temperature: reading.Temperature,
			Humidity:    reading.Humidity,
			Pressure:    reading.Pressure,
			WindSpeed:   reading.WindSpeed,
		},
		ObservedAt: reading.ObservedAt,
	}
	s.nearest.Set(key, result, cache.DefaultExpiration)

	return &result, nil
}
