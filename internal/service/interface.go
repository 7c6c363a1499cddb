package service

import (
	"context"
	"time"

	"github.com/alexivanou/aqimap-api/internal/model"
	"github.com/alexivanou/aqimap-api/internal/suggest"
)

// ServiceInterface defines the service interface for testing
type ServiceInterface interface {
	ListStations(ctx context.Context) ([]model.StationMarker, error)
	GetStation(ctx context.Context, province string) (*model.StationDetail, error)
	GetForecast(ctx context.Context, province string) (*model.ForecastView, error)
	EstimateAQI(value float64) *model.AQIEstimateResponse
	GetNearest(ctx context.Context, lat, lon float64) (*model.NearestAirQuality, error)
	ListProvinces(ctx context.Context) ([]string, error)
}

// SuggestInterface defines the place search operations used by handlers
type SuggestInterface interface {
	Search(ctx context.Context, query string) (*suggest.Result, error)
	Display(places []model.PlaceSuggestion) []model.SuggestionItem
	RecordSelection(name string) string
	RetryAfter() time.Duration
}

var (
	_ ServiceInterface = (*Service)(nil)
	_ SuggestInterface = (*suggest.Service)(nil)
)
