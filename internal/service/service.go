package service

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/alexivanou/aqimap-api/internal/repository"
)

// nearestCacheTTL bounds how long a coordinate lookup is reused; readings
// are refreshed by the fetcher
const nearestCacheTTL = 10 * time.Minute

// Service provides business logic for the API
type Service struct {
	stationRepo  repository.StationRepository
	forecastRepo repository.ForecastRepository
	widgetRepo   repository.WidgetRepository
	nearest      *cache.Cache
}

// NewService creates a new service instance
func NewService(
	stationRepo repository.StationRepository,
	forecastRepo repository.ForecastRepository,
	widgetRepo repository.WidgetRepository,
) *Service {
	return &Service{
		stationRepo:  stationRepo,
		forecastRepo: forecastRepo,
		widgetRepo:   widgetRepo,
		nearest:      cache.New(nearestCacheTTL, 2*nearestCacheTTL),
	}
}

// ListProvinces returns the provinces that have a stored reading
func (s *Service) ListProvinces(ctx context.Context) ([]string, error) {
	provinces, err := s.stationRepo.ListProvinces(ctx)
	if err != nil {
		return nil, err
	}
	if provinces == nil {
		provinces = []string{}
	}
	return provinces, nil
}
