package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alexivanou/aqimap-api/internal/config"
	"github.com/alexivanou/aqimap-api/internal/database"
	"github.com/alexivanou/aqimap-api/internal/model"
	"github.com/alexivanou/aqimap-api/internal/provider"
	"github.com/alexivanou/aqimap-api/internal/repository"
)

type MockReadingSource struct {
	mock.Mock
}

func (m *MockReadingSource) Current(ctx context.Context, province string) (*model.Reading, error) {
	args := m.Called(ctx, province)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reading), args.Error(1)
}

type MockForecastSource struct {
	mock.Mock
}

func (m *MockForecastSource) Forecast(ctx context.Context, province string) ([]model.ForecastDay, error) {
	args := m.Called(ctx, province)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ForecastDay), args.Error(1)
}

var testDBSeq int

func setupRepos(t *testing.T) *repository.Container {
	testDBSeq++
	cfg := config.DBConfig{Type: config.DBTypeMemory, Name: fmt.Sprintf("ingest_test_%d", testDBSeq)}
	db, err := database.Connect(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db, cfg, "../../migrations"))
	return repository.NewRepositories(db, cfg.Type)
}

func TestFetcher_Run(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	aqi := 152
	readings := new(MockReadingSource)
	readings.On("Current", mock.Anything, "Chiang Mai").
		Return(&model.Reading{Province: "Chiang Mai", AQI: &aqi, ObservedAt: time.Now()}, nil)
	readings.On("Current", mock.Anything, "Nan").
		Return(nil, fmt.Errorf("iqair Nan: %w", provider.ErrBadStatus))

	forecasts := new(MockForecastSource)
	forecasts.On("Forecast", mock.Anything, "Chiang Mai").
		Return([]model.ForecastDay{{Pollutant: model.PollutantPM25, Day: "2024-01-16", Avg: 40, Min: 30, Max: 55}}, nil)
	forecasts.On("Forecast", mock.Anything, "Nan").
		Return(nil, provider.ErrNoForecast)

	f := NewFetcher(readings, forecasts, repos, 0, 0, zap.NewNop())
	summary, err := f.Run(ctx, []string{"Chiang Mai", "Nan"})
	require.NoError(t, err)

	assert.Equal(t, &Summary{Readings: 1, Forecasts: 1, FailedReadings: 1, FailedForecasts: 1}, summary)

	reading, err := repos.Station.GetReading(ctx, "Chiang Mai")
	require.NoError(t, err)
	require.NotNil(t, reading)
	assert.Equal(t, 152, *reading.AQI)

	days, err := repos.Forecast.GetForecast(ctx, "Chiang Mai")
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "Chiang Mai", days[0].Province)

	readings.AssertExpectations(t)
	forecasts.AssertExpectations(t)
}

func TestFetcher_Run_OnlyForecasts(t *testing.T) {
	repos := setupRepos(t)

	forecasts := new(MockForecastSource)
	forecasts.On("Forecast", mock.Anything, "Bangkok").Return([]model.ForecastDay{
		{Pollutant: model.PollutantPM10, Day: "2024-01-16", Avg: 50, Min: 40, Max: 60},
	}, nil)

	f := NewFetcher(nil, forecasts, repos, 0, 0, zap.NewNop())
	summary, err := f.Run(context.Background(), []string{"Bangkok"})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Readings)
	assert.Equal(t, 1, summary.Forecasts)
}

func TestFetcher_Run_Paced(t *testing.T) {
	repos := setupRepos(t)

	readings := new(MockReadingSource)
	readings.On("Current", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	f := NewFetcher(readings, nil, repos, 20*time.Millisecond, 0, zap.NewNop())

	start := time.Now()
	summary, err := f.Run(context.Background(), []string{"A", "B", "C"})
	require.NoError(t, err)

	// first call is immediate, the next two wait one interval each
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
	assert.Equal(t, 3, summary.FailedReadings)
}

func TestFetcher_Run_Cancelled(t *testing.T) {
	repos := setupRepos(t)

	readings := new(MockReadingSource)
	readings.On("Current", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	f := NewFetcher(readings, nil, repos, time.Hour, 0, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.Run(ctx, []string{"A", "B"})
	assert.Error(t, err)
	readings.AssertNumberOfCalls(t, "Current", 1)
}

func TestProvinces(t *testing.T) {
	assert.Len(t, Provinces, 77)
	seen := make(map[string]bool)
	for _, p := range Provinces {
		assert.False(t, seen[p], p)
		seen[p] = true
	}
}
