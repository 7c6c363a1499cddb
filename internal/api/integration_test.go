package api

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alexivanou/aqimap-api/internal/config"
	"github.com/alexivanou/aqimap-api/internal/database"
	"github.com/alexivanou/aqimap-api/internal/model"
	"github.com/alexivanou/aqimap-api/internal/repository"
	"github.com/alexivanou/aqimap-api/internal/service"
	"github.com/alexivanou/aqimap-api/internal/stats"
	"github.com/alexivanou/aqimap-api/internal/suggest"
)

// stubSearcher answers every query with the same places
type stubSearcher struct {
	places []model.PlaceSuggestion
	err    error
}

func (s stubSearcher) Search(ctx context.Context, query string) ([]model.PlaceSuggestion, error) {
	return s.places, s.err
}

func setupIntegrationStack(t *testing.T, searcher suggest.Searcher) http.Handler {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	dbName := fmt.Sprintf("testdb_%d", rng.Int())

	cfg := config.DBConfig{
		Type: config.DBTypeMemory,
		Name: dbName,
	}

	db, err := database.Connect(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db, cfg, "../../migrations"))

	ctx := context.Background()
	repos := repository.NewRepositories(db, config.DBTypeMemory)

	aqiValue := 152
	pm25 := 58.0
	require.NoError(t, repos.Station.UpsertReadings(ctx, []model.Reading{{
		Province: "Chiang Mai", Lat: 18.79, Lon: 98.98, AQI: &aqiValue,
		MainPollutant: "p2", PM25: &pm25,
		ObservedAt: time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC),
	}}))
	require.NoError(t, repos.Forecast.ReplaceForecast(ctx, "Chiang Mai", []model.ForecastDay{
		{Province: "Chiang Mai", Pollutant: model.PollutantPM25, Day: "2024-01-16", Avg: 40, Min: 30, Max: 55},
		{Province: "Chiang Mai", Pollutant: model.PollutantPM10, Day: "2024-01-16", Avg: 60, Min: 45, Max: 80},
	}))
	require.NoError(t, repos.Widget.UpsertWidgetKeys(ctx, []model.WidgetKey{{Province: "Chiang Mai", Key: "abc123"}}))

	suggestCfg := config.SuggestConfig{
		ShortQueryMax:   2,
		MaxRequests:     10,
		Window:          time.Minute,
		Timeout:         5 * time.Second,
		TargetCountries: config.DefaultTargetCountries,
	}
	suggestSvc := suggest.NewService(searcher, suggestCfg, zap.NewNop())
	svc := service.NewService(repos.Station, repos.Forecast, repos.Widget)
	statsCollector := stats.NewCollector(db, cfg, suggestSvc)

	return NewRouter(svc, suggestSvc, statsCollector, []string{"*"}, zap.NewNop())
}

func TestAPI_Integration_Suggest(t *testing.T) {
	handler := setupIntegrationStack(t, stubSearcher{places: []model.PlaceSuggestion{
		{Name: "Chiang Mai", Province: "Chiang Mai Province", Country: "Thailand"},
		{Name: "Chiang Mai Hostel", City: "Vientiane", Country: "Laos"},
	}})

	req := httptest.NewRequest("GET", "/api/v1/suggest?q=Chiang", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp model.SuggestResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, suggest.SourceNetwork, resp.Source)
	assert.False(t, resp.Degraded)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Chiang Mai", resp.Results[0].Value)
	assert.Equal(t, "Chiang Mai, Thailand", resp.Results[0].Label)

	// Second identical query comes from the cache
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/suggest?q=Chiang", nil))
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, suggest.SourceCache, resp.Source)
}

func TestAPI_Integration_SuggestFallback(t *testing.T) {
	handler := setupIntegrationStack(t, stubSearcher{err: fmt.Errorf("all proxies failed")})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/suggest?q=Bangk", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp model.SuggestResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Degraded)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "กรุงเทพมหานคร, ประเทศไทย", resp.Results[0].Value)
}

func TestAPI_Integration_SuggestRateLimited(t *testing.T) {
	handler := setupIntegrationStack(t, stubSearcher{places: []model.PlaceSuggestion{}})

	for i := 0; i < 10; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("GET", fmt.Sprintf("/api/v1/suggest?q=query%d", i), nil))
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/suggest?q=one-more", nil))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
}

func TestAPI_Integration_Station(t *testing.T) {
	handler := setupIntegrationStack(t, stubSearcher{})

	req := httptest.NewRequest("GET", "/api/v1/stations/chiang-mai", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp model.StationDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Chiang Mai", resp.Province)
	require.NotNil(t, resp.AQI)
	assert.Equal(t, 152, *resp.AQI)
	assert.Equal(t, "abc123", resp.WidgetKey)
	require.NotNil(t, resp.Forecast)
	assert.Len(t, resp.Forecast.Days, 1)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/stations/Atlantis", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAPI_Integration_AirQuality(t *testing.T) {
	handler := setupIntegrationStack(t, stubSearcher{})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/air-quality/18.77/98.96", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp model.NearestAirQuality
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Chiang Mai", resp.Province)
	assert.Less(t, resp.DistanceKm, 5.0)
	require.NotNil(t, resp.PM25)
	assert.Equal(t, 58, resp.PM25.Value)
}

func TestAPI_Integration_Stations(t *testing.T) {
	handler := setupIntegrationStack(t, stubSearcher{})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/stations", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Stations []model.StationMarker `json:"stations"`
		Count    int                   `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "Chiang Mai", resp.Stations[0].Province)
}

func TestAPI_Integration_Stats(t *testing.T) {
	handler := setupIntegrationStack(t, stubSearcher{})

	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var s stats.Stats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &s))
	assert.Equal(t, "memory", s.Database.Type)
	assert.Equal(t, 1, s.Database.Provinces)
	require.NotNil(t, s.Suggest)
	assert.Equal(t, 0, s.Suggest.CachedQueries)
}

func TestAPI_Integration_Metrics(t *testing.T) {
	handler := setupIntegrationStack(t, stubSearcher{})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}
