package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alexivanou/aqimap-api/internal/model"
)

const iqairBody = `{
	"status": "success",
	"data": {
		"city": "Chiang Mai",
		"state": "Chiang Mai",
		"country": "Thailand",
		"location": {"type": "Point", "coordinates": [98.98, 18.79]},
		"current": {
			"pollution": {"ts": "2024-01-15T08:00:00.000Z", "aqius": 152, "mainus": "p2", "aqicn": 80, "maincn": "p2"},
			"weather": {"ts": "2024-01-15T08:00:00.000Z", "tp": 24, "pr": 1012, "hu": 60, "ws": 1.5, "wd": 90, "ic": "01d"}
		}
	}
}`

const waqiBody = `{
	"status": "ok",
	"data": {
		"aqi": 152,
		"forecast": {
			"daily": {
				"o3": [{"avg": 5, "day": "2024-01-15", "max": 9, "min": 1}],
				"pm10": [{"avg": 60, "day": "2024-01-16", "max": 80, "min": 40}],
				"pm25": [
					{"avg": 90, "day": "2024-01-16", "max": 120, "min": 70},
					{"avg": 80, "day": "2024-01-15", "max": 100, "min": 60}
				],
				"uvi": [{"avg": 3, "day": "2024-01-15", "max": 8, "min": 0}]
			}
		}
	}
}`

func serve(t *testing.T, status int, body string, check func(*http.Request)) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestIQAirClient_Current(t *testing.T) {
	srv := serve(t, http.StatusOK, iqairBody, func(r *http.Request) {
		assert.Equal(t, "/v2/city", r.URL.Path)
		assert.Equal(t, "Chiang Mai", r.URL.Query().Get("city"))
		assert.Equal(t, "Chiang Mai", r.URL.Query().Get("state"))
		assert.Equal(t, "Thailand", r.URL.Query().Get("country"))
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
	})

	c := NewIQAirClient(srv.URL, "secret", "Thailand", time.Second, zap.NewNop())
	reading, err := c.Current(context.Background(), "Chiang Mai")
	require.NoError(t, err)
	require.NotNil(t, reading)

	assert.Equal(t, "Chiang Mai", reading.Province)
	assert.Equal(t, 152, *reading.AQI)
	assert.Equal(t, "p2", reading.MainPollutant)
	assert.InDelta(t, 18.79, reading.Lat, 0.0001)
	assert.InDelta(t, 98.98, reading.Lon, 0.0001)
	assert.InDelta(t, 24.0, *reading.Temperature, 0.0001)
	assert.InDelta(t, 1.5, *reading.WindSpeed, 0.0001)
	assert.Nil(t, reading.PM25)
	assert.True(t, reading.ObservedAt.Equal(time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)))
}

func TestIQAirClient_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		badStatus bool
	}{
		{name: "fail status", status: http.StatusOK, body: `{"status":"fail","data":{"message":"city_not_found"}}`, badStatus: true},
		{name: "http error", status: http.StatusTooManyRequests, body: `{}`},
		{name: "invalid json", status: http.StatusOK, body: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, tt.body, nil)
			c := NewIQAirClient(srv.URL, "k", "Thailand", time.Second, zap.NewNop())

			reading, err := c.Current(context.Background(), "Nan")
			assert.Error(t, err)
			assert.Nil(t, reading)
			assert.Equal(t, tt.badStatus, errors.Is(err, ErrBadStatus))
		})
	}
}

func TestWAQIClient_Forecast(t *testing.T) {
	srv := serve(t, http.StatusOK, waqiBody, func(r *http.Request) {
		assert.Equal(t, "/feed/Chiang Mai/", r.URL.Path)
		assert.Equal(t, "tok", r.URL.Query().Get("token"))
	})

	c := NewWAQIClient(srv.URL, "tok", time.Second, zap.NewNop())
	days, err := c.Forecast(context.Background(), "Chiang Mai")
	require.NoError(t, err)

	assert.Equal(t, []model.ForecastDay{
		{Province: "Chiang Mai", Pollutant: model.PollutantPM25, Day: "2024-01-15", Avg: 80, Min: 60, Max: 100},
		{Province: "Chiang Mai", Pollutant: model.PollutantPM10, Day: "2024-01-16", Avg: 60, Min: 40, Max: 80},
		{Province: "Chiang Mai", Pollutant: model.PollutantPM25, Day: "2024-01-16", Avg: 90, Min: 70, Max: 120},
	}, days)
}

func TestWAQIClient_Errors(t *testing.T) {
	t.Run("error status with string data", func(t *testing.T) {
		srv := serve(t, http.StatusOK, `{"status":"error","data":"Unknown station"}`, nil)
		c := NewWAQIClient(srv.URL, "tok", time.Second, zap.NewNop())

		_, err := c.Forecast(context.Background(), "Atlantis")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrBadStatus)
		assert.Contains(t, err.Error(), "Unknown station")
	})

	t.Run("no daily forecast", func(t *testing.T) {
		srv := serve(t, http.StatusOK, `{"status":"ok","data":{"aqi":40,"forecast":{"daily":{"o3":[]}}}}`, nil)
		c := NewWAQIClient(srv.URL, "tok", time.Second, zap.NewNop())

		_, err := c.Forecast(context.Background(), "Nan")
		assert.ErrorIs(t, err, ErrNoForecast)
	})
}
