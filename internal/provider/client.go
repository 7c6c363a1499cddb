package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/alexivanou/aqimap-api/internal/metrics"
	"github.com/alexivanou/aqimap-api/internal/model"
)

const (
	providerIQAir = "iqair"
	providerWAQI  = "waqi"
)

// getJSON issues a GET and decodes a JSON body, recording provider metrics
func getJSON(ctx context.Context, client *http.Client, provider, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	t0 := time.Now()
	resp, err := client.Do(req)
	metrics.ProviderDurationMs.WithLabelValues(provider).Observe(float64(time.Since(t0).Milliseconds()))
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(provider, "http_error").Inc()
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ProviderRequestsTotal.WithLabelValues(provider, strconv.Itoa(resp.StatusCode)).Inc()
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(provider, "decode_error").Inc()
		return fmt.Errorf("failed to decode response: %w", err)
	}

	metrics.ProviderRequestsTotal.WithLabelValues(provider, "ok").Inc()
	return nil
}

// IQAirClient fetches current conditions per province
type IQAirClient struct {
	httpClient *http.Client
	baseURL    string
	key        string
	country    string
	logger     *zap.Logger
}

// NewIQAirClient creates a new IQAir client
func NewIQAirClient(baseURL, key, country string, timeout time.Duration, logger *zap.Logger) *IQAirClient {
	return &IQAirClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		key:        key,
		country:    country,
		logger:     logger,
	}
}

// Current returns the latest reading for a province. The province is used
// as both city and state.
func (c *IQAirClient) Current(ctx context.Context, province string) (*model.Reading, error) {
	q := url.Values{}
	q.Set("city", province)
	q.Set("state", province)
	q.Set("country", c.country)
	q.Set("key", c.key)

	var resp CityResponse
	if err := getJSON(ctx, c.httpClient, providerIQAir, c.baseURL+"/v2/city?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("iqair %s: %w", province, err)
	}

	reading, err := resp.Reading(province)
	if err != nil {
		return nil, fmt.Errorf("iqair %s: %w", province, err)
	}
	c.logger.Debug("Fetched reading", zap.String("province", province), zap.Any("aqi", reading.AQI))
	return &reading, nil
}

// WAQIClient fetches daily forecasts per province
type WAQIClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *zap.Logger
}

// NewWAQIClient creates a new WAQI client
func NewWAQIClient(baseURL, token string, timeout time.Duration, logger *zap.Logger) *WAQIClient {
	return &WAQIClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		token:      token,
		logger:     logger,
	}
}

// Forecast returns the PM2.5 and PM10 daily forecast for a province
func (c *WAQIClient) Forecast(ctx context.Context, province string) ([]model.ForecastDay, error) {
	u := c.baseURL + "/feed/" + url.PathEscape(province) + "/?token=" + url.QueryEscape(c.token)

	var resp FeedResponse
	if err := getJSON(ctx, c.httpClient, providerWAQI, u, &resp); err != nil {
		return nil, fmt.Errorf("waqi %s: %w", province, err)
	}

	days, err := resp.ForecastDays(province)
	if err != nil {
		return nil, fmt.Errorf("waqi %s: %w", province, err)
	}
	c.logger.Debug("Fetched forecast", zap.String("province", province), zap.Int("days", len(days)))
	return days, nil
}
