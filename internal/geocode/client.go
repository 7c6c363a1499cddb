// Package geocode resolves place-name queries against a Nominatim-compatible
// search endpoint reached through an ordered list of relay proxies.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alexivanou/aqimap-api/internal/metrics"
	"github.com/alexivanou/aqimap-api/internal/model"
	"go.uber.org/zap"
)

// ErrAllProxiesFailed is returned when every configured proxy failed
var ErrAllProxiesFailed = errors.New("all proxies failed")

// ProxyError describes a single proxy failure
type ProxyError struct {
	Proxy      string
	StatusCode int
	Err        error
}

func (e *ProxyError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("proxy %s: status %d", e.Proxy, e.StatusCode)
	}
	return fmt.Sprintf("proxy %s: %v", e.Proxy, e.Err)
}

func (e *ProxyError) Unwrap() error { return e.Err }

// Options configures the geocoding client
type Options struct {
	ProviderURL string
	Proxies     []string
	Country     string
	Language    string
	Limit       int
	Origin      string
	UserAgent   string
}

// Client queries the provider through the proxies in order
type Client struct {
	httpClient *http.Client
	opts       Options
	logger     *zap.Logger
}

// NewClient creates a new geocoding client
func NewClient(opts Options, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		opts:       opts,
		logger:     logger,
	}
}

type record struct {
	DisplayName string  `json:"display_name"`
	Address     address `json:"address"`
}

type address struct {
	County  string `json:"county"`
	City    string `json:"city"`
	Town    string `json:"town"`
	Country string `json:"country"`
	State   string `json:"state"`
}

func (r record) suggestion() model.PlaceSuggestion {
	city := r.Address.County
	if city == "" {
		city = r.Address.City
	}
	if city == "" {
		city = r.Address.Town
	}
	return model.PlaceSuggestion{
		Name:     r.DisplayName,
		City:     city,
		Country:  r.Address.Country,
		Province: r.Address.State,
		District: r.Address.County,
	}
}

// ProviderURL builds the upstream search URL for a query. Parameters keep a
// fixed order and spaces are encoded as %20.
func (c *Client) ProviderURL(query string) string {
	return c.opts.ProviderURL +
		"?country=" + escape(c.opts.Country) +
		"&q=" + escape(query) +
		"&format=json" +
		"&accept-language=" + escape(c.opts.Language) +
		"&addressdetails=1" +
		"&limit=" + strconv.Itoa(c.opts.Limit)
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Search resolves a query using the first proxy that answers successfully.
// Every failure is logged and the next proxy is tried.
func (c *Client) Search(ctx context.Context, query string) ([]model.PlaceSuggestion, error) {
	target := c.ProviderURL(query)

	var errs []error
	for _, proxy := range c.opts.Proxies {
		places, err := c.viaProxy(ctx, proxy, target)
		if err == nil {
			return places, nil
		}
		metrics.ProxyFailuresTotal.WithLabelValues(proxy).Inc()
		c.logger.Warn("Proxy failed", zap.String("proxy", proxy), zap.Error(err))
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil, ErrAllProxiesFailed
	}
	return nil, fmt.Errorf("%w: %w", ErrAllProxiesFailed, errors.Join(errs...))
}

func (c *Client) viaProxy(ctx context.Context, proxy, target string) ([]model.PlaceSuggestion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, proxy+url.QueryEscape(target), nil)
	if err != nil {
		return nil, &ProxyError{Proxy: proxy, Err: err}
	}
	if c.opts.Origin != "" {
		req.Header.Set("Origin", c.opts.Origin)
	}
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ProxyError{Proxy: proxy, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ProxyError{Proxy: proxy, StatusCode: resp.StatusCode}
	}

	var records []record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, &ProxyError{Proxy: proxy, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	places := make([]model.PlaceSuggestion, 0, len(records))
	for _, r := range records {
		places = append(places, r.suggestion())
	}
	return places, nil
}
