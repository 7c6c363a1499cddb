package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const chiangMaiBody = `[{
	"display_name": "Chiang Mai Old City",
	"address": {"county": "", "city": "Chiang Mai", "town": "", "country": "Thailand", "state": "Chiang Mai Province"}
}]`

func testOptions(proxies ...string) Options {
	return Options{
		ProviderURL: "https://nominatim.openstreetmap.org/search",
		Proxies:     proxies,
		Country:     "Thailand",
		Language:    "th",
		Limit:       10,
		Origin:      "http://dashboard.local",
		UserAgent:   "aqimap-test",
	}
}

// relay answers like an allorigins-style proxy: the target is in ?url=
func relay(t *testing.T, status int, body string, seen *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			seen.Add(1)
		}
		target, err := url.Parse(r.URL.Query().Get("url"))
		if assert.NoError(t, err) {
			assert.Equal(t, "nominatim.openstreetmap.org", target.Host)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestClient_ProviderURL(t *testing.T) {
	c := NewClient(testOptions(), time.Second, zap.NewNop())

	u, err := url.Parse(c.ProviderURL("Chiang Mai"))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "/search", u.Path)
	assert.Equal(t, "Chiang Mai", q.Get("q"))
	assert.Equal(t, "Thailand", q.Get("country"))
	assert.Equal(t, "json", q.Get("format"))
	assert.Equal(t, "th", q.Get("accept-language"))
	assert.Equal(t, "1", q.Get("addressdetails"))
	assert.Equal(t, "10", q.Get("limit"))
}

func TestClient_ProviderURL_Encoding(t *testing.T) {
	c := NewClient(testOptions(), time.Second, zap.NewNop())

	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{
			name:     "space as %20",
			query:    "Chiang Mai",
			expected: "https://nominatim.openstreetmap.org/search?country=Thailand&q=Chiang%20Mai&format=json&accept-language=th&addressdetails=1&limit=10",
		},
		{
			name:     "reserved characters",
			query:    "A+B&C",
			expected: "https://nominatim.openstreetmap.org/search?country=Thailand&q=A%2BB%26C&format=json&accept-language=th&addressdetails=1&limit=10",
		},
		{
			name:     "thai script",
			query:    "เชียงใหม่",
			expected: "https://nominatim.openstreetmap.org/search?country=Thailand&q=" + url.QueryEscape("เชียงใหม่") + "&format=json&accept-language=th&addressdetails=1&limit=10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.ProviderURL(tt.query))
		})
	}
}

func TestClient_Search(t *testing.T) {
	t.Run("first proxy succeeds", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "http://dashboard.local", r.Header.Get("Origin"))
			assert.Equal(t, "XMLHttpRequest", r.Header.Get("X-Requested-With"))
			assert.Equal(t, "aqimap-test", r.Header.Get("User-Agent"))
			target, err := url.Parse(r.URL.Query().Get("url"))
			if assert.NoError(t, err) {
				assert.Equal(t, "Chiang Mai", target.Query().Get("q"))
			}
			_, _ = w.Write([]byte(chiangMaiBody))
		}))
		defer srv.Close()

		c := NewClient(testOptions(srv.URL+"/raw?url="), time.Second, zap.NewNop())
		places, err := c.Search(context.Background(), "Chiang Mai")
		require.NoError(t, err)
		require.Len(t, places, 1)

		assert.Equal(t, "Chiang Mai Old City", places[0].Name)
		assert.Equal(t, "Chiang Mai", places[0].City)
		assert.Equal(t, "Thailand", places[0].Country)
		assert.Equal(t, "Chiang Mai Province", places[0].Province)
		assert.Empty(t, places[0].District)
	})

	t.Run("falls through failing proxies in order", func(t *testing.T) {
		var badHits, brokenHits, goodHits, lateHits atomic.Int32
		bad := relay(t, http.StatusBadGateway, "", &badHits)
		defer bad.Close()
		broken := relay(t, http.StatusOK, "<html>not json</html>", &brokenHits)
		defer broken.Close()
		good := relay(t, http.StatusOK, chiangMaiBody, &goodHits)
		defer good.Close()
		late := relay(t, http.StatusOK, chiangMaiBody, &lateHits)
		defer late.Close()

		c := NewClient(testOptions(bad.URL+"/?url=", broken.URL+"/?url=", good.URL+"/?url=", late.URL+"/?url="), time.Second, zap.NewNop())
		places, err := c.Search(context.Background(), "Chiang Mai")
		require.NoError(t, err)
		assert.Len(t, places, 1)

		assert.Equal(t, int32(1), badHits.Load())
		assert.Equal(t, int32(1), brokenHits.Load())
		assert.Equal(t, int32(1), goodHits.Load())
		assert.Equal(t, int32(0), lateHits.Load())
	})

	t.Run("all proxies fail", func(t *testing.T) {
		bad := relay(t, http.StatusInternalServerError, "", nil)
		defer bad.Close()

		c := NewClient(testOptions(bad.URL+"/?url=", "http://127.0.0.1:1/?url="), time.Second, zap.NewNop())
		places, err := c.Search(context.Background(), "Chiang Mai")
		require.Error(t, err)
		assert.Nil(t, places)
		assert.True(t, errors.Is(err, ErrAllProxiesFailed))

		var proxyErr *ProxyError
		require.True(t, errors.As(err, &proxyErr))
		assert.Equal(t, http.StatusInternalServerError, proxyErr.StatusCode)
	})

	t.Run("no proxies configured", func(t *testing.T) {
		c := NewClient(testOptions(), time.Second, zap.NewNop())
		_, err := c.Search(context.Background(), "Chiang Mai")
		assert.ErrorIs(t, err, ErrAllProxiesFailed)
	})

	t.Run("empty result is a success", func(t *testing.T) {
		srv := relay(t, http.StatusOK, "[]", nil)
		defer srv.Close()

		c := NewClient(testOptions(srv.URL+"/?url="), time.Second, zap.NewNop())
		places, err := c.Search(context.Background(), "Nowhere")
		require.NoError(t, err)
		assert.Empty(t, places)
	})
}
