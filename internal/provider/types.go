// Package provider talks to the upstream air-quality sources and decodes
// their payloads into readings and forecast days.
package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/alexivanou/aqimap-api/internal/model"
)

var (
	// ErrNoForecast is returned when a feed carries no daily forecast
	ErrNoForecast = errors.New("no forecast available")
	// ErrBadStatus is returned when an upstream reports a non-success status
	ErrBadStatus = errors.New("upstream returned error status")
)

// CityResponse is the IQAir v2/city payload
type CityResponse struct {
	Status string   `json:"status"`
	Data   CityData `json:"data"`
}

type CityData struct {
	City     string   `json:"city"`
	State    string   `json:"state"`
	Country  string   `json:"country"`
	Location Location `json:"location"`
	Current  Current  `json:"current"`
	// Message is set instead of the fields above when Status is not success
	Message string `json:"message"`
}

// Location is a GeoJSON point, coordinates are [lon, lat]
type Location struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

type Current struct {
	Pollution Pollution `json:"pollution"`
	Weather   Weather   `json:"weather"`
}

type Pollution struct {
	Timestamp string `json:"ts"`
	AQIUS     *int   `json:"aqius"`
	MainUS    string `json:"mainus"`
	AQICN     *int   `json:"aqicn"`
	MainCN    string `json:"maincn"`
}

type Weather struct {
	Timestamp   string   `json:"ts"`
	Temperature *float64 `json:"tp"`
	Pressure    *float64 `json:"pr"`
	Humidity    *float64 `json:"hu"`
	WindSpeed   *float64 `json:"ws"`
	WindDir     *float64 `json:"wd"`
	Icon        string   `json:"ic"`
}

// Reading converts a successful city response into a stored reading
func (r *CityResponse) Reading(province string) (model.Reading, error) {
	if r.Status != "success" {
		msg := r.Data.Message
		if msg == "" {
			msg = r.Status
		}
		return model.Reading{}, fmt.Errorf("%w: %s", ErrBadStatus, msg)
	}

	reading := model.Reading{
		Province:      province,
		AQI:           r.Data.Current.Pollution.AQIUS,
		MainPollutant: r.Data.Current.Pollution.MainUS,
		Temperature:   r.Data.Current.Weather.Temperature,
		Humidity:      r.Data.Current.Weather.Humidity,
		Pressure:      r.Data.Current.Weather.Pressure,
		WindSpeed:     r.Data.Current.Weather.WindSpeed,
		ObservedAt:    time.Now().UTC(),
	}
	if c := r.Data.Location.Coordinates; len(c) == 2 {
		reading.Lon, reading.Lat = c[0], c[1]
	}
	if ts, err := time.Parse(time.RFC3339, r.Data.Current.Pollution.Timestamp); err == nil {
		reading.ObservedAt = ts.UTC()
	}
	return reading, nil
}

// DailyValue is one day of a WAQI forecast series
type DailyValue struct {
	Avg float64 `json:"avg"`
	Day string  `json:"day"`
	Max float64 `json:"max"`
	Min float64 `json:"min"`
}

// Daily maps a pollutant (pm25, pm10, o3, uvi) to its daily series
type Daily map[string][]DailyValue

// FeedResponse is the WAQI feed payload. On error Data is a bare string.
type FeedResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

type FeedData struct {
	AQI      any      `json:"aqi"`
	Forecast Forecast `json:"forecast"`
}

type Forecast struct {
	Daily Daily `json:"daily"`
}

// forecastPollutants are the series kept from a daily forecast
var forecastPollutants = []string{model.PollutantPM25, model.PollutantPM10}

// Days flattens the PM series of a daily forecast. Other pollutants are
// dropped. An empty result means there is nothing to show.
func (d Daily) Days(province string) []model.ForecastDay {
	var days []model.ForecastDay
	for _, pollutant := range forecastPollutants {
		for _, v := range d[pollutant] {
			if v.Day == "" {
				continue
			}
			days = append(days, model.ForecastDay{
				Province:  province,
				Pollutant: pollutant,
				Day:       v.Day,
				Avg:       v.Avg,
				Min:       v.Min,
				Max:       v.Max,
			})
		}
	}
	sort.SliceStable(days, func(i, j int) bool {
		if days[i].Day != days[j].Day {
			return days[i].Day < days[j].Day
		}
		return days[i].Pollutant < days[j].Pollutant
	})
	return days
}

// ForecastDays validates a feed response and returns its PM forecast
func (r *FeedResponse) ForecastDays(province string) ([]model.ForecastDay, error) {
	if r.Status != "ok" {
		var msg string
		if err := json.Unmarshal(r.Data, &msg); err != nil || msg == "" {
			msg = r.Status
		}
		return nil, fmt.Errorf("%w: %s", ErrBadStatus, msg)
	}

	var data FeedData
	if err := json.Unmarshal(r.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to decode feed data: %w", err)
	}
	days := data.Forecast.Daily.Days(province)
	if len(days) == 0 {
		return nil, ErrNoForecast
	}
	return days, nil
}
