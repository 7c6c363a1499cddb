package model

import (
	"time"

	"github.com/alexivanou/aqimap-api/internal/aqi"
)

// Coordinate represents geographic coordinates
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// StationMarker represents a province marker on the map
type StationMarker struct {
	Province    string       `json:"province"`
	Coordinates Coordinate   `json:"coordinates"`
	AQI         *int         `json:"aqi"`
	Category    aqi.Category `json:"category"`
}

// PollutantEstimate is a pollutant concentration, measured or derived from AQI
type PollutantEstimate struct {
	Value     int  `json:"value"`
	Estimated bool `json:"estimated"`
}

// Weather holds the weather part of a reading
type Weather struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Pressure    *float64 `json:"pressure"`
	WindSpeed   *float64 `json:"wind_speed"`
}

// StationDetail represents the detail panel for a province
type StationDetail struct {
	Province      string             `json:"province"`
	Coordinates   Coordinate         `json:"coordinates"`
	AQI           *int               `json:"aqi"`
	MainPollutant string             `json:"main_pollutant,omitempty"`
	Category      aqi.Category       `json:"category"`
	PM25          *PollutantEstimate `json:"pm25"`
	PM10          *PollutantEstimate `json:"pm10"`
	Weather       Weather            `json:"weather"`
	ObservedAt    time.Time          `json:"observed_at"`
	Forecast      *ForecastView      `json:"forecast,omitempty"`
	WidgetKey     string             `json:"widget_key,omitempty"`
}

// ForecastPoint is one forecast day across pollutants
type ForecastPoint struct {
	Day      string       `json:"day"`
	PM25     *float64     `json:"pm25"`
	PM10     *float64     `json:"pm10"`
	AQI      *int         `json:"aqi"`
	Category aqi.Category `json:"category"`
}

// ForecastView represents the forecast chart data for a province
type ForecastView struct {
	Province string          `json:"province"`
	Days     []ForecastPoint `json:"days"`
}

// AQIEstimateResponse represents the response for a raw AQI value
type AQIEstimateResponse struct {
	AQI      float64      `json:"aqi"`
	PM25     int          `json:"pm25"`
	PM10     int          `json:"pm10"`
	Category aqi.Category `json:"category"`
}

// NearestAirQuality is the air quality of the province reading closest to
// a point
type NearestAirQuality struct {
	Province    string             `json:"province"`
	Coordinates Coordinate         `json:"coordinates"`
	DistanceKm  float64            `json:"distance_km"`
	AQI         *int               `json:"aqi"`
	PM25        *PollutantEstimate `json:"pm25"`
	PM10        *PollutantEstimate `json:"pm10"`
	Category    aqi.Category       `json:"category"`
	Weather     Weather            `json:"weather"`
	ObservedAt  time.Time          `json:"observed_at"`
}
