package model

import "time"

// Reading represents the latest observation for a province
type Reading struct {
	Province      string    `db:"province"`
	Lat           float64   `db:"lat"`
	Lon           float64   `db:"lon"`
	AQI           *int      `db:"aqi"`
	MainPollutant string    `db:"main_pollutant"`
	PM25          *float64  `db:"pm25"`
	PM10          *float64  `db:"pm10"`
	Temperature   *float64  `db:"temperature"`
	Humidity      *float64  `db:"humidity"`
	Pressure      *float64  `db:"pressure"`
	WindSpeed     *float64  `db:"wind_speed"`
	ObservedAt    time.Time `db:"observed_at"`
}

// ForecastDay represents one daily forecast value for a pollutant
type ForecastDay struct {
	Province  string  `db:"province"`
	Pollutant string  `db:"pollutant"`
	Day       string  `db:"day"`
	Avg       float64 `db:"avg"`
	Min       float64 `db:"min"`
	Max       float64 `db:"max"`
}

// WidgetKey links a province to its embedded air-quality widget
type WidgetKey struct {
	Province string `db:"province" json:"province"`
	Key      string `db:"widget_key" json:"key"`
}

const (
	PollutantPM25 = "pm25"
	PollutantPM10 = "pm10"
)
