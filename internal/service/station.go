package service

import (
	"context"
	"fmt"
	"math"

	"github.com/alexivanou/aqimap-api/internal/aqi"
	"github.com/alexivanou/aqimap-api/internal/model"
)

// ListStations returns a marker for every province with a reading
func (s *Service) ListStations(ctx context.Context) ([]model.StationMarker, error) {
	readings, err := s.stationRepo.ListReadings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list readings: %w", err)
	}

	markers := make([]model.StationMarker, 0, len(readings))
	for _, r := range readings {
		markers = append(markers, model.StationMarker{
			Province:    r.Province,
			Coordinates: model.Coordinate{Lat: r.Lat, Lon: r.Lon},
			AQI:         r.AQI,
			Category:    aqi.DescribeInt(r.AQI),
		})
	}
	return markers, nil
}

// GetStation returns the detail panel for a province, or nil when the
// province has no reading
func (s *Service) GetStation(ctx context.Context, province string) (*model.StationDetail, error) {
	province = NormalizeProvince(province)

	reading, err := s.stationRepo.GetReading(ctx, province)
	if err != nil {
		return nil, fmt.Errorf("failed to get reading: %w", err)
	}
	if reading == nil {
		return nil, nil // Province not found
	}

	detail := &model.StationDetail{
		Province:      reading.Province,
		Coordinates:   model.Coordinate{Lat: reading.Lat, Lon: reading.Lon},
		AQI:           reading.AQI,
		MainPollutant: reading.MainPollutant,
		Category:      aqi.DescribeInt(reading.AQI),
		PM25:          pollutant(reading.PM25, reading.AQI, aqi.EstimatePM25),
		PM10:          pollutant(reading.PM10, reading.AQI, aqi.EstimatePM10),
		Weather: model.Weather{
			Temperature: reading.Temperature,
			Humidity:    reading.Humidity,
			Pressure:    reading.Pressure,
			WindSpeed:   reading.WindSpeed,
		},
		ObservedAt: reading.ObservedAt,
	}

	forecast, err := s.GetForecast(ctx, reading.Province)
	if err != nil {
		return nil, err
	}
	detail.Forecast = forecast

	key, err := s.widgetRepo.GetWidgetKey(ctx, reading.Province)
	if err != nil {
		return nil, fmt.Errorf("failed to get widget key: %w", err)
	}
	detail.WidgetKey = key

	return detail, nil
}

// pollutant prefers a measured concentration and falls back to an estimate
// from the AQI
func pollutant(measured *float64, index *int, estimate func(float64) int) *model.PollutantEstimate {
	if measured != nil && *measured > 0 {
		return &model.PollutantEstimate{Value: int(math.Round(*measured))}
	}
	if index == nil {
		return nil
	}
	return &model.PollutantEstimate{Value: estimate(float64(*index)), Estimated: true}
}

// GetForecast returns the daily forecast for a province, or nil when there
// is none
func (s *Service) GetForecast(ctx context.Context, province string) (*model.ForecastView, error) {
	province = NormalizeProvince(province)

	days, err := s.forecastRepo.GetForecast(ctx, province)
	if err != nil {
		return nil, fmt.Errorf("failed to get forecast: %w", err)
	}
	if len(days) == 0 {
		return nil, nil
	}

	view := &model.ForecastView{Province: days[0].Province}
	index := make(map[string]int)
	for _, d := range days {
		i, ok := index[d.Day]
		if !ok {
			i = len(view.Days)
			index[d.Day] = i
			view.Days = append(view.Days, model.ForecastPoint{Day: d.Day})
		}

		avg := d.Avg
		point := &view.Days[i]
		switch d.Pollutant {
		case model.PollutantPM25:
			point.PM25 = &avg
		case model.PollutantPM10:
			point.PM10 = &avg
		}
	}

	for i := range view.Days {
		point := &view.Days[i]
		if point.PM25 != nil {
			v := aqi.FromPM25(*point.PM25)
			point.AQI = &v
		}
		point.Category = aqi.DescribeInt(point.AQI)
	}

	return view, nil
}

// EstimateAQI converts a raw AQI value into pollutant estimates
func (s *Service) EstimateAQI(value float64) *model.AQIEstimateResponse {
	return &model.AQIEstimateResponse{
		AQI:      value,
		PM25:     aqi.EstimatePM25(value),
		PM10:     aqi.EstimatePM10(value),
		Category: aqi.DescribeValue(value),
	}
}
