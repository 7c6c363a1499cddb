package aqi

import "math"

// breakpoint maps an AQI bracket to a concentration range (µg/m³)
type breakpoint struct {
	aqiLow   float64
	aqiHigh  float64
	concLow  float64
	concHigh float64
}

// table holds the brackets of one pollutant and the linear tail beyond them
type table struct {
	brackets  []breakpoint
	tailConc  float64
	tailSlope float64
}

// US EPA breakpoints. Each bracket is anchored at the previous bracket's
// upper AQI, so 100 maps to the top of the moderate range.
var pm25Table = table{
	brackets: []breakpoint{
		{aqiLow: 0, aqiHigh: 50, concLow: 0, concHigh: 12},
		{aqiLow: 50, aqiHigh: 100, concLow: 12, concHigh: 35.4},
		{aqiLow: 100, aqiHigh: 150, concLow: 35.4, concHigh: 55.4},
		{aqiLow: 150, aqiHigh: 200, concLow: 55.4, concHigh: 150.4},
		{aqiLow: 200, aqiHigh: 300, concLow: 150.4, concHigh: 250.4},
	},
	tailConc:  250.4,
	tailSlope: 100.0 / 100.0,
}

var pm10Table = table{
	brackets: []breakpoint{
		{aqiLow: 0, aqiHigh: 50, concLow: 0, concHigh: 54},
		{aqiLow: 50, aqiHigh: 100, concLow: 55, concHigh: 154},
		{aqiLow: 100, aqiHigh: 150, concLow: 155, concHigh: 254},
		{aqiLow: 150, aqiHigh: 200, concLow: 255, concHigh: 354},
		{aqiLow: 200, aqiHigh: 300, concLow: 355, concHigh: 424},
	},
	tailConc:  425,
	tailSlope: 75.0 / 100.0,
}

// EstimatePM25 approximates the PM2.5 concentration (µg/m³) for an AQI value.
// Non-positive input yields 0.
func EstimatePM25(aqi float64) int {
	return pm25Table.estimate(aqi)
}

// EstimatePM10 approximates the PM10 concentration (µg/m³) for an AQI value.
// Non-positive input yields 0.
func EstimatePM10(aqi float64) int {
	return pm10Table.estimate(aqi)
}

func (t table) estimate(aqi float64) int {
	if math.IsNaN(aqi) || aqi <= 0 {
		return 0
	}

	for _, b := range t.brackets {
		if aqi <= b.aqiHigh {
			conc := b.concLow + (aqi-b.aqiLow)*(b.concHigh-b.concLow)/(b.aqiHigh-b.aqiLow)
			return int(math.Round(conc))
		}
	}

	// Hazardous: fixed slope past the last bracket, not a lookup
	top := t.brackets[len(t.brackets)-1].aqiHigh
	return int(math.Round(t.tailConc + (aqi-top)*t.tailSlope))
}

// inverse maps a PM2.5 concentration range back to AQI
type inverse struct {
	concUpper float64
	concLow   float64
	concHigh  float64
	aqiLow    float64
	aqiHigh   float64
}

var pm25Inverse = []inverse{
	{concUpper: 12.0, concLow: 0, concHigh: 12.0, aqiLow: 0, aqiHigh: 50},
	{concUpper: 35.4, concLow: 12.1, concHigh: 35.4, aqiLow: 51, aqiHigh: 100},
	{concUpper: 55.4, concLow: 35.5, concHigh: 55.4, aqiLow: 101, aqiHigh: 150},
	{concUpper: 150.4, concLow: 55.5, concHigh: 150.4, aqiLow: 151, aqiHigh: 200},
	{concUpper: 250.4, concLow: 150.5, concHigh: 250.4, aqiLow: 201, aqiHigh: 300},
	{concUpper: math.Inf(1), concLow: 250.5, concHigh: 500.4, aqiLow: 301, aqiHigh: 500},
}

// FromPM25 converts a PM2.5 concentration to US AQI, truncating toward zero.
// Negative input yields 0.
func FromPM25(pm25 float64) int {
	if math.IsNaN(pm25) || pm25 < 0 {
		return 0
	}
	for _, r := range pm25Inverse {
		if pm25 <= r.concUpper {
			return int((r.aqiHigh-r.aqiLow)/(r.concHigh-r.concLow)*(pm25-r.concLow) + r.aqiLow)
		}
	}
	return 0
}
