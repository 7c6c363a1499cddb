package aqi

// Level identifies an AQI band
type Level string

const (
	LevelNoData             Level = "no_data"
	LevelGood               Level = "good"
	LevelModerate           Level = "moderate"
	LevelUnhealthySensitive Level = "unhealthy_sensitive"
	LevelUnhealthy          Level = "unhealthy"
	LevelVeryUnhealthy      Level = "very_unhealthy"
	LevelHazardous          Level = "hazardous"
)

// Category describes an AQI band for display
type Category struct {
	Level   Level  `json:"level"`
	Label   string `json:"label"`
	LabelTH string `json:"label_th"`
	Color   string `json:"color"`
	Advice  string `json:"advice,omitempty"`
}

var (
	NoData = Category{Level: LevelNoData, Label: "No data", LabelTH: "ไม่มีข้อมูล AQI", Color: "#CCCCCC"}

	Good = Category{
		Level: LevelGood, Label: "Good", LabelTH: "คุณภาพอากาศดี", Color: "#00E400",
		Advice: "อากาศสะอาด ปลอดภัยสำหรับกิจกรรมกลางแจ้ง",
	}
	Moderate = Category{
		Level: LevelModerate, Label: "Moderate", LabelTH: "คุณภาพอากาศปานกลาง", Color: "#FFFF00",
		Advice: "อากาศพอใช้ได้ คนไวต่อมลพิษควรระวัง",
	}
	UnhealthySensitive = Category{
		Level: LevelUnhealthySensitive, Label: "Unhealthy for Sensitive Groups", LabelTH: "คุณภาพอากาศไม่ดีต่อกลุ่มเสี่ยง", Color: "#FF7E00",
		Advice: "คนไวต่อมลพิษควรหลีกเลี่ยงกิจกรรมกลางแจ้ง",
	}
	Unhealthy = Category{
		Level: LevelUnhealthy, Label: "Unhealthy", LabelTH: "คุณภาพอากาศไม่ดี", Color: "#FF0000",
		Advice: "ทุกคนควรจำกัดกิจกรรมกลางแจ้ง",
	}
	VeryUnhealthy = Category{
		Level: LevelVeryUnhealthy, Label: "Very Unhealthy", LabelTH: "คุณภาพอากาศไม่ดีมาก", Color: "#8F3F97",
		Advice: "ทุกคนควรหลีกเลี่ยงกิจกรรมกลางแจ้ง",
	}
	Hazardous = Category{
		Level: LevelHazardous, Label: "Hazardous", LabelTH: "คุณภาพอากาศอันตราย", Color: "#7E0023",
		Advice: "ทุกคนควรอยู่ในอาคาร",
	}
)

// Describe returns the band for an AQI value. Upper bounds are inclusive;
// nil means no reading.
func Describe(aqi *float64) Category {
	if aqi == nil {
		return NoData
	}
	return DescribeValue(*aqi)
}

// DescribeValue returns the band for a known AQI value
func DescribeValue(aqi float64) Category {
	switch {
	case aqi <= 50:
		return Good
	case aqi <= 100:
		return Moderate
	case aqi <= 150:
		return UnhealthySensitive
	case aqi <= 200:
		return Unhealthy
	case aqi <= 300:
		return VeryUnhealthy
	default:
		return Hazardous
	}
}

// DescribeInt is Describe for integer readings as reported by providers
func DescribeInt(aqi *int) Category {
	if aqi == nil {
		return NoData
	}
	return DescribeValue(float64(*aqi))
}
