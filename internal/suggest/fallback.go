package suggest

import "github.com/alexivanou/aqimap-api/internal/model"

// DefaultFallback is served when the geocoding path is exhausted
func DefaultFallback() []model.PlaceSuggestion {
	return []model.PlaceSuggestion{
		{
			Name:     "กรุงเทพมหานคร, ประเทศไทย",
			City:     "กรุงเทพมหานคร",
			Country:  "ประเทศไทย",
			Province: "กรุงเทพมหานคร",
		},
		{
			Name:     "เชียงใหม่, ประเทศไทย",
			City:     "เชียงใหม่",
			Country:  "ประเทศไทย",
			Province: "เชียงใหม่",
		},
	}
}
