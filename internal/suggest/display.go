package suggest

import (
	"strings"

	"github.com/alexivanou/aqimap-api/internal/model"
)

// FilterByCountry keeps places whose country contains one of the target
// names, compared case-insensitively
func FilterByCountry(places []model.PlaceSuggestion, countries []string) []model.PlaceSuggestion {
	filtered := make([]model.PlaceSuggestion, 0, len(places))
	for _, p := range places {
		country := strings.ToLower(p.Country)
		for _, target := range countries {
			if target != "" && strings.Contains(country, strings.ToLower(target)) {
				filtered = append(filtered, p)
				break
			}
		}
	}
	return filtered
}

// Label builds the display label, skipping segments already in the name
func Label(p model.PlaceSuggestion) string {
	label := p.Name
	if p.City != "" && !strings.Contains(p.Name, p.City) {
		label += ", " + p.City
	}
	if p.Country != "" && !strings.Contains(p.Name, p.Country) {
		label += ", " + p.Country
	}
	return label
}

// Display filters places to the target countries and formats them
func Display(places []model.PlaceSuggestion, countries []string) []model.SuggestionItem {
	filtered := FilterByCountry(places, countries)
	items := make([]model.SuggestionItem, 0, len(filtered))
	for _, p := range filtered {
		items = append(items, model.SuggestionItem{Label: Label(p), Value: p.Name})
	}
	return items
}
