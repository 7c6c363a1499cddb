package model

// PlaceSuggestion is a place returned by the geocoding source
type PlaceSuggestion struct {
	Name     string `json:"name"`
	City     string `json:"city,omitempty"`
	Province string `json:"province,omitempty"`
	District string `json:"district,omitempty"`
	Country  string `json:"country,omitempty"`
}

// SuggestionItem is a suggestion prepared for display
type SuggestionItem struct {
	Label string `json:"label"`
	// Value is the literal name that replaces the search input on selection
	Value string `json:"value"`
}

// SuggestResponse represents the response for place search
type SuggestResponse struct {
	Query    string           `json:"query"`
	Source   string           `json:"source"`
	Degraded bool             `json:"degraded"`
	Results  []SuggestionItem `json:"results"`
}

// SelectRequest is the body of a suggestion selection
type SelectRequest struct {
	Name string `json:"name"`
}

// SelectResponse carries the new search input value
type SelectResponse struct {
	Value string `json:"value"`
}
