package types

// PlaceCandidate is one match returned by a reverse geocoding backend.
// Backends return candidates ordered by relevance.
type PlaceCandidate struct {
	City        string `json:"city"`
	County      string `json:"county,omitempty"`
	State       string `json:"state,omitempty"`
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}
