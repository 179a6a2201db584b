package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"current-weather/internal/providers/google"
	"current-weather/internal/providers/openstreetmap"
	"current-weather/internal/types"

	"github.com/kelvins/geocoder"
)

// ErrNoPlaceFound is returned when geocoding yields no usable city
var ErrNoPlaceFound = errors.New("no place found for coordinates")

// Service maps a coordinate to human-readable place candidates
type Service interface {
	// ReverseGeocode returns candidates ordered by relevance; the slice may be empty
	ReverseGeocode(ctx context.Context, coords types.Coords) ([]types.PlaceCandidate, error)
}

// ReverseGeocodeProvider defines the interface for OpenStreetMap-style providers
type ReverseGeocodeProvider interface {
	Lookup(ctx context.Context, latitude, longitude float64) (*openstreetmap.LookupAPIResponse, error)
}

// AddressListProvider defines the interface for providers returning several matches
type AddressListProvider interface {
	Lookup(ctx context.Context, latitude, longitude float64) ([]geocoder.Address, error)
}

// nominatimService implements the Service interface on top of Nominatim
type nominatimService struct {
	provider ReverseGeocodeProvider
	logger   *slog.Logger
}

// NewNominatimService creates a location service with a real Nominatim client
func NewNominatimService(baseURL, userAgent string, logger *slog.Logger) Service {
	return NewNominatimServiceWithProvider(openstreetmap.NewClientWithBaseURL(baseURL, userAgent), logger)
}

// NewNominatimServiceWithProvider creates a new location service with a custom provider
// This is useful for testing with mock providers
func NewNominatimServiceWithProvider(provider ReverseGeocodeProvider, logger *slog.Logger) Service {
	return &nominatimService{
		provider: provider,
		logger:   logger.With("component", "location-service", "backend", "nominatim"),
	}
}

func (s *nominatimService) ReverseGeocode(ctx context.Context, coords types.Coords) ([]types.PlaceCandidate, error) {
	resp, err := s.provider.Lookup(ctx, coords.Latitude, coords.Longitude)
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}

	candidates := translateLookup(resp)
	s.logger.Debug("reverse geocoded coordinate",
		"latitude", coords.Latitude,
		"longitude", coords.Longitude,
		"candidates", len(candidates),
	)
	return candidates, nil
}

// translateLookup converts a Nominatim reverse lookup into candidates.
// Nominatim answers a single place, or an error field when nothing is there.
func translateLookup(resp *openstreetmap.LookupAPIResponse) []types.PlaceCandidate {
	if resp == nil || resp.Error != "" {
		return nil
	}

	// Smaller settlements carry their name in town/village instead of city
	city := firstNonEmpty(resp.Address.City, resp.Address.Town, resp.Address.Village, resp.Address.Municipality)

	return []types.PlaceCandidate{{
		City:        city,
		County:      resp.Address.County,
		State:       resp.Address.State,
		Country:     resp.Address.Country,
		CountryCode: resp.Address.CountryCode,
		DisplayName: resp.DisplayName,
	}}
}

// googleService implements the Service interface on top of Google Geocoding
type googleService struct {
	provider AddressListProvider
	logger   *slog.Logger
}

// NewGoogleService creates a location service with a real Google client
func NewGoogleService(apiKey string, logger *slog.Logger) Service {
	return NewGoogleServiceWithProvider(google.NewClient(apiKey), logger)
}

// NewGoogleServiceWithProvider creates a new location service with a custom provider
func NewGoogleServiceWithProvider(provider AddressListProvider, logger *slog.Logger) Service {
	return &googleService{
		provider: provider,
		logger:   logger.With("component", "location-service", "backend", "google"),
	}
}

func (s *googleService) ReverseGeocode(ctx context.Context, coords types.Coords) ([]types.PlaceCandidate, error) {
	addresses, err := s.provider.Lookup(ctx, coords.Latitude, coords.Longitude)
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}

	candidates := make([]types.PlaceCandidate, 0, len(addresses))
	for _, a := range addresses {
		candidates = append(candidates, types.PlaceCandidate{
			City:        a.City,
			County:      a.County,
			State:       a.State,
			Country:     a.Country,
			DisplayName: a.FormattedAddress,
		})
	}

	s.logger.Debug("reverse geocoded coordinate",
		"latitude", coords.Latitude,
		"longitude", coords.Longitude,
		"candidates", len(candidates),
	)
	return candidates, nil
}

// PlaceName applies the first-candidate policy: only the first match is
// considered and its city becomes the place name.
func PlaceName(candidates []types.PlaceCandidate) (string, error) {
	if len(candidates) == 0 {
		return "", ErrNoPlaceFound
	}
	if candidates[0].City == "" {
		return "", fmt.Errorf("%w: first candidate has no city", ErrNoPlaceFound)
	}
	return candidates[0].City, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
