package position

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"current-weather/internal/providers/ipapi"
	"current-weather/internal/types"
)

// ErrPositionUnavailable wraps every failure to produce a coordinate fix
var ErrPositionUnavailable = errors.New("position unavailable")

// Source yields a single current coordinate fix per call
type Source interface {
	GetCurrentCoordinate(ctx context.Context) (types.Coords, error)
}

// IPLookupProvider geolocates the caller by public address
type IPLookupProvider interface {
	Lookup(ctx context.Context) (*ipapi.LookupAPIResponse, error)
}

type fixedSource struct {
	coords types.Coords
}

// NewFixedSource always reports the configured coordinate
func NewFixedSource(coords types.Coords) Source {
	return &fixedSource{coords: coords}
}

func (s *fixedSource) GetCurrentCoordinate(ctx context.Context) (types.Coords, error) {
	if err := ctx.Err(); err != nil {
		return types.Coords{}, fmt.Errorf("%w: %v", ErrPositionUnavailable, err)
	}
	if err := s.coords.Validate(); err != nil {
		return types.Coords{}, fmt.Errorf("%w: %w", ErrPositionUnavailable, err)
	}
	return s.coords, nil
}

type ipSource struct {
	provider IPLookupProvider
	logger   *slog.Logger
}

// NewIPSource creates a source backed by the ip-api.com client
func NewIPSource(baseURL string, logger *slog.Logger) Source {
	return NewIPSourceWithProvider(ipapi.NewClientWithBaseURL(baseURL), logger)
}

// NewIPSourceWithProvider creates an IP source with a custom provider.
// This is useful for testing with mock providers
func NewIPSourceWithProvider(provider IPLookupProvider, logger *slog.Logger) Source {
	return &ipSource{
		provider: provider,
		logger:   logger.With("component", "ip-position-source"),
	}
}

func (s *ipSource) GetCurrentCoordinate(ctx context.Context) (types.Coords, error) {
	resp, err := s.provider.Lookup(ctx)
	if err != nil {
		return types.Coords{}, fmt.Errorf("%w: failed to geolocate address: %v", ErrPositionUnavailable, err)
	}

	coords := types.NewCoords(resp.Lat, resp.Lon)
	if err := coords.Validate(); err != nil {
		return types.Coords{}, fmt.Errorf("%w: %w", ErrPositionUnavailable, err)
	}

	s.logger.Debug("resolved position from address",
		"latitude", coords.Latitude,
		"longitude", coords.Longitude,
		"city", resp.City,
	)

	return coords, nil
}

type timeoutSource struct {
	source  Source
	timeout time.Duration
}

// WithTimeout bounds every fix taken from source
func WithTimeout(source Source, timeout time.Duration) Source {
	if timeout <= 0 {
		return source
	}
	return &timeoutSource{source: source, timeout: timeout}
}

func (s *timeoutSource) GetCurrentCoordinate(ctx context.Context) (types.Coords, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	coords, err := s.source.GetCurrentCoordinate(ctx)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrPositionUnavailable) {
			return types.Coords{}, fmt.Errorf("%w: no fix within %s", ErrPositionUnavailable, s.timeout)
		}
		return types.Coords{}, err
	}
	return coords, nil
}
