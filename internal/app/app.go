package app

import (
	"errors"
	"fmt"
	"log/slog"

	"current-weather/internal/config"
	"current-weather/internal/daypart"
	"current-weather/internal/location"
	"current-weather/internal/permission"
	"current-weather/internal/pipeline"
	"current-weather/internal/position"
	"current-weather/internal/timezone"
	"current-weather/internal/types"
	"current-weather/internal/weather"

	"github.com/prometheus/client_golang/prometheus"
)

// ErrInteractiveConsent is returned when consent must be asked but the
// front end has no way to ask
var ErrInteractiveConsent = errors.New("prompt consent requires an interactive client")

// Components is everything a front end needs to drive and read the pipeline
type Components struct {
	Store        *pipeline.Store
	Orchestrator *pipeline.Orchestrator
	Clock        pipeline.Clock
	Backdrops    daypart.Backdrops
}

// Build wires the pipeline from configuration. gate decides location
// access; reg may be nil to skip metric registration.
func Build(cfg *config.Config, gate permission.Gate, reg prometheus.Registerer, logger *slog.Logger) (*Components, error) {
	source, err := NewPositionSource(cfg, logger)
	if err != nil {
		return nil, err
	}

	geocoder, err := NewGeocoder(cfg, logger)
	if err != nil {
		return nil, err
	}

	zones, err := NewZoneResolver(cfg)
	if err != nil {
		return nil, err
	}

	clock := pipeline.RealClock()
	store := pipeline.NewStore(clock)
	orch := pipeline.NewOrchestrator(store, pipeline.Dependencies{
		Gate:     gate,
		Position: source,
		Geocoder: geocoder,
		Weather:  weather.NewWeatherService(cfg.Weather.BaseURL, cfg.Weather.APIKey, cfg.Weather.Timeout, logger),
		Zones:    zones,
		Clock:    clock,
		Metrics:  pipeline.NewMetrics(reg),
	}, logger)

	logger.Info("pipeline initialized",
		"position_source", cfg.Position.Source,
		"geocoder", cfg.Geocoder.Provider,
		"time_of_day_zone", cfg.App.TimeOfDayZone,
	)

	return &Components{
		Store:        store,
		Orchestrator: orch,
		Clock:        clock,
		Backdrops:    NewBackdrops(cfg),
	}, nil
}

// NewStaticGate answers with the configured consent. A "prompt" consent
// cannot be answered without a user and yields ErrInteractiveConsent.
func NewStaticGate(cfg *config.Config) (permission.Gate, error) {
	if cfg.Location.Consent == "prompt" {
		return nil, ErrInteractiveConsent
	}
	decision, err := permission.ParseDecision(cfg.Location.Consent)
	if err != nil {
		return nil, fmt.Errorf("failed to read location consent: %w", err)
	}
	return permission.NewStaticGate(decision), nil
}

// NewPositionSource returns the configured source bounded by the position timeout
func NewPositionSource(cfg *config.Config, logger *slog.Logger) (position.Source, error) {
	var source position.Source
	switch cfg.Position.Source {
	case "fixed":
		source = position.NewFixedSource(types.NewCoords(cfg.Position.Latitude, cfg.Position.Longitude))
	case "ipapi":
		source = position.NewIPSource(cfg.Position.BaseURL, logger)
	default:
		return nil, fmt.Errorf("unknown position source %q", cfg.Position.Source)
	}
	return position.WithTimeout(source, cfg.Position.Timeout), nil
}

// NewGeocoder returns the configured reverse geocoding backend
func NewGeocoder(cfg *config.Config, logger *slog.Logger) (location.Service, error) {
	switch cfg.Geocoder.Provider {
	case "nominatim":
		return location.NewNominatimService(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, logger), nil
	case "google":
		return location.NewGoogleService(cfg.Geocoder.APIKey, logger), nil
	default:
		return nil, fmt.Errorf("unknown geocoder provider %q", cfg.Geocoder.Provider)
	}
}

// NewZoneResolver returns nil for "local", which keeps the host clock zone
func NewZoneResolver(cfg *config.Config) (pipeline.ZoneResolver, error) {
	switch cfg.App.TimeOfDayZone {
	case "local":
		return nil, nil
	case "coordinate":
		svc, err := timezone.NewService()
		if err != nil {
			return nil, err
		}
		return svc, nil
	default:
		return nil, fmt.Errorf("unknown time of day zone %q", cfg.App.TimeOfDayZone)
	}
}

// NewBackdrops returns the default images with configured overrides applied
func NewBackdrops(cfg *config.Config) daypart.Backdrops {
	return daypart.DefaultBackdrops().WithOverrides(daypart.Backdrops{
		daypart.Morning:   cfg.Backdrops.Morning,
		daypart.Afternoon: cfg.Backdrops.Afternoon,
		daypart.Evening:   cfg.Backdrops.Evening,
		daypart.Night:     cfg.Backdrops.Night,
	})
}
