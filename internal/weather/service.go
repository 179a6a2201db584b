package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"current-weather/internal/providers/openweather"
	"current-weather/internal/types"
)

// ErrWeatherFetchFailed wraps every failure to obtain a reading:
// transport errors, non-success statuses and malformed payloads alike.
var ErrWeatherFetchFailed = errors.New("weather fetch failed")

type CurrentWeatherProvider interface {
	GetCurrentWeather(ctx context.Context, latitude, longitude float64) (*openweather.CurrentWeatherAPIResponse, error)
}

type Service interface {
	GetCurrentWeather(ctx context.Context, coords types.Coords) (*Reading, error)
}

type weatherService struct {
	provider CurrentWeatherProvider
	logger   *slog.Logger
}

func NewWeatherService(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) Service {
	return NewWeatherServiceWithProvider(openweather.NewClientWithBaseURL(baseURL, apiKey, timeout, logger), logger)
}

func NewWeatherServiceWithProvider(provider CurrentWeatherProvider, logger *slog.Logger) Service {
	return &weatherService{
		provider: provider,
		logger:   logger.With("component", "weather-service"),
	}
}

func (s *weatherService) GetCurrentWeather(ctx context.Context, coords types.Coords) (*Reading, error) {
	apiResponse, err := s.provider.GetCurrentWeather(ctx, coords.Latitude, coords.Longitude)
	if err != nil {
		s.logger.Error("failed to get current weather from provider",
			"latitude", coords.Latitude,
			"longitude", coords.Longitude,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %w", ErrWeatherFetchFailed, err)
	}

	reading, err := mapCurrentWeatherResponse(apiResponse)
	if err != nil {
		s.logger.Error("malformed weather payload", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrWeatherFetchFailed, err)
	}

	return reading, nil
}

func mapCurrentWeatherResponse(apiResponse *openweather.CurrentWeatherAPIResponse) (*Reading, error) {
	if apiResponse == nil {
		return nil, fmt.Errorf("weather response is nil")
	}
	if apiResponse.Main.Temp == nil {
		return nil, fmt.Errorf("weather response has no main.temp")
	}

	reading := &Reading{
		Temperature: types.NewTemperatureFromCelsius(*apiResponse.Main.Temp),
		ObservedAt:  time.Unix(apiResponse.Dt, 0).UTC(),
	}
	if apiResponse.Dt == 0 {
		reading.ObservedAt = time.Time{}
	}
	if len(apiResponse.Weather) > 0 {
		reading.Condition = apiResponse.Weather[0].Main
	}

	return reading, nil
}
