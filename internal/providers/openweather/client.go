package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
)

// API Docs: https://openweathermap.org/current
// Sample request: https://api.openweathermap.org/data/2.5/weather?lat=51.5&lon=-0.12&units=metric&appid=KEY
const (
	baseURL = "https://api.openweathermap.org/data/2.5/weather"

	// consecutive failures before the breaker opens
	tripAfter = 5
)

var (
	ErrMissingAPIKey = errors.New("openweather api key is not configured")
	ErrCircuitOpen   = errors.New("openweather circuit breaker open")

	// errCallerGone marks calls abandoned by the caller; the breaker does not count them
	errCallerGone = errors.New("request abandoned by caller")
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	circuit    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

func NewClient(apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return NewClientWithBaseURL(baseURL, apiKey, timeout, logger)
}

func NewClientWithBaseURL(base, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	logger = logger.With("component", "openweather-client")

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= tripAfter
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errCallerGone)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    base,
		apiKey:     apiKey,
		circuit:    cb,
		logger:     logger,
	}
}

// GetCurrentWeather fetches current conditions in metric units.
// It never retries; the breaker only short-circuits while the API keeps failing.
func (c *Client) GetCurrentWeather(ctx context.Context, latitude, longitude float64) (*CurrentWeatherAPIResponse, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("lat", strconv.FormatFloat(latitude, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(longitude, 'f', -1, 64))
	q.Set("units", "metric")
	q.Set("appid", c.apiKey)
	u.RawQuery = q.Encode()

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, err := c.fetch(ctx, u.String())
		if err != nil && ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", errCallerGone, err)
		}
		return resp, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		return nil, err
	}

	apiResp, ok := result.(*CurrentWeatherAPIResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return apiResp, nil
}

func (c *Client) fetch(ctx context.Context, rawURL string) (*CurrentWeatherAPIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp CurrentWeatherAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.Debug("fetched current weather",
		"station", apiResp.Name,
		"observed_at", apiResp.Dt,
	)

	return &apiResp, nil
}
