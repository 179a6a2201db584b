package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"current-weather/internal/daypart"
	"current-weather/internal/permission"
	"current-weather/internal/types"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	clock    *fakeClock
	gate     *fakeGate
	position *fakePosition
	geocoder *fakeGeocoder
	weather  *fakeWeather
	metrics  *Metrics
	store    *Store
	orch     *Orchestrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		clock:    newFakeClock(time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)),
		gate:     &fakeGate{decision: permission.Granted},
		position: &fakePosition{coords: types.NewCoords(51.5, -0.12)},
		geocoder: &fakeGeocoder{candidates: []types.PlaceCandidate{{City: "London", Country: "United Kingdom"}}},
		weather:  &fakeWeather{celsius: 14.2},
		metrics:  NewMetrics(prometheus.NewRegistry()),
	}
	f.store = NewStore(f.clock)
	f.orch = f.newOrchestrator(nil)
	return f
}

func (f *fixture) newOrchestrator(zones ZoneResolver) *Orchestrator {
	return NewOrchestrator(f.store, Dependencies{
		Gate:     f.gate,
		Position: f.position,
		Geocoder: f.geocoder,
		Weather:  f.weather,
		Zones:    zones,
		Clock:    f.clock,
		Metrics:  f.metrics,
	}, testLogger())
}

func TestOrchestrator_Run_Success(t *testing.T) {
	f := newFixture(t)

	status := f.orch.Run(context.Background())
	assert.Equal(t, Status{Phase: PhaseComplete}, status)

	state := f.store.Snapshot()
	assert.NotEmpty(t, state.RunID)
	assert.Equal(t, status, state.Status)
	assert.Nil(t, state.ErrorMessage)
	require.NotNil(t, state.Coordinate)
	assert.Equal(t, types.NewCoords(51.5, -0.12), *state.Coordinate)
	require.NotNil(t, state.PlaceName)
	assert.Equal(t, "London", *state.PlaceName)
	require.NotNil(t, state.TemperatureCelsius)
	assert.InDelta(t, 14.2, *state.TemperatureCelsius, 1e-9)
	require.NotNil(t, state.TimeOfDay)
	assert.Equal(t, daypart.Morning, *state.TimeOfDay)
	assert.False(t, state.IsResolvingLocation)
	assert.False(t, state.IsResolvingWeather)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.runs.WithLabelValues("complete")))
}

func TestOrchestrator_Run_PermissionDenied(t *testing.T) {
	tests := []struct {
		name     string
		decision permission.Decision
	}{
		{name: "denied", decision: permission.Denied},
		{name: "unrecognised decision", decision: permission.Decision("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.gate.decision = tt.decision

			status := f.orch.Run(context.Background())
			assert.Equal(t, Status{Phase: PhaseFailed, Failure: FailurePermissionDenied}, status)

			// Nothing downstream of the gate is touched
			assert.Equal(t, int32(1), f.gate.calls.Load())
			assert.Zero(t, f.position.calls.Load())
			assert.Zero(t, f.geocoder.calls.Load())
			assert.Zero(t, f.weather.calls.Load())

			state := f.store.Snapshot()
			require.NotNil(t, state.ErrorMessage)
			assert.Equal(t, MessagePermissionDenied, *state.ErrorMessage)
			assert.False(t, state.IsResolvingLocation)
			assert.False(t, state.IsResolvingWeather)
			assert.Nil(t, state.Coordinate)
			assert.Nil(t, state.PlaceName)
			assert.Nil(t, state.TemperatureCelsius)
		})
	}
}

func TestOrchestrator_Run_GateError(t *testing.T) {
	f := newFixture(t)
	f.gate.err = errors.New("authorization service unavailable")

	status := f.orch.Run(context.Background())
	assert.Equal(t, Status{Phase: PhaseFailed, Failure: FailurePermissionUnavailable}, status)
	assert.Zero(t, f.position.calls.Load())

	state := f.store.Snapshot()
	require.NotNil(t, state.ErrorMessage)
	assert.Equal(t, MessageResolutionFailed, *state.ErrorMessage)
}

func TestOrchestrator_Run_Failures(t *testing.T) {
	tests := []struct {
		name         string
		setup        func(f *fixture)
		wantFailure  FailureKind
		wantCoord    bool
		wantPlace    bool
		wantGeocodes int32
		wantWeather  int32
	}{
		{
			name: "gate error",
			setup: func(f *fixture) {
				f.gate.decision = permission.Granted
				f.gate.err = errors.New("prompt closed")
			},
			wantFailure: FailurePermissionUnavailable,
		},
		{
			name:        "position unavailable",
			setup:       func(f *fixture) { f.position.err = errors.New("no fix") },
			wantFailure: FailurePositionUnavailable,
		},
		{
			name:        "position out of range",
			setup:       func(f *fixture) { f.position.coords = types.NewCoords(95, 0) },
			wantFailure: FailurePositionUnavailable,
		},
		{
			name:         "geocoder error",
			setup:        func(f *fixture) { f.geocoder.err = errors.New("503") },
			wantFailure:  FailureGeocodeFailed,
			wantCoord:    true,
			wantGeocodes: 1,
		},
		{
			name:         "no candidates",
			setup:        func(f *fixture) { f.geocoder.candidates = nil },
			wantFailure:  FailureNoPlaceFound,
			wantCoord:    true,
			wantGeocodes: 1,
		},
		{
			name: "first candidate has no city",
			setup: func(f *fixture) {
				f.geocoder.candidates = []types.PlaceCandidate{{Country: "Ocean"}, {City: "Paris"}}
			},
			wantFailure:  FailureNoPlaceFound,
			wantCoord:    true,
			wantGeocodes: 1,
		},
		{
			name:         "weather fetch fails",
			setup:        func(f *fixture) { f.weather.err = errors.New("401") },
			wantFailure:  FailureWeatherFetchFailed,
			wantCoord:    true,
			wantPlace:    true,
			wantGeocodes: 1,
			wantWeather:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)

			status := f.orch.Run(context.Background())
			assert.Equal(t, Status{Phase: PhaseFailed, Failure: tt.wantFailure}, status)
			assert.Equal(t, tt.wantGeocodes, f.geocoder.calls.Load())
			assert.Equal(t, tt.wantWeather, f.weather.calls.Load())

			state := f.store.Snapshot()
			require.NotNil(t, state.ErrorMessage)
			assert.Equal(t, MessageResolutionFailed, *state.ErrorMessage)
			assert.Equal(t, tt.wantCoord, state.Coordinate != nil)
			assert.Equal(t, tt.wantPlace, state.PlaceName != nil)
			if tt.wantPlace {
				assert.Equal(t, "London", *state.PlaceName)
			}
			assert.Nil(t, state.TemperatureCelsius)
			assert.Nil(t, state.TimeOfDay)
			assert.False(t, state.IsResolvingLocation)
			assert.False(t, state.IsResolvingWeather)

			assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.runs.WithLabelValues(string(tt.wantFailure))))
		})
	}
}

func TestOrchestrator_Run_LoadingFlags(t *testing.T) {
	f := newFixture(t)

	var duringPosition, duringGeocode, duringWeather ResolutionState
	f.position.onCall = func() { duringPosition = f.store.Snapshot() }
	f.geocoder.onCall = func() { duringGeocode = f.store.Snapshot() }
	f.weather.onCall = func(ctx context.Context) error {
		duringWeather = f.store.Snapshot()
		return nil
	}

	f.orch.Run(context.Background())

	assert.Equal(t, PhaseResolvingPosition, duringPosition.Status.Phase)
	assert.True(t, duringPosition.IsResolvingLocation)
	assert.False(t, duringPosition.IsResolvingWeather)

	assert.Equal(t, PhaseResolvingPlace, duringGeocode.Status.Phase)
	assert.False(t, duringGeocode.IsResolvingLocation)
	assert.False(t, duringGeocode.IsResolvingWeather)
	assert.NotNil(t, duringGeocode.Coordinate)

	assert.Equal(t, PhaseResolvingWeather, duringWeather.Status.Phase)
	assert.True(t, duringWeather.IsResolvingWeather)
	assert.NotNil(t, duringWeather.Coordinate)
	require.NotNil(t, duringWeather.PlaceName)
	assert.Equal(t, "London", *duringWeather.PlaceName)

	after := f.store.Snapshot()
	assert.False(t, after.IsResolvingWeather)
}

func TestOrchestrator_Run_ResetsPreviousResult(t *testing.T) {
	f := newFixture(t)
	f.weather.err = errors.New("timeout")
	f.orch.Run(context.Background())
	require.NotNil(t, f.store.Snapshot().ErrorMessage)

	f.weather.err = nil
	status := f.orch.Run(context.Background())
	assert.Equal(t, PhaseComplete, status.Phase)

	state := f.store.Snapshot()
	assert.Nil(t, state.ErrorMessage)
	require.NotNil(t, state.TemperatureCelsius)
}

func TestOrchestrator_Run_CoordinateZone(t *testing.T) {
	f := newFixture(t)
	// 00:30 UTC is 09:30 in Tokyo
	f.clock = newFakeClock(time.Date(2025, 1, 15, 0, 30, 0, 0, time.UTC))
	f.store = NewStore(f.clock)
	tokyo := time.FixedZone("JST", 9*60*60)

	orch := f.newOrchestrator(fixedZone{loc: tokyo})
	orch.Run(context.Background())

	state := f.store.Snapshot()
	require.NotNil(t, state.TimeOfDay)
	assert.Equal(t, daypart.Morning, *state.TimeOfDay)

	// A failed lookup falls back to the clock's own zone
	orch = f.newOrchestrator(fixedZone{err: errors.New("ocean")})
	orch.Run(context.Background())

	state = f.store.Snapshot()
	require.NotNil(t, state.TimeOfDay)
	assert.Equal(t, daypart.Night, *state.TimeOfDay)
}

func TestOrchestrator_Run_Supersedes(t *testing.T) {
	f := newFixture(t)

	entered := make(chan struct{})
	f.weather.onCall = func(ctx context.Context) error {
		if f.weather.calls.Load() == 1 {
			close(entered)
			<-ctx.Done()
			return ctx.Err()
		}
		return nil
	}

	done := make(chan Status, 1)
	go func() { done <- f.orch.Run(context.Background()) }()
	<-entered

	second := f.orch.Run(context.Background())
	assert.Equal(t, Status{Phase: PhaseComplete}, second)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("superseded run did not return")
	}

	state := f.store.Snapshot()
	assert.Equal(t, PhaseComplete, state.Status.Phase)
	assert.Nil(t, state.ErrorMessage)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.runs.WithLabelValues(outcomeSuperseded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.runs.WithLabelValues("complete")))
}

func TestOrchestrator_Close(t *testing.T) {
	f := newFixture(t)

	entered := make(chan struct{})
	f.weather.onCall = func(ctx context.Context) error {
		close(entered)
		<-ctx.Done()
		return ctx.Err()
	}

	done := make(chan Status, 1)
	go func() { done <- f.orch.Run(context.Background()) }()
	<-entered

	f.orch.Close()
	<-done

	// The state is left where the cancelled run was
	state := f.store.Snapshot()
	assert.Equal(t, PhaseResolvingWeather, state.Status.Phase)
	assert.Nil(t, state.ErrorMessage)

	f.orch.Run(context.Background())
	assert.Equal(t, int32(1), f.gate.calls.Load())
}
