package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"current-weather/internal/daypart"
	"current-weather/internal/location"
	"current-weather/internal/permission"
	"current-weather/internal/position"
	"current-weather/internal/types"
	"current-weather/internal/weather"

	"github.com/google/uuid"
)

// ZoneResolver maps a coordinate to its time zone. timezone.Service satisfies it.
type ZoneResolver interface {
	Location(latitude, longitude float64) (*time.Location, error)
}

// Dependencies are the collaborators a run calls, in order
type Dependencies struct {
	Gate     permission.Gate
	Position position.Source
	Geocoder location.Service
	Weather  weather.Service

	// Zones is optional. When nil the time of day is read from the clock's own zone.
	Zones   ZoneResolver
	Clock   Clock
	Metrics *Metrics
}

// Orchestrator drives the permission, position, place and weather steps
// strictly in sequence and publishes every transition to its Store.
type Orchestrator struct {
	deps   Dependencies
	store  *Store
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	gen    uint64
	closed bool
}

// NewOrchestrator creates an orchestrator writing to store
func NewOrchestrator(store *Store, deps Dependencies, logger *slog.Logger) *Orchestrator {
	if deps.Clock == nil {
		deps.Clock = RealClock()
	}
	return &Orchestrator{
		deps:   deps,
		store:  store,
		logger: logger.With("component", "pipeline"),
	}
}

// Store returns the state store this orchestrator writes to
func (o *Orchestrator) Store() *Store {
	return o.store
}

type run struct {
	ctx    context.Context
	gen    uint64
	logger *slog.Logger
}

// Run executes one full resolution and returns its final status. Starting a
// run cancels the one in flight; a superseded run stops writing to the
// store and returns the status it reached.
func (o *Orchestrator) Run(ctx context.Context) Status {
	r, release, ok := o.start(ctx)
	if !ok {
		return o.store.Snapshot().Status
	}
	defer release()

	started := o.deps.Clock.Now()
	status, current := o.resolve(r)

	outcome := string(status.Phase)
	if status.Phase == PhaseFailed {
		outcome = string(status.Failure)
	}
	if !current {
		outcome = outcomeSuperseded
	}
	elapsed := o.deps.Clock.Now().Sub(started)
	o.deps.Metrics.observe(outcome, elapsed)
	r.logger.Info("pipeline run finished", "outcome", outcome, "duration", elapsed)

	return status
}

// start cancels the previous run and opens a new store generation
func (o *Orchestrator) start(parent context.Context) (*run, func(), bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil, nil, false
	}
	// The new generation is opened before the old run is cancelled so that
	// nothing the old run does after waking can reach the store.
	runID := uuid.NewString()
	gen := o.store.begin(runID)
	o.gen = gen
	if o.cancel != nil {
		o.cancel()
	}

	ctx, cancel := context.WithCancel(parent)
	o.cancel = cancel
	r := &run{
		ctx:    ctx,
		gen:    gen,
		logger: o.logger.With("run_id", runID),
	}
	r.logger.Debug("pipeline run started")

	release := func() {
		cancel()
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.gen == gen {
			o.cancel = nil
		}
	}
	return r, release, true
}

// Close cancels the run in flight. Later runs are ignored and the state is
// left as it was.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.closed = true
	o.store.invalidate()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
}

// resolve walks the chain. The bool is false once a newer run owns the store.
func (o *Orchestrator) resolve(r *run) (Status, bool) {
	if !o.transition(r, func(s *ResolutionState) { s.enter(PhaseRequestingPermission) }) {
		return Status{Phase: PhaseRequestingPermission}, false
	}

	decision, err := o.deps.Gate.RequestAuthorization(r.ctx)
	if err != nil {
		r.logger.Error("location authorization failed", "error", err)
		return o.fail(r, FailurePermissionUnavailable)
	}
	if decision != permission.Granted {
		r.logger.Info("location permission denied")
		return o.fail(r, FailurePermissionDenied)
	}

	if !o.transition(r, func(s *ResolutionState) { s.enter(PhaseResolvingPosition) }) {
		return Status{Phase: PhaseResolvingPosition}, false
	}

	coords, err := o.deps.Position.GetCurrentCoordinate(r.ctx)
	if err == nil {
		err = coords.Validate()
	}
	if err != nil {
		r.logger.Error("failed to resolve position", "error", err)
		return o.fail(r, FailurePositionUnavailable)
	}

	// The coordinate is stored before the weather flag can go up
	if !o.transition(r, func(s *ResolutionState) {
		s.Coordinate = &coords
		s.enter(PhaseResolvingPlace)
	}) {
		return Status{Phase: PhaseResolvingPlace}, false
	}

	candidates, err := o.deps.Geocoder.ReverseGeocode(r.ctx, coords)
	if err != nil {
		r.logger.Error("failed to reverse geocode", "coordinate", coords.String(), "error", err)
		return o.fail(r, FailureGeocodeFailed)
	}
	placeName, err := location.PlaceName(candidates)
	if err != nil {
		r.logger.Warn("no place found", "coordinate", coords.String(), "candidates", len(candidates))
		return o.fail(r, FailureNoPlaceFound)
	}

	if !o.transition(r, func(s *ResolutionState) {
		s.PlaceName = &placeName
		s.enter(PhaseResolvingWeather)
	}) {
		return Status{Phase: PhaseResolvingWeather}, false
	}

	reading, err := o.deps.Weather.GetCurrentWeather(r.ctx, coords)
	if err != nil {
		r.logger.Error("failed to fetch weather", "coordinate", coords.String(), "error", err)
		return o.fail(r, FailureWeatherFetchFailed)
	}

	celsius := reading.Temperature.Celsius
	tod := o.timeOfDay(coords, r.logger)

	if !o.transition(r, func(s *ResolutionState) {
		s.TemperatureCelsius = &celsius
		s.TimeOfDay = &tod
		s.enter(PhaseComplete)
	}) {
		return Status{Phase: PhaseComplete}, false
	}

	r.logger.Info("resolved current weather",
		"place", placeName,
		"temperature_celsius", celsius,
		"time_of_day", tod,
	)
	return Status{Phase: PhaseComplete}, true
}

// transition writes to the store unless this run has been superseded
func (o *Orchestrator) transition(r *run, fn func(*ResolutionState)) bool {
	return o.store.apply(r.gen, fn)
}

func (o *Orchestrator) fail(r *run, kind FailureKind) (Status, bool) {
	status := Status{Phase: PhaseFailed, Failure: kind}
	if !o.transition(r, func(s *ResolutionState) { s.fail(kind) }) {
		return status, false
	}
	return status, true
}

// timeOfDay classifies the clock reading at the moment of the call, not
// the observation time of the weather reading.
func (o *Orchestrator) timeOfDay(coords types.Coords, logger *slog.Logger) daypart.TimeOfDay {
	now := o.deps.Clock.Now()
	if o.deps.Zones != nil {
		loc, err := o.deps.Zones.Location(coords.Latitude, coords.Longitude)
		if err != nil {
			logger.Warn("failed to resolve time zone, using clock zone", "error", err)
		} else {
			now = now.In(loc)
		}
	}
	return daypart.At(now)
}
