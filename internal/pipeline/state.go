package pipeline

import (
	"sync"
	"time"

	"current-weather/internal/daypart"
	"current-weather/internal/types"
)

// ResolutionState is everything the presentation layer reads.
// Optional values are nil until the step producing them succeeds.
type ResolutionState struct {
	RunID  string `json:"runId,omitempty"`
	Status Status `json:"status"`

	ErrorMessage       *string            `json:"errorMessage"`
	Coordinate         *types.Coords      `json:"coordinate"`
	PlaceName          *string            `json:"placeName"`
	TemperatureCelsius *float64           `json:"temperatureCelsius"`
	TimeOfDay          *daypart.TimeOfDay `json:"timeOfDay"`

	IsResolvingLocation     bool `json:"isResolvingLocation"`
	IsResolvingWeather      bool `json:"isResolvingWeather"`
	IsManualRefreshInFlight bool `json:"isManualRefreshInFlight"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// enter moves to phase and derives the loading flags from it, so the
// weather flag can only be up once a coordinate has been stored.
func (s *ResolutionState) enter(phase Phase) {
	s.Status = Status{Phase: phase}
	s.IsResolvingLocation = phase == PhaseRequestingPermission || phase == PhaseResolvingPosition
	s.IsResolvingWeather = phase == PhaseResolvingWeather
}

func (s *ResolutionState) fail(kind FailureKind) {
	s.enter(PhaseFailed)
	s.Status.Failure = kind
	msg := kind.Message()
	s.ErrorMessage = &msg
}

func (s ResolutionState) clone() ResolutionState {
	out := s
	if s.ErrorMessage != nil {
		v := *s.ErrorMessage
		out.ErrorMessage = &v
	}
	if s.Coordinate != nil {
		v := *s.Coordinate
		out.Coordinate = &v
	}
	if s.PlaceName != nil {
		v := *s.PlaceName
		out.PlaceName = &v
	}
	if s.TemperatureCelsius != nil {
		v := *s.TemperatureCelsius
		out.TemperatureCelsius = &v
	}
	if s.TimeOfDay != nil {
		v := *s.TimeOfDay
		out.TimeOfDay = &v
	}
	return out
}

// Store holds the single ResolutionState. The orchestrator is its only
// writer; every write is tagged with a run generation and writes from a
// superseded run are dropped.
type Store struct {
	mu          sync.RWMutex
	state       ResolutionState
	generation  uint64
	clock       Clock
	subscribers map[int]chan struct{}
	nextID      int
}

func NewStore(clock Clock) *Store {
	s := &Store{
		clock:       clock,
		subscribers: make(map[int]chan struct{}),
	}
	s.state.enter(PhaseIdle)
	s.state.UpdatedAt = clock.Now()
	return s
}

// Snapshot returns a deep copy of the current state
func (s *Store) Snapshot() ResolutionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe returns a channel signalled after every change and a function
// to stop receiving. Signals coalesce; readers call Snapshot.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan struct{}, 1)
	s.subscribers[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// begin starts a new generation with a fresh state. Only the manual
// refresh indicator survives since it runs on its own timer.
func (s *Store) begin(runID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.state = ResolutionState{
		RunID:                   runID,
		IsManualRefreshInFlight: s.state.IsManualRefreshInFlight,
	}
	s.state.enter(PhaseIdle)
	s.touchLocked()
	return s.generation
}

// apply mutates the state if gen is still the current generation
func (s *Store) apply(gen uint64, fn func(*ResolutionState)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return false
	}
	fn(&s.state)
	s.touchLocked()
	return true
}

// invalidate makes every in-flight run stale without touching the state
func (s *Store) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
}

func (s *Store) setManualRefresh(inFlight bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsManualRefreshInFlight = inFlight
	s.touchLocked()
}

func (s *Store) touchLocked() {
	s.state.UpdatedAt = s.clock.Now()
	for _, ch := range s.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
