package pipeline

// Phase is the position of a run in the resolution chain
type Phase string

const (
	PhaseIdle                 Phase = "idle"
	PhaseRequestingPermission Phase = "requesting_permission"
	PhaseResolvingPosition    Phase = "resolving_position"
	PhaseResolvingPlace       Phase = "resolving_place"
	PhaseResolvingWeather     Phase = "resolving_weather"
	PhaseComplete             Phase = "complete"
	PhaseFailed               Phase = "failed"
)

// Terminal reports whether no further transition happens without a new run
func (p Phase) Terminal() bool {
	return p == PhaseComplete || p == PhaseFailed
}

// FailureKind says which step ended a failed run
type FailureKind string

const (
	FailurePermissionDenied FailureKind = "permission_denied"
	// the gate could not produce an answer
	FailurePermissionUnavailable FailureKind = "permission_unavailable"
	FailurePositionUnavailable   FailureKind = "position_unavailable"
	FailureGeocodeFailed         FailureKind = "geocode_failed"
	FailureNoPlaceFound          FailureKind = "no_place_found"
	FailureWeatherFetchFailed    FailureKind = "weather_fetch_failed"
)

// User-visible messages. Every failure other than a denial shares one text.
const (
	MessagePermissionDenied = "Permission to access location was denied"
	MessageResolutionFailed = "Error getting location or temperature"
)

// Message returns the text shown to the user for this failure
func (k FailureKind) Message() string {
	if k == FailurePermissionDenied {
		return MessagePermissionDenied
	}
	return MessageResolutionFailed
}

// Status is the tagged variant describing a run: a phase, plus the failure
// kind when the phase is PhaseFailed.
type Status struct {
	Phase   Phase       `json:"phase"`
	Failure FailureKind `json:"failure,omitempty"`
}
