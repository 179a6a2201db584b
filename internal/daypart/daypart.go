package daypart

import "time"

// TimeOfDay is a coarse bucket of the wall-clock hour
type TimeOfDay string

const (
	Morning   TimeOfDay = "Morning"
	Afternoon TimeOfDay = "Afternoon"
	Evening   TimeOfDay = "Evening"
	Night     TimeOfDay = "Night"
)

// All lists every bucket in chronological order starting at dawn
var All = []TimeOfDay{Morning, Afternoon, Evening, Night}

// Classify buckets an hour of day. Ranges are half-open:
// [6,12) Morning, [12,16) Afternoon, [16,19) Evening, everything else Night.
func Classify(hour int) TimeOfDay {
	switch {
	case hour >= 6 && hour < 12:
		return Morning
	case hour >= 12 && hour < 16:
		return Afternoon
	case hour >= 16 && hour < 19:
		return Evening
	default:
		return Night
	}
}

// At classifies the hour of t in t's own location
func At(t time.Time) TimeOfDay {
	return Classify(t.Hour())
}
