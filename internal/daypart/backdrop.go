package daypart

// Backdrops maps each time of day to a background image reference
type Backdrops map[TimeOfDay]string

// DefaultBackdrops are bundled with the clients
func DefaultBackdrops() Backdrops {
	return Backdrops{
		Morning:   "backdrops/morning.jpg",
		Afternoon: "backdrops/afternoon.jpg",
		Evening:   "backdrops/evening.jpg",
		Night:     "backdrops/night.jpg",
	}
}

// WithOverrides returns a copy where every non-empty override replaces the default
func (b Backdrops) WithOverrides(overrides Backdrops) Backdrops {
	out := make(Backdrops, len(b))
	for k, v := range b {
		out[k] = v
	}
	for k, v := range overrides {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// For returns the image for tod, or "" when no time of day is known yet
func (b Backdrops) For(tod *TimeOfDay) string {
	if tod == nil {
		return ""
	}
	return b[*tod]
}
