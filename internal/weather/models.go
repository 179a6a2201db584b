package weather

import (
	"time"

	"current-weather/internal/types"
)

// Reading is the current temperature at a coordinate
type Reading struct {
	Temperature types.Temperature `json:"temperature"`
	ObservedAt  time.Time         `json:"observedAt"`
	Condition   string            `json:"condition,omitempty"`
}
