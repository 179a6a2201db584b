package permission

import (
	"context"
	"fmt"
	"strings"
)

// Decision is the outcome of a location authorization request
type Decision string

const (
	Granted Decision = "granted"
	Denied  Decision = "denied"
)

// Gate obtains or denies authorization to read the device location.
// Implementations may prompt the user.
type Gate interface {
	RequestAuthorization(ctx context.Context) (Decision, error)
}

// GateFunc adapts a function to the Gate interface
type GateFunc func(ctx context.Context) (Decision, error)

func (f GateFunc) RequestAuthorization(ctx context.Context) (Decision, error) {
	return f(ctx)
}

type staticGate struct {
	decision Decision
}

// NewStaticGate returns a gate that always answers with the given decision
func NewStaticGate(decision Decision) Gate {
	return &staticGate{decision: decision}
}

func (g *staticGate) RequestAuthorization(ctx context.Context) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Denied, err
	}
	return g.decision, nil
}

// ParseDecision converts a configuration value into a Decision
func ParseDecision(s string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(Granted):
		return Granted, nil
	case string(Denied):
		return Denied, nil
	default:
		return Denied, fmt.Errorf("unknown permission decision %q", s)
	}
}

// ParseAnswer maps a free-form yes/no answer to a Decision.
// Anything other than y/yes is a denial.
func ParseAnswer(s string) Decision {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return Granted
	default:
		return Denied
	}
}
