package tui

import (
	"context"
	"errors"
	"sync"

	"current-weather/internal/permission"

	tea "github.com/charmbracelet/bubbletea"
)

// ConsentRequestMsg asks the model to show the consent question. The
// model answers on Reply exactly once.
type ConsentRequestMsg struct {
	Reply chan<- permission.Decision
}

var errNotAttached = errors.New("consent gate is not attached to a program")

// ConsentGate is a permission.Gate answered by the user inside the program
type ConsentGate struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func NewConsentGate() *ConsentGate {
	return &ConsentGate{}
}

// Attach sets the function used to reach the program, usually tea.Program.Send
func (g *ConsentGate) Attach(send func(tea.Msg)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.send = send
}

func (g *ConsentGate) RequestAuthorization(ctx context.Context) (permission.Decision, error) {
	g.mu.Lock()
	send := g.send
	g.mu.Unlock()
	if send == nil {
		return permission.Denied, errNotAttached
	}

	reply := make(chan permission.Decision, 1)
	send(ConsentRequestMsg{Reply: reply})

	select {
	case <-ctx.Done():
		return permission.Denied, ctx.Err()
	case d := <-reply:
		return d, nil
	}
}
