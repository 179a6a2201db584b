package pipeline

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"current-weather/internal/permission"
	"current-weather/internal/types"
	"current-weather/internal/weather"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClock only moves when Advance is called
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Time
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due, pending []*fakeTimer
	for _, t := range c.timers {
		if t.stopped {
			continue
		}
		if !t.at.After(c.now) {
			due = append(due, t)
		} else {
			pending = append(pending, t)
		}
	}
	c.timers = pending
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.f()
	}
}

type fakeGate struct {
	decision permission.Decision
	err      error
	calls    atomic.Int32
}

func (g *fakeGate) RequestAuthorization(ctx context.Context) (permission.Decision, error) {
	g.calls.Add(1)
	return g.decision, g.err
}

type fakePosition struct {
	coords types.Coords
	err    error
	calls  atomic.Int32
	onCall func()
}

func (p *fakePosition) GetCurrentCoordinate(ctx context.Context) (types.Coords, error) {
	p.calls.Add(1)
	if p.onCall != nil {
		p.onCall()
	}
	return p.coords, p.err
}

type fakeGeocoder struct {
	candidates []types.PlaceCandidate
	err        error
	calls      atomic.Int32
	onCall     func()
}

func (g *fakeGeocoder) ReverseGeocode(ctx context.Context, coords types.Coords) ([]types.PlaceCandidate, error) {
	g.calls.Add(1)
	if g.onCall != nil {
		g.onCall()
	}
	return g.candidates, g.err
}

type fakeWeather struct {
	celsius float64
	err     error
	calls   atomic.Int32
	onCall  func(ctx context.Context) error
}

func (w *fakeWeather) GetCurrentWeather(ctx context.Context, coords types.Coords) (*weather.Reading, error) {
	w.calls.Add(1)
	if w.onCall != nil {
		if err := w.onCall(ctx); err != nil {
			return nil, err
		}
	}
	if w.err != nil {
		return nil, w.err
	}
	return &weather.Reading{Temperature: types.NewTemperatureFromCelsius(w.celsius)}, nil
}

type fixedZone struct {
	loc *time.Location
	err error
}

func (z fixedZone) Location(latitude, longitude float64) (*time.Location, error) {
	return z.loc, z.err
}
