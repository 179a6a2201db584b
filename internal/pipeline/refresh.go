package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// RefreshCooldown is how long the manual refresh indicator stays up after
// a trigger, independent of how long the run takes.
const RefreshCooldown = 1000 * time.Millisecond

// Runner executes one pipeline run
type Runner interface {
	Run(ctx context.Context) Status
}

// Refresher starts user-initiated runs
type Refresher struct {
	ctx    context.Context
	runner Runner
	store  *Store
	clock  Clock
	logger *slog.Logger
}

// NewRefresher creates a refresher. Runs it starts use ctx as their parent.
func NewRefresher(ctx context.Context, runner Runner, store *Store, clock Clock, logger *slog.Logger) *Refresher {
	if clock == nil {
		clock = RealClock()
	}
	return &Refresher{
		ctx:    ctx,
		runner: runner,
		store:  store,
		clock:  clock,
		logger: logger.With("component", "refresher"),
	}
}

// TriggerRefresh raises the manual refresh indicator, starts a fresh run
// without waiting for it and clears the indicator after RefreshCooldown.
func (r *Refresher) TriggerRefresh() {
	r.store.setManualRefresh(true)
	r.logger.Debug("manual refresh triggered")

	go r.runner.Run(r.ctx)

	r.clock.AfterFunc(RefreshCooldown, func() {
		r.store.setManualRefresh(false)
	})
}
