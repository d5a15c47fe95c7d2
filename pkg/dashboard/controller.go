// Package dashboard holds the run state shown by the web dashboard: a busy
// flag, the user-facing error line and the ordered list of category averages.
package dashboard

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Sternrassler/teaching-price-dashboard/pkg/aggregator"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	busyGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_run_in_progress",
		Help: "1 while an aggregation run is in progress",
	})

	triggersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_triggers_total",
		Help: "Run triggers by result (started, ignored)",
	}, []string{"result"})
)

// Runner performs one aggregation run.
type Runner interface {
	Run(ctx context.Context, onResult func(aggregator.CategoryAverage)) ([]aggregator.CategoryAverage, error)
}

// Option configures a Controller.
type Option func(*Controller)

// WithUpdateHook registers fn to receive every published state.
// fn is called with the controller lock released.
func WithUpdateHook(fn func(State)) Option {
	return func(c *Controller) {
		c.onUpdate = fn
	}
}

// Controller owns the dashboard state and starts runs.
type Controller struct {
	runner   Runner
	onUpdate func(State)
	logger   zerolog.Logger

	mu    sync.RWMutex
	state State
	wg    sync.WaitGroup
}

// NewController creates an idle controller.
func NewController(runner Runner, opts ...Option) *Controller {
	c := &Controller{
		runner: runner,
		logger: log.With().Str("component", "dashboard").Logger(),
		state: State{
			Status:  StatusIdle,
			Results: []aggregator.CategoryAverage{},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Trigger starts a run in the background. It returns false, and does nothing,
// while a run is already in progress.
func (c *Controller) Trigger() (uuid.UUID, bool) {
	c.mu.Lock()
	if c.state.Busy {
		c.mu.Unlock()
		triggersTotal.WithLabelValues("ignored").Inc()
		c.logger.Debug().Msg("Trigger ignored, run in progress")
		return uuid.Nil, false
	}

	runID := uuid.New()
	c.state = State{
		Status:    StatusRunning,
		Busy:      true,
		Results:   []aggregator.CategoryAverage{},
		RunID:     runID,
		StartedAt: time.Now(),
	}
	snapshot := c.state
	c.wg.Add(1)
	c.mu.Unlock()

	triggersTotal.WithLabelValues("started").Inc()
	busyGauge.Set(1)
	c.publish(snapshot)

	go c.run(runID)

	return runID, true
}

func (c *Controller) run(runID uuid.UUID) {
	defer c.wg.Done()

	logger := c.logger.With().Str("run_id", runID.String()).Logger()
	ctx := logger.WithContext(context.Background())

	logger.Info().Msg("Run started")

	results, err := c.runner.Run(ctx, func(r aggregator.CategoryAverage) {
		c.mu.Lock()
		next := make([]aggregator.CategoryAverage, 0, len(c.state.Results)+1)
		next = append(append(next, c.state.Results...), r)
		c.state.Results = next
		snapshot := c.state
		c.mu.Unlock()

		c.publish(snapshot)
	})

	c.mu.Lock()
	c.state.Busy = false
	c.state.FinishedAt = time.Now()
	if results != nil {
		c.state.Results = slices.Clone(results)
	}
	if err != nil {
		c.state.Status = StatusFailed
		c.state.Error = FailureMessage
	} else {
		c.state.Status = StatusSucceeded
	}
	snapshot := c.state
	c.mu.Unlock()

	busyGauge.Set(0)

	if err != nil {
		logger.Error().
			Err(err).
			Int("results", len(snapshot.Results)).
			Msg("Run failed")
	} else {
		logger.Info().
			Int("results", len(snapshot.Results)).
			Dur("duration", snapshot.FinishedAt.Sub(snapshot.StartedAt)).
			Msg("Run succeeded")
	}

	c.publish(snapshot)
}

func (c *Controller) publish(s State) {
	if c.onUpdate != nil {
		c.onUpdate(s)
	}
}

// Snapshot returns the current state. The returned Results must not be modified.
func (c *Controller) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Busy reports whether a run is in progress.
func (c *Controller) Busy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Busy
}

// Wait blocks until no run is in progress.
func (c *Controller) Wait() {
	c.wg.Wait()
}
