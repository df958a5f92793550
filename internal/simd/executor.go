package simd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/GoSim-25-26J-441/brownout-core/internal/engine"
	"github.com/GoSim-25-26J-441/brownout-core/internal/improvement"
	"github.com/GoSim-25-26J-441/brownout-core/internal/metrics"
	"github.com/GoSim-25-26J-441/brownout-core/internal/policy"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/config"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/logger"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/models"
)

var (
	ErrRunNotFound  = errors.New("run not found")
	ErrRunTerminal  = errors.New("run is terminal")
	ErrRunIDMissing = errors.New("run_id is required")
)

// RunExecutor manages asynchronous run execution and per-run cancellation.
type RunExecutor struct {
	store    *RunStore
	exporter *metrics.Exporter
	notifier *Notifier
	logger   *slog.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	done    map[string]chan struct{}
}

// NewRunExecutor creates an executor. exporter may be nil.
func NewRunExecutor(store *RunStore, exporter *metrics.Exporter) *RunExecutor {
	return &RunExecutor{
		store:    store,
		exporter: exporter,
		notifier: NewNotifier(),
		logger:   logger.Default,
		cancels:  make(map[string]context.CancelFunc),
		done:     make(map[string]chan struct{}),
	}
}

// SetLogger sets the logger used for runs
func (e *RunExecutor) SetLogger(l *slog.Logger) {
	if l != nil {
		e.logger = l
	}
}

// SetNotifier replaces the completion notifier
func (e *RunExecutor) SetNotifier(n *Notifier) {
	if n != nil {
		e.notifier = n
	}
}

// Start begins executing a run asynchronously.
// Returns the updated run state (RUNNING) or an error.
func (e *RunExecutor) Start(runID string) (*RunRecord, error) {
	if runID == "" {
		return nil, ErrRunIDMissing
	}

	rec, ok := e.store.Get(runID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	switch {
	case rec.Run.Status == models.RunStatusRunning:
		return rec, nil
	case rec.Run.Status.IsTerminal():
		return nil, fmt.Errorf("%w: %s", ErrRunTerminal, runID)
	}

	updated, err := e.store.SetStatus(runID, models.RunStatusRunning, "")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	e.mu.Lock()
	if old, exists := e.cancels[runID]; exists {
		old()
	}
	e.cancels[runID] = cancel
	e.done[runID] = done
	e.mu.Unlock()

	go e.runSimulation(ctx, runID, done)
	return updated, nil
}

// Stop requests cancellation for a running run and marks it cancelled.
func (e *RunExecutor) Stop(runID string) (*RunRecord, error) {
	if runID == "" {
		return nil, ErrRunIDMissing
	}

	e.mu.Lock()
	cancel, ok := e.cancels[runID]
	e.mu.Unlock()

	if ok {
		cancel()
	}

	return e.store.SetStatus(runID, models.RunStatusCancelled, "")
}

// Wait blocks until the run finished executing or ctx is done. A run that
// is not executing returns immediately.
func (e *RunExecutor) Wait(ctx context.Context, runID string) error {
	e.mu.Lock()
	done, ok := e.done[runID]
	e.mu.Unlock()
	if !ok {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *RunExecutor) cleanup(runID string, done chan struct{}) {
	e.mu.Lock()
	if cancel, ok := e.cancels[runID]; ok {
		cancel()
		delete(e.cancels, runID)
	}
	delete(e.done, runID)
	e.mu.Unlock()
	close(done)
}

func (e *RunExecutor) fail(runID, msg string) {
	e.logger.Error("run failed", "run_id", runID, "error", msg)
	if _, err := e.store.SetStatus(runID, models.RunStatusFailed, msg); err != nil {
		e.logger.Error("failed to set failed status", "run_id", runID, "error", err)
	}
}

func (e *RunExecutor) runSimulation(ctx context.Context, runID string, done chan struct{}) {
	defer e.cleanup(runID, done)
	defer e.notify(runID)

	rec, ok := e.store.Get(runID)
	if !ok {
		e.logger.Error("run not found", "run_id", runID)
		return
	}

	scenario, err := config.ParseScenarioYAMLString(rec.Input.ScenarioYAML)
	if err != nil {
		e.fail(runID, fmt.Sprintf("invalid scenario: %v", err))
		return
	}

	collector := metrics.NewCollector()
	if err := e.store.SetCollector(runID, collector); err != nil {
		e.logger.Error("failed to store collector", "run_id", runID, "error", err)
	}

	opts := []engine.SimulationOption{
		engine.WithLogger(e.logger),
		engine.WithObserver(collector),
		engine.WithStepHook(collector.RecordStep),
	}
	if e.exporter != nil {
		opts = append(opts, engine.WithObserver(e.exporter.ForRun(runID)))
	}
	if rec.Input.Policy != "" {
		kind, err := policy.ParseKind(rec.Input.Policy)
		if err != nil {
			e.fail(runID, err.Error())
			return
		}
		opts = append(opts, engine.WithPolicy(kind))
	}

	sim, err := engine.NewSimulation(runID, scenario, opts...)
	if err != nil {
		e.fail(runID, fmt.Sprintf("simulation setup failed: %v", err))
		return
	}
	if err := e.store.SetPolicy(runID, sim.Controller().PolicyName()); err != nil {
		e.logger.Error("failed to set policy", "run_id", runID, "error", err)
	}

	report, err := sim.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			e.logger.Info("simulation cancelled", "run_id", runID)
			return
		}
		e.fail(runID, err.Error())
		return
	}

	if err := e.store.SetReport(runID, report); err != nil {
		e.logger.Error("failed to set report", "run_id", runID, "error", err)
	}
	if _, err := e.store.SetStatus(runID, models.RunStatusCompleted, ""); err != nil {
		e.logger.Error("failed to set completed status", "run_id", runID, "error", err)
		return
	}
	e.logger.Info("run completed", "run_id", runID,
		"policy", report.Policy,
		"revenue_loss", report.RevenueLoss,
		"dimmer_triggers", report.DimmerTriggerCount)
}

func (e *RunExecutor) notify(runID string) {
	rec, ok := e.store.Get(runID)
	if !ok || rec.Input.CallbackURL == "" {
		return
	}
	e.notifier.Notify(rec.Input.CallbackURL, rec.Input.CallbackSecret, rec)
}

// Compare runs the scenario under every policy and ranks them by objective
func (e *RunExecutor) Compare(ctx context.Context, scenarioYAML, objective string) (*improvement.PolicyComparison, error) {
	scenario, err := config.ParseScenarioYAMLString(scenarioYAML)
	if err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	obj, err := improvement.NewObjectiveFunction(objective)
	if err != nil {
		return nil, err
	}
	return improvement.ComparePolicies(ctx, scenario, obj)
}
