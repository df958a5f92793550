package engine

import (
	"context"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/brownout-core/pkg/models"
)

// RunManager manages the lifecycle of a simulation run
type RunManager struct {
	run    *models.Run
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewRunManager creates a new run manager
func NewRunManager(runID string) *RunManager {
	ctx, cancel := context.WithCancel(context.Background())

	return &RunManager{
		run: &models.Run{
			ID:        runID,
			Status:    models.RunStatusPending,
			CreatedAt: time.Now(),
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

// RunID returns the run identifier
func (rm *RunManager) RunID() string {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.run.ID
}

// SetPolicy records the degradation policy of the run
func (rm *RunManager) SetPolicy(name string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.run.Policy = name
}

// Start marks the run as started
func (rm *RunManager) Start() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.run.Status = models.RunStatusRunning
	rm.run.StartedAt = time.Now()
}

// Complete marks the run as completed
func (rm *RunManager) Complete() {
	rm.finish(models.RunStatusCompleted, "")
}

// Fail marks the run as failed
func (rm *RunManager) Fail(err error) {
	rm.finish(models.RunStatusFailed, err.Error())
}

// Cancel cancels the run. A run that already finished keeps its status.
func (rm *RunManager) Cancel() {
	rm.cancel()
	rm.finish(models.RunStatusCancelled, "")
}

func (rm *RunManager) finish(status models.RunStatus, errMsg string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.run.Status.IsTerminal() {
		return
	}
	rm.run.Status = status
	rm.run.EndedAt = time.Now()
	rm.run.Error = errMsg
}

// Context returns the run's context
func (rm *RunManager) Context() context.Context {
	return rm.ctx
}

// GetRun returns the current run state (thread-safe)
func (rm *RunManager) GetRun() *models.Run {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	// Create a copy to avoid race conditions
	runCopy := *rm.run
	return &runCopy
}

// GetStats returns current run statistics
func (rm *RunManager) GetStats() map[string]any {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	var elapsed time.Duration
	switch {
	case rm.run.StartedAt.IsZero():
	case rm.run.EndedAt.IsZero():
		elapsed = time.Since(rm.run.StartedAt)
	default:
		elapsed = rm.run.EndedAt.Sub(rm.run.StartedAt)
	}

	return map[string]any{
		"run_id":  rm.run.ID,
		"status":  rm.run.Status,
		"policy":  rm.run.Policy,
		"elapsed": elapsed.String(),
	}
}
