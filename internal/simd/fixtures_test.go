package simd

import (
	"context"
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/brownout-core/pkg/logger"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/models"
)

// saturatedScenario triggers the dimmer at both evaluation boundaries
const saturatedScenario = `
simulation:
  duration: 1000
hosts:
  - id: host-1
    mips: 1000
    vms:
      - id: vm-1
        mips: 1000
        workloads:
          - id: w1
            components: builtin
            trace: {values: [1.0]}
`

// longScenario runs long enough to be stopped mid-flight
const longScenario = `
simulation:
  duration: 1000000000
hosts:
  - id: host-1
    mips: 1000
    vms:
      - id: vm-1
        mips: 1000
        workloads:
          - id: w1
            components: builtin
            trace: {values: [1.0]}
`

func newTestExecutor(store *RunStore) *RunExecutor {
	executor := NewRunExecutor(store, nil)
	executor.SetLogger(logger.NewDiscard())
	return executor
}

func waitForStatus(t *testing.T, store *RunStore, runID string, want models.RunStatus) *RunRecord {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if rec, ok := store.Get(runID); ok && rec.Run.Status == want {
			return rec
		}
		time.Sleep(5 * time.Millisecond)
	}
	rec, _ := store.Get(runID)
	t.Fatalf("run %s did not reach %s (last: %+v)", runID, want, rec.Run)
	return nil
}

func waitDone(t *testing.T, executor *RunExecutor, runID string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := executor.Wait(ctx, runID); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
}
