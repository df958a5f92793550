package workload

import (
	"testing"

	"github.com/GoSim-25-26J-441/brownout-core/pkg/utils"
)

func newTestModel(t *testing.T, trace ...float64) *TraceModel {
	t.Helper()
	m, err := NewTraceModel(trace, utils.NewIntervalClock(300, 0.1))
	if err != nil {
		t.Fatalf("NewTraceModel failed: %v", err)
	}
	return m
}

func TestNewTraceModelInvalid(t *testing.T) {
	if _, err := NewTraceModel(nil, utils.NewIntervalClock(300, 0.1)); err == nil {
		t.Error("expected error for empty trace")
	}
	if _, err := NewTraceModel([]float64{0.5}, utils.NewIntervalClock(0, 0)); err == nil {
		t.Error("expected error for zero interval")
	}
}

func TestTraceModelServesOneValuePerInterval(t *testing.T) {
	m := newTestModel(t, 0.2, 0.4, 0.6)
	tests := []struct {
		t    float64
		want float64
	}{
		{0, 0.2},
		{0.1, 0.2},
		{150, 0.2},
		{300.1, 0.4},
		{599, 0.4},
		{600.1, 0.6},
		{900.1, 0.2},
	}
	for _, tt := range tests {
		if got := m.Utilization(tt.t); got != tt.want {
			t.Errorf("Utilization(%f) = %f, want %f", tt.t, got, tt.want)
		}
	}
	if m.Len() != 3 {
		t.Errorf("expected length 3, got %d", m.Len())
	}
}

func TestTraceModelOverrideLastsOneInterval(t *testing.T) {
	m := newTestModel(t, 0.9, 0.95, 1.0)
	m.SetInstantUtilization(0.5, 300.1)

	if !m.Overridden() {
		t.Fatal("expected override to be pending")
	}
	if got := m.Utilization(300.1); got != 0.5 {
		t.Fatalf("expected override 0.5 at 300.1, got %f", got)
	}
	if got := m.Utilization(450); got != 0.5 {
		t.Fatalf("expected override to hold for the interval, got %f", got)
	}
	if got := m.Utilization(600.1); got != 1.0 {
		t.Fatalf("expected trace value after the interval, got %f", got)
	}
	if m.Overridden() {
		t.Fatal("expected override to be consumed")
	}

	history := m.History()
	if history[300] != 0.5 || history[600] != 1.0 {
		t.Fatalf("unexpected history: %v", history)
	}
}

func TestTraceModelOverrideClamped(t *testing.T) {
	m := newTestModel(t, 0.5)
	m.SetInstantUtilization(1.7, 0.1)
	if got := m.Utilization(0.1); got != 1 {
		t.Fatalf("expected clamped override 1, got %f", got)
	}
}
