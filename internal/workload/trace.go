package workload

import (
	"fmt"
	"maps"
	"sync"

	"github.com/GoSim-25-26J-441/brownout-core/pkg/utils"
)

// TraceModel is a trace-driven utilization model. Interval n of the clock
// is served trace value n (wrapping around the trace). A one-shot override
// replaces the value for the rest of the interval it was set in.
type TraceModel struct {
	mu    sync.Mutex
	clock utils.IntervalClock
	trace []float64

	// history maps interval start to the value served for that interval
	history map[float64]float64

	overrideSlot  int
	overrideValue float64
	hasOverride   bool
}

// NewTraceModel creates a model over trace
func NewTraceModel(trace []float64, clock utils.IntervalClock) (*TraceModel, error) {
	if len(trace) == 0 {
		return nil, fmt.Errorf("trace cannot be empty")
	}
	if clock.Length <= 0 {
		return nil, fmt.Errorf("interval length must be positive")
	}
	return &TraceModel{
		clock:   clock,
		trace:   trace,
		history: make(map[float64]float64),
	}, nil
}

// Utilization returns the utilization at time t
func (m *TraceModel) Utilization(t float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	slot := m.clock.Slot(t)
	value := m.trace[slot%len(m.trace)]
	if m.hasOverride {
		switch {
		case slot == m.overrideSlot:
			value = m.overrideValue
		case slot > m.overrideSlot:
			m.hasOverride = false
		}
	}
	m.history[m.clock.IntervalStart(t)] = value
	return value
}

// SetInstantUtilization overrides the utilization for the interval
// containing at. The value is clamped to [0, 1].
func (m *TraceModel) SetInstantUtilization(value, at float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.overrideSlot = m.clock.Slot(at)
	m.overrideValue = utils.ClampFloat64(value, 0, 1)
	m.hasOverride = true
}

// Overridden reports whether an override is pending or active
func (m *TraceModel) Overridden() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasOverride
}

// History returns the values served so far keyed by interval start
func (m *TraceModel) History() map[float64]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.history)
}

// Len returns the trace length
func (m *TraceModel) Len() int {
	return len(m.trace)
}
