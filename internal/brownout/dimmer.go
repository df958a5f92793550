package brownout

import "github.com/GoSim-25-26J-441/brownout-core/pkg/utils"

// dimmerSlots is the number of distinct dimmer levels the value cycles through
const dimmerSlots = 10

// Signal is the result of one dimmer computation
type Signal struct {
	// Value is the dimmer value in (0, 1]
	Value float64 `json:"value"`
	// OverloadedHosts counts hosts whose previous utilization is above the
	// up threshold. It does not affect Value.
	OverloadedHosts int `json:"overloaded_hosts"`
}

// DimmerState tracks the extrema of every dimmer value produced in a run
type DimmerState struct {
	Highest float64
	Lowest  float64
}

// NewDimmerState returns the initial extrema: highest 0, lowest 1
func NewDimmerState() DimmerState {
	return DimmerState{Highest: 0, Lowest: 1}
}

// Observe folds v into the extrema. Non-positive values never lower Lowest.
func (d *DimmerState) Observe(v float64) {
	if v > 0 && v < d.Lowest {
		d.Lowest = v
	}
	if v > d.Highest {
		d.Highest = v
	}
}

// dimmerValue derives the dimmer value from the time slot containing now.
// The level steps through 0.09, 0.18, ... 0.9 and wraps every ten slots.
func dimmerValue(clock utils.IntervalClock, now float64) float64 {
	slot := clock.Slot(now)
	return float64(slot%dimmerSlots+1) * 0.1 * 0.9
}

// countOverloaded counts hosts strictly above threshold
func countOverloaded(hosts []Host, threshold float64) int {
	n := 0
	for _, h := range hosts {
		if h.PreviousUtilization() > threshold {
			n++
		}
	}
	return n
}
