package models

import (
	"time"
)

// RunStatus represents the status of a simulation run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// IsTerminal reports whether the run can no longer change state
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed || s == RunStatusCancelled
}

// Run represents a brownout simulation run
type Run struct {
	ID        string    `json:"id"`
	Status    RunStatus `json:"status"`
	Policy    string    `json:"policy"`
	CreatedAt time.Time `json:"created_at"`
	StartedAt time.Time `json:"started_at,omitempty"`
	EndedAt   time.Time `json:"ended_at,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// IntervalCount is one row of the active-host snapshot table
type IntervalCount struct {
	IntervalStart float64 `json:"interval_start"`
	ActiveHosts   int     `json:"active_hosts"`
}

// HostReport holds the cumulative accounting of a single host
type HostReport struct {
	HostID           string  `json:"host_id"`
	RevenueLoss      float64 `json:"revenue_loss"`
	ObtainedRevenue  float64 `json:"obtained_revenue"`
	DeactivatedRatio float64 `json:"deactivated_ratio"`
	Triggers         int     `json:"triggers"`
}

// Report is the end-of-run view of the controller state
type Report struct {
	Policy                string          `json:"policy"`
	RevenueLoss           float64         `json:"revenue_loss"`
	ObtainedRevenue       float64         `json:"obtained_revenue"`
	DeactivatedRatio      float64         `json:"deactivated_ratio"`
	DimmerTriggerCount    int             `json:"dimmer_trigger_count"`
	TimesMayTriggerDimmer int             `json:"times_may_trigger_dimmer"`
	HighestDimmerValue    float64         `json:"highest_dimmer_value"`
	LowestDimmerValue     float64         `json:"lowest_dimmer_value"`
	ActiveHostsByInterval []IntervalCount `json:"active_hosts_by_interval"`
	Hosts                 []HostReport    `json:"hosts"`
	SimulatedTime         float64         `json:"simulated_time"`
	Ticks                 int             `json:"ticks"`
}

// MetricPoint represents a single metric sample at a simulated timestamp
type MetricPoint struct {
	Time   float64           `json:"time"`
	Name   string            `json:"name"`
	Value  float64           `json:"value"`
	Labels map[string]string `json:"labels,omitempty"`
}

// Aggregation represents aggregated statistics for a metric
type Aggregation struct {
	Count int64   `json:"count"`
	Sum   float64 `json:"sum"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
}
