package brownout

import (
	"errors"

	"github.com/GoSim-25-26J-441/brownout-core/pkg/models"
)

// ErrMissingTelemetry is returned when a VM that runs workloads has no
// recorded requested demand or no capacity, so its previous utilization
// cannot be derived.
var ErrMissingTelemetry = errors.New("missing vm telemetry")

// Host is a simulated physical host as seen by the controller
type Host interface {
	ID() string
	// PreviousUtilization is the host CPU utilization of the last interval
	PreviousUtilization() float64
	// Utilization is the host CPU utilization right now
	Utilization() float64
	VMs() []VM
}

// VM is a virtual machine placed on a host
type VM interface {
	ID() string
	MIPS() float64
	// LastRequestedMIPS returns the most recently recorded requested
	// demand; ok is false when nothing was recorded yet.
	LastRequestedMIPS() (mips float64, ok bool)
	ExecutingWorkloads() []Workload
}

// Workload is a running workload with optional components
type Workload interface {
	ID() string
	// OptionalComponents returns the workload's own components; changes to
	// the returned components are visible to the workload.
	OptionalComponents() []*models.OptionalComponent
	// SetInstantUtilization overrides the workload utilization at time at
	SetInstantUtilization(value, at float64)
}
