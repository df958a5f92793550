package resource

import (
	"sync"

	"github.com/GoSim-25-26J-441/brownout-core/internal/workload"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/models"
)

// Cloudlet is a workload running on a VM. Its utilization follows a trace
// model; its optional components are shared with the brownout controller.
type Cloudlet struct {
	mu sync.RWMutex

	id         string
	vmID       string
	components []*models.OptionalComponent
	model      *workload.TraceModel

	// length is the simulated run time; 0 runs until the end
	length   float64
	finished bool
	finishAt float64
}

// NewCloudlet creates a cloudlet
func NewCloudlet(id, vmID string, components []*models.OptionalComponent, model *workload.TraceModel, length float64) *Cloudlet {
	return &Cloudlet{
		id:         id,
		vmID:       vmID,
		components: components,
		model:      model,
		length:     length,
	}
}

// ID returns the cloudlet ID
func (c *Cloudlet) ID() string {
	return c.id
}

// VMID returns the ID of the VM running the cloudlet
func (c *Cloudlet) VMID() string {
	return c.vmID
}

// OptionalComponents returns the cloudlet's components
func (c *Cloudlet) OptionalComponents() []*models.OptionalComponent {
	return c.components
}

// SetInstantUtilization overrides the utilization of the interval containing at
func (c *Cloudlet) SetInstantUtilization(value, at float64) {
	c.model.SetInstantUtilization(value, at)
}

// Utilization returns the CPU utilization requested at time t
func (c *Cloudlet) Utilization(t float64) float64 {
	return c.model.Utilization(t)
}

// Model returns the cloudlet's utilization model
func (c *Cloudlet) Model() *workload.TraceModel {
	return c.model
}

// IsFinished reports whether the cloudlet completed
func (c *Cloudlet) IsFinished() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.finished
}

// FinishedAt returns the completion time; only meaningful once finished
func (c *Cloudlet) FinishedAt() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.finishAt
}

// due reports whether the cloudlet has run its full length at now
func (c *Cloudlet) due(now float64) bool {
	return c.length > 0 && now >= c.length
}

func (c *Cloudlet) finish(now float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finished = true
	c.finishAt = now
}
