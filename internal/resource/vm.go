package resource

import (
	"sync"

	"github.com/GoSim-25-26J-441/brownout-core/internal/brownout"
)

// VMState is one telemetry sample of a VM
type VMState struct {
	Time          float64 `json:"time"`
	AllocatedMIPS float64 `json:"allocated_mips"`
	RequestedMIPS float64 `json:"requested_mips"`
}

// VM is a virtual machine running cloudlets
type VM struct {
	mu sync.RWMutex

	id     string
	hostID string
	mips   float64

	cloudlets []*Cloudlet
	history   []VMState
}

// NewVM creates a new VM
func NewVM(id, hostID string, mips float64) *VM {
	return &VM{
		id:        id,
		hostID:    hostID,
		mips:      mips,
		cloudlets: make([]*Cloudlet, 0),
	}
}

// ID returns the VM ID
func (v *VM) ID() string {
	return v.id
}

// HostID returns the ID of the host the VM is placed on
func (v *VM) HostID() string {
	return v.hostID
}

// MIPS returns the VM capacity
func (v *VM) MIPS() float64 {
	return v.mips
}

// AddCloudlet submits a cloudlet to the VM
func (v *VM) AddCloudlet(c *Cloudlet) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cloudlets = append(v.cloudlets, c)
}

// Cloudlets returns the cloudlets still executing on the VM
func (v *VM) Cloudlets() []*Cloudlet {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]*Cloudlet, len(v.cloudlets))
	copy(out, v.cloudlets)
	return out
}

// ExecutingWorkloads returns the executing cloudlets as brownout workloads
func (v *VM) ExecutingWorkloads() []brownout.Workload {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]brownout.Workload, len(v.cloudlets))
	for i, c := range v.cloudlets {
		out[i] = c
	}
	return out
}

// LastRequestedMIPS returns the requested demand of the latest telemetry sample
func (v *VM) LastRequestedMIPS() (float64, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if len(v.history) == 0 {
		return 0, false
	}
	return v.history[len(v.history)-1].RequestedMIPS, true
}

// StateHistory returns a copy of the VM telemetry
func (v *VM) StateHistory() []VMState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]VMState, len(v.history))
	copy(out, v.history)
	return out
}

// requestedMIPS sums the demand of the executing cloudlets at now
func (v *VM) requestedMIPS(now float64) float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	total := 0.0
	for _, c := range v.cloudlets {
		total += c.Utilization(now) * v.mips
	}
	return total
}

func (v *VM) recordState(s VMState) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.history = append(v.history, s)
}

// removeFinished drops cloudlets due at now and returns them
func (v *VM) removeFinished(now float64) []*Cloudlet {
	v.mu.Lock()
	defer v.mu.Unlock()
	var done []*Cloudlet
	kept := v.cloudlets[:0]
	for _, c := range v.cloudlets {
		if c.due(now) {
			c.finish(now)
			done = append(done, c)
			continue
		}
		kept = append(kept, c)
	}
	v.cloudlets = kept
	return done
}
