package resource

import (
	"sync"

	"github.com/GoSim-25-26J-441/brownout-core/internal/brownout"
)

// Host is a physical host with a CPU capacity shared by its VMs
type Host struct {
	mu sync.RWMutex

	id   string
	mips float64
	vms  []*VM

	// utilization is the share of host MIPS allocated at the last
	// processing step; previousUtilization is its value before the
	// current step began.
	utilization         float64
	previousUtilization float64
}

// NewHost creates a new host
func NewHost(id string, mips float64) *Host {
	return &Host{
		id:   id,
		mips: mips,
		vms:  make([]*VM, 0),
	}
}

// ID returns the host ID
func (h *Host) ID() string {
	return h.id
}

// MIPS returns the host capacity
func (h *Host) MIPS() float64 {
	return h.mips
}

// AddVM places a VM on this host
func (h *Host) AddVM(vm *VM) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.vms = append(h.vms, vm)
}

// VMList returns the VMs placed on this host
func (h *Host) VMList() []*VM {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*VM, len(h.vms))
	copy(out, h.vms)
	return out
}

// VMs returns the VMs as brownout VMs
func (h *Host) VMs() []brownout.VM {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]brownout.VM, len(h.vms))
	for i, vm := range h.vms {
		out[i] = vm
	}
	return out
}

// Utilization returns CPU utilization (0.0 to 1.0)
func (h *Host) Utilization() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.utilization
}

// PreviousUtilization returns the CPU utilization of the previous interval
func (h *Host) PreviousUtilization() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.previousUtilization
}

// beginStep snapshots the current utilization as the previous one
func (h *Host) beginStep() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.previousUtilization = h.utilization
}

// processVMs shares the host capacity among the VMs' requested demand,
// appends one telemetry sample per VM and updates the host utilization.
// A VM never receives more than its own capacity; when the host is
// oversubscribed every VM is scaled down by the same factor.
func (h *Host) processVMs(now float64) float64 {
	vms := h.VMList()
	requested := make([]float64, len(vms))
	wanted := 0.0
	for i, vm := range vms {
		requested[i] = vm.requestedMIPS(now)
		wanted += min(requested[i], vm.MIPS())
	}

	scale := 1.0
	if wanted > h.mips && wanted > 0 {
		scale = h.mips / wanted
	}

	allocated := 0.0
	for i, vm := range vms {
		share := min(requested[i], vm.MIPS()) * scale
		allocated += share
		vm.recordState(VMState{Time: now, AllocatedMIPS: share, RequestedMIPS: requested[i]})
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.mips > 0 {
		h.utilization = allocated / h.mips
	} else {
		h.utilization = 0
	}
	return h.utilization
}
