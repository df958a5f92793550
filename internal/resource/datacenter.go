package resource

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/GoSim-25-26J-441/brownout-core/internal/brownout"
	"github.com/GoSim-25-26J-441/brownout-core/internal/workload"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/config"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/logger"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/models"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/utils"
)

// StepResult summarises one datacenter processing step
type StepResult struct {
	Time            float64                `json:"time"`
	Signal          brownout.Signal        `json:"signal"`
	Evaluations     []*brownout.Evaluation `json:"evaluations"`
	HostUtilization map[string]float64     `json:"host_utilization"`
	ActiveHosts     int                    `json:"active_hosts"`
	Completed       []string               `json:"completed,omitempty"`
}

// Datacenter owns the simulated hosts and drives the brownout controller
// once per processing step.
type Datacenter struct {
	mu sync.Mutex

	hosts      []*Host
	hostIndex  map[string]*Host
	cloudlets  map[string]*Cloudlet
	controller *brownout.Controller
	logger     *slog.Logger

	lastProcessTime float64
	steps           int
}

// NewDatacenter builds the hosts, VMs and cloudlets of a scenario. Trace
// files must already be resolved.
func NewDatacenter(scenario *config.Scenario, controller *brownout.Controller, log *slog.Logger) (*Datacenter, error) {
	if controller == nil {
		return nil, fmt.Errorf("controller is required")
	}
	if log == nil {
		log = logger.Default
	}
	d := &Datacenter{
		hostIndex:  make(map[string]*Host),
		cloudlets:  make(map[string]*Cloudlet),
		controller: controller,
		logger:     log,
	}

	clock := utils.NewIntervalClock(scenario.Simulation.SchedulingInterval, scenario.Simulation.TriggerOffset)
	gen := workload.NewGenerator(scenario.Simulation.Seed)

	for _, hs := range scenario.Hosts {
		host := NewHost(hs.ID, hs.MIPS)
		for _, vs := range hs.VMs {
			vm := NewVM(vs.ID, hs.ID, vs.MIPS)
			for _, ws := range vs.Workloads {
				components, err := resolveComponents(scenario, ws.Components)
				if err != nil {
					return nil, fmt.Errorf("workload %s: %w", ws.ID, err)
				}
				trace, err := gen.TraceFromSpec(ws.Trace)
				if err != nil {
					return nil, fmt.Errorf("workload %s: %w", ws.ID, err)
				}
				model, err := workload.NewTraceModel(trace, clock)
				if err != nil {
					return nil, fmt.Errorf("workload %s: %w", ws.ID, err)
				}
				cl := NewCloudlet(ws.ID, vs.ID, components, model, ws.Length)
				vm.AddCloudlet(cl)
				d.cloudlets[ws.ID] = cl
			}
			host.AddVM(vm)
		}
		d.hosts = append(d.hosts, host)
		d.hostIndex[host.ID()] = host
	}

	d.logger.Info("datacenter initialized",
		"hosts", len(d.hosts),
		"vms", scenario.VMCount(),
		"workloads", len(d.cloudlets))
	return d, nil
}

// resolveComponents returns a fresh copy of the named component set
func resolveComponents(scenario *config.Scenario, name string) ([]*models.OptionalComponent, error) {
	switch name {
	case "":
		return nil, nil
	case config.BuiltinComponentSet:
		return models.BuiltinComponents(scenario.Brownout.ComponentLowerThreshold), nil
	}
	set, ok := scenario.ComponentSets[name]
	if !ok {
		return nil, fmt.Errorf("unknown component set: %s", name)
	}
	out := make([]*models.OptionalComponent, len(set))
	for i, c := range set {
		out[i] = models.NewOptionalComponent(c.ID, c.Tag, c.Utilization, c.Price)
	}
	return out, nil
}

// Process runs one processing step at now: dimmer signal and overload
// trigger for every host, VM processing with telemetry, interval
// bookkeeping, then removal of completed cloudlets.
func (d *Datacenter) Process(now float64) (*StepResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, h := range d.hosts {
		h.beginStep()
	}

	hosts := d.brownoutHosts()
	tick, err := d.controller.Tick(now, hosts)
	if err != nil {
		return nil, fmt.Errorf("brownout tick at %.2f failed: %w", now, err)
	}

	result := &StepResult{
		Time:            now,
		Signal:          tick.Signal,
		Evaluations:     tick.Evaluations,
		HostUtilization: make(map[string]float64, len(d.hosts)),
	}
	for _, h := range d.hosts {
		result.HostUtilization[h.ID()] = h.processVMs(now)
	}

	result.ActiveHosts = d.controller.ObserveInterval(now, d.lastProcessTime, hosts)

	for _, h := range d.hosts {
		for _, vm := range h.VMList() {
			for _, c := range vm.removeFinished(now) {
				result.Completed = append(result.Completed, c.ID())
				d.logger.Debug("cloudlet completed", "cloudlet_id", c.ID(), "vm_id", vm.ID(), "time", now)
			}
		}
	}

	d.lastProcessTime = now
	d.steps++
	return result, nil
}

func (d *Datacenter) brownoutHosts() []brownout.Host {
	out := make([]brownout.Host, len(d.hosts))
	for i, h := range d.hosts {
		out[i] = h
	}
	return out
}

// Hosts returns the hosts in scenario order
func (d *Datacenter) Hosts() []*Host {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Host, len(d.hosts))
	copy(out, d.hosts)
	return out
}

// Host returns a host by ID
func (d *Datacenter) Host(id string) (*Host, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.hostIndex[id]
	return h, ok
}

// Cloudlet returns a cloudlet by ID, including completed ones
func (d *Datacenter) Cloudlet(id string) (*Cloudlet, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.cloudlets[id]
	return c, ok
}

// HostCount returns the number of hosts
func (d *Datacenter) HostCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.hosts)
}

// ExecutingCloudlets counts cloudlets that have not completed
func (d *Datacenter) ExecutingCloudlets() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, h := range d.hosts {
		for _, vm := range h.VMList() {
			n += len(vm.Cloudlets())
		}
	}
	return n
}

// Controller returns the brownout controller driven by the datacenter
func (d *Datacenter) Controller() *brownout.Controller {
	return d.controller
}

// LastProcessTime returns the time of the latest processing step
func (d *Datacenter) LastProcessTime() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastProcessTime
}

// Report returns the controller report completed with the step count and
// the simulated time reached.
func (d *Datacenter) Report() *models.Report {
	d.mu.Lock()
	defer d.mu.Unlock()
	report := d.controller.Report(len(d.hosts))
	report.SimulatedTime = d.lastProcessTime
	report.Ticks = d.steps
	return report
}
