package config

// Scenario describes one brownout simulation: the simulated datacenter, the
// workloads and their optional components, and the controller settings.
type Scenario struct {
	LogLevel      string                     `yaml:"log_level"`
	Simulation    Simulation                 `yaml:"simulation"`
	Brownout      Brownout                   `yaml:"brownout"`
	ComponentSets map[string][]ComponentSpec `yaml:"component_sets,omitempty"`
	Hosts         []HostSpec                 `yaml:"hosts"`
}

// Simulation holds clock settings, in simulated time units
type Simulation struct {
	SchedulingInterval float64 `yaml:"scheduling_interval"`
	TriggerOffset      float64 `yaml:"trigger_offset"`
	Duration           float64 `yaml:"duration"`
	Seed               int64   `yaml:"seed"`
}

// Brownout holds the controller settings
type Brownout struct {
	Policy                  string  `yaml:"policy"`
	DimmerUpThreshold       float64 `yaml:"dimmer_up_threshold"`
	ComponentLowerThreshold float64 `yaml:"component_lower_threshold"`
	MarkovSeed              int64   `yaml:"markov_seed"`
}

// ComponentSpec declares one optional component of a component set
type ComponentSpec struct {
	ID          int     `yaml:"id"`
	Tag         string  `yaml:"tag"`
	Utilization float64 `yaml:"utilization"`
	Price       float64 `yaml:"price"`
}

// HostSpec declares a physical host and the VMs placed on it
type HostSpec struct {
	ID   string   `yaml:"id"`
	MIPS float64  `yaml:"mips"`
	VMs  []VMSpec `yaml:"vms"`
}

// VMSpec declares a VM and the workloads it executes
type VMSpec struct {
	ID        string         `yaml:"id"`
	MIPS      float64        `yaml:"mips"`
	Workloads []WorkloadSpec `yaml:"workloads"`
}

// WorkloadSpec declares a workload (cloudlet). Components names a component
// set; Length is the simulated time after which the workload completes
// (0 runs until the end of the simulation).
type WorkloadSpec struct {
	ID         string    `yaml:"id"`
	Components string    `yaml:"components"`
	Length     float64   `yaml:"length"`
	Trace      TraceSpec `yaml:"trace"`
}

// TraceSpec selects the utilization trace of a workload
type TraceSpec struct {
	Type   string    `yaml:"type"` // values, file, uniform
	Values []float64 `yaml:"values,omitempty"`
	File   string    `yaml:"file,omitempty"`
	Min    float64   `yaml:"min,omitempty"`
	Max    float64   `yaml:"max,omitempty"`
	Seed   int64     `yaml:"seed,omitempty"`
	Length int       `yaml:"length,omitempty"`
}

const (
	TraceTypeValues  = "values"
	TraceTypeFile    = "file"
	TraceTypeUniform = "uniform"

	// BuiltinComponentSet is the reserved name of the reference component set
	BuiltinComponentSet = "builtin"
)

// Defaults
const (
	DefaultSchedulingInterval      = 300.0
	DefaultTriggerOffset           = 0.1
	DefaultDuration                = 86400.0
	DefaultSeed                    = 1
	DefaultPolicy                  = "nearest_utilization"
	DefaultDimmerUpThreshold       = 0.8
	DefaultComponentLowerThreshold = 0.5
	DefaultMarkovSeed              = 1000
	DefaultUniformTraceMin         = 0.95
	DefaultUniformTraceMax         = 1.0
	DefaultUniformTraceLength      = 288
)

// PolicyNames lists the accepted values of brownout.policy
var PolicyNames = []string{
	"nearest_utilization",
	"lowest_utilization",
	"lowest_price",
	"highest_ratio",
	"probabilistic",
}

// VMCount returns the total number of VMs across all hosts
func (s *Scenario) VMCount() int {
	n := 0
	for _, h := range s.Hosts {
		n += len(h.VMs)
	}
	return n
}

// WorkloadCount returns the total number of workloads
func (s *Scenario) WorkloadCount() int {
	n := 0
	for _, h := range s.Hosts {
		for _, vm := range h.VMs {
			n += len(vm.Workloads)
		}
	}
	return n
}
