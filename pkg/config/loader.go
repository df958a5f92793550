package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// LoadScenario loads and parses a scenario file. Relative trace file paths
// are resolved against the scenario file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file %s: %w", path, err)
	}
	scenario, err := ParseScenarioYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scenario file %s: %w", path, err)
	}
	scenario.ResolveTracePaths(filepath.Dir(path))
	return scenario, nil
}

// ResolveTracePaths rewrites relative trace file paths against baseDir
func (s *Scenario) ResolveTracePaths(baseDir string) {
	if baseDir == "" {
		return
	}
	for hi := range s.Hosts {
		for vi := range s.Hosts[hi].VMs {
			for wi := range s.Hosts[hi].VMs[vi].Workloads {
				tr := &s.Hosts[hi].VMs[vi].Workloads[wi].Trace
				if tr.Type == TraceTypeFile && tr.File != "" && !filepath.IsAbs(tr.File) {
					tr.File = filepath.Join(baseDir, tr.File)
				}
			}
		}
	}
}

// validateScenario performs validation on the scenario
func validateScenario(s *Scenario) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[s.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", s.LogLevel)
	}

	if err := validateSimulation(&s.Simulation); err != nil {
		return fmt.Errorf("simulation validation failed: %w", err)
	}
	if err := validateBrownout(&s.Brownout); err != nil {
		return fmt.Errorf("brownout validation failed: %w", err)
	}
	for name, set := range s.ComponentSets {
		if name == BuiltinComponentSet {
			return fmt.Errorf("component set name %q is reserved", name)
		}
		if err := validateComponentSet(set); err != nil {
			return fmt.Errorf("component set %s: %w", name, err)
		}
	}

	if len(s.Hosts) == 0 {
		return fmt.Errorf("at least one host must be defined")
	}

	hostIDs := make(map[string]bool)
	vmIDs := make(map[string]bool)
	workloadIDs := make(map[string]bool)
	for _, host := range s.Hosts {
		if host.ID == "" {
			return fmt.Errorf("host id cannot be empty")
		}
		if hostIDs[host.ID] {
			return fmt.Errorf("duplicate host id: %s", host.ID)
		}
		hostIDs[host.ID] = true
		if host.MIPS <= 0 {
			return fmt.Errorf("host %s: mips must be positive", host.ID)
		}

		for _, vm := range host.VMs {
			if vm.ID == "" {
				return fmt.Errorf("host %s: vm id cannot be empty", host.ID)
			}
			if vmIDs[vm.ID] {
				return fmt.Errorf("duplicate vm id: %s", vm.ID)
			}
			vmIDs[vm.ID] = true
			if vm.MIPS <= 0 {
				return fmt.Errorf("vm %s: mips must be positive", vm.ID)
			}

			for _, w := range vm.Workloads {
				if w.ID == "" {
					return fmt.Errorf("vm %s: workload id cannot be empty", vm.ID)
				}
				if workloadIDs[w.ID] {
					return fmt.Errorf("duplicate workload id: %s", w.ID)
				}
				workloadIDs[w.ID] = true
				if w.Length < 0 {
					return fmt.Errorf("workload %s: length cannot be negative", w.ID)
				}
				if w.Components != "" && w.Components != BuiltinComponentSet {
					if _, ok := s.ComponentSets[w.Components]; !ok {
						return fmt.Errorf("workload %s references unknown component set: %s", w.ID, w.Components)
					}
				}
				if err := validateTrace(&w.Trace); err != nil {
					return fmt.Errorf("workload %s: %w", w.ID, err)
				}
			}
		}
	}

	return nil
}

func validateSimulation(sim *Simulation) error {
	if sim.SchedulingInterval <= 0 {
		return fmt.Errorf("scheduling_interval must be positive")
	}
	if sim.TriggerOffset < 0 || sim.TriggerOffset >= sim.SchedulingInterval {
		return fmt.Errorf("trigger_offset must be in [0, scheduling_interval)")
	}
	if sim.Duration <= 0 {
		return fmt.Errorf("duration must be positive")
	}
	return nil
}

func validateBrownout(b *Brownout) error {
	if !slices.Contains(PolicyNames, b.Policy) {
		return fmt.Errorf("unknown policy %q (must be one of %v)", b.Policy, PolicyNames)
	}
	if b.DimmerUpThreshold <= 0 || b.DimmerUpThreshold > 1 {
		return fmt.Errorf("dimmer_up_threshold must be in (0, 1]")
	}
	if b.ComponentLowerThreshold < 0 || b.ComponentLowerThreshold >= 1 {
		return fmt.Errorf("component_lower_threshold must be in [0, 1)")
	}
	return nil
}

func validateComponentSet(set []ComponentSpec) error {
	for i, c := range set {
		if c.Tag == "" {
			return fmt.Errorf("component %d: tag cannot be empty", i)
		}
		if c.Utilization < 0 || c.Utilization > 1 {
			return fmt.Errorf("component %s: utilization must be in [0, 1]", c.Tag)
		}
		if c.Price < 0 {
			return fmt.Errorf("component %s: price cannot be negative", c.Tag)
		}
	}
	return nil
}

func validateTrace(t *TraceSpec) error {
	switch t.Type {
	case TraceTypeValues:
		if len(t.Values) == 0 {
			return fmt.Errorf("trace values cannot be empty")
		}
		for _, v := range t.Values {
			if v < 0 || v > 1 {
				return fmt.Errorf("trace value %f outside [0, 1]", v)
			}
		}
	case TraceTypeFile:
		if t.File == "" {
			return fmt.Errorf("trace file path is required")
		}
	case TraceTypeUniform:
		if t.Min < 0 || t.Max > 1 || t.Min > t.Max {
			return fmt.Errorf("uniform trace bounds must satisfy 0 <= min <= max <= 1")
		}
		if t.Length <= 0 {
			return fmt.Errorf("uniform trace length must be positive")
		}
	default:
		return fmt.Errorf("unknown trace type %q", t.Type)
	}
	return nil
}
