package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseScenarioYAML parses a Scenario from YAML bytes, fills in defaults and
// validates it. Trace files are left unresolved.
func ParseScenarioYAML(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("failed to parse scenario yaml: %w", err)
	}

	applyDefaults(&scenario)

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// ParseScenarioYAMLString parses a Scenario from a YAML string and validates it.
func ParseScenarioYAMLString(yamlText string) (*Scenario, error) {
	return ParseScenarioYAML([]byte(yamlText))
}

// MarshalScenarioYAML renders a scenario back to YAML
func MarshalScenarioYAML(s *Scenario) ([]byte, error) {
	out, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scenario: %w", err)
	}
	return out, nil
}

func applyDefaults(s *Scenario) {
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	if s.Simulation.SchedulingInterval == 0 {
		s.Simulation.SchedulingInterval = DefaultSchedulingInterval
	}
	if s.Simulation.TriggerOffset == 0 {
		s.Simulation.TriggerOffset = DefaultTriggerOffset
	}
	if s.Simulation.Duration == 0 {
		s.Simulation.Duration = DefaultDuration
	}
	if s.Simulation.Seed == 0 {
		s.Simulation.Seed = DefaultSeed
	}
	if s.Brownout.Policy == "" {
		s.Brownout.Policy = DefaultPolicy
	}
	if s.Brownout.DimmerUpThreshold == 0 {
		s.Brownout.DimmerUpThreshold = DefaultDimmerUpThreshold
	}
	if s.Brownout.ComponentLowerThreshold == 0 {
		s.Brownout.ComponentLowerThreshold = DefaultComponentLowerThreshold
	}
	if s.Brownout.MarkovSeed == 0 {
		s.Brownout.MarkovSeed = DefaultMarkovSeed
	}
	for hi := range s.Hosts {
		for vi := range s.Hosts[hi].VMs {
			for wi := range s.Hosts[hi].VMs[vi].Workloads {
				applyTraceDefaults(&s.Hosts[hi].VMs[vi].Workloads[wi].Trace)
			}
		}
	}
}

func applyTraceDefaults(t *TraceSpec) {
	if t.Type == "" {
		switch {
		case len(t.Values) > 0:
			t.Type = TraceTypeValues
		case t.File != "":
			t.Type = TraceTypeFile
		default:
			t.Type = TraceTypeUniform
		}
	}
	if t.Type == TraceTypeUniform {
		if t.Min == 0 && t.Max == 0 {
			t.Min = DefaultUniformTraceMin
			t.Max = DefaultUniformTraceMax
		}
		if t.Length == 0 {
			t.Length = DefaultUniformTraceLength
		}
	}
}
