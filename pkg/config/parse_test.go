package config

import (
	"strings"
	"testing"
)

const minimalScenario = `
hosts:
  - id: host-1
    mips: 2000
    vms:
      - id: vm-1
        mips: 1000
        workloads:
          - id: w1
            components: builtin
`

func TestParseScenarioYAMLStringDefaults(t *testing.T) {
	scenario, err := ParseScenarioYAMLString(minimalScenario)
	if err != nil {
		t.Fatalf("ParseScenarioYAMLString failed: %v", err)
	}
	if scenario.LogLevel != "info" {
		t.Errorf("expected default log level info, got %q", scenario.LogLevel)
	}
	if scenario.Simulation.SchedulingInterval != DefaultSchedulingInterval {
		t.Errorf("expected default interval, got %f", scenario.Simulation.SchedulingInterval)
	}
	if scenario.Simulation.TriggerOffset != DefaultTriggerOffset {
		t.Errorf("expected default offset, got %f", scenario.Simulation.TriggerOffset)
	}
	if scenario.Brownout.Policy != DefaultPolicy {
		t.Errorf("expected default policy, got %q", scenario.Brownout.Policy)
	}
	if scenario.Brownout.MarkovSeed != DefaultMarkovSeed {
		t.Errorf("expected default markov seed, got %d", scenario.Brownout.MarkovSeed)
	}
	tr := scenario.Hosts[0].VMs[0].Workloads[0].Trace
	if tr.Type != TraceTypeUniform || tr.Min != DefaultUniformTraceMin || tr.Max != DefaultUniformTraceMax {
		t.Errorf("unexpected trace defaults: %+v", tr)
	}
	if scenario.VMCount() != 1 || scenario.WorkloadCount() != 1 {
		t.Errorf("unexpected counts: vms=%d workloads=%d", scenario.VMCount(), scenario.WorkloadCount())
	}
}

func TestParseScenarioYAMLStringFull(t *testing.T) {
	yamlText := `
log_level: debug
simulation:
  scheduling_interval: 300
  trigger_offset: 0.1
  duration: 3000
brownout:
  policy: lowest_price
  dimmer_up_threshold: 0.7
  component_lower_threshold: 0.4
component_sets:
  web:
    - {id: 1, tag: cache, utilization: 0.2, price: 0.1}
    - {id: 2, tag: recs, utilization: 0.1, price: 0.3}
hosts:
  - id: host-1
    mips: 2000
    vms:
      - id: vm-1
        mips: 1000
        workloads:
          - id: w1
            components: web
            trace: {values: [0.9, 1.0]}
`
	scenario, err := ParseScenarioYAMLString(yamlText)
	if err != nil {
		t.Fatalf("ParseScenarioYAMLString failed: %v", err)
	}
	if scenario.Brownout.Policy != "lowest_price" {
		t.Errorf("expected lowest_price, got %s", scenario.Brownout.Policy)
	}
	if len(scenario.ComponentSets["web"]) != 2 {
		t.Fatalf("expected 2 components in set web")
	}
	tr := scenario.Hosts[0].VMs[0].Workloads[0].Trace
	if tr.Type != TraceTypeValues || len(tr.Values) != 2 {
		t.Errorf("unexpected trace: %+v", tr)
	}
}

func TestParseScenarioYAMLStringInvalid(t *testing.T) {
	tests := []struct {
		name     string
		yamlText string
		wantErr  string
	}{
		{"no hosts", `hosts: []`, "at least one host"},
		{"bad log level", "log_level: loud\n" + minimalScenario, "invalid log_level"},
		{"bad policy", "brownout: {policy: random}\n" + minimalScenario, "unknown policy"},
		{"threshold out of range", "brownout: {dimmer_up_threshold: 1.5}\n" + minimalScenario, "dimmer_up_threshold"},
		{"offset beyond interval", "simulation: {scheduling_interval: 10, trigger_offset: 20}\n" + minimalScenario, "trigger_offset"},
		{
			"unknown component set",
			`
hosts:
  - id: host-1
    mips: 2000
    vms:
      - id: vm-1
        mips: 1000
        workloads:
          - id: w1
            components: missing
`, "unknown component set",
		},
		{
			"duplicate vm",
			`
hosts:
  - id: host-1
    mips: 2000
    vms:
      - {id: vm-1, mips: 1000}
      - {id: vm-1, mips: 1000}
`, "duplicate vm id",
		},
		{
			"negative price",
			`
component_sets:
  bad:
    - {id: 1, tag: x, utilization: 0.1, price: -1}
hosts:
  - {id: host-1, mips: 100}
`, "price cannot be negative",
		},
		{
			"reserved set name",
			`
component_sets:
  builtin:
    - {id: 1, tag: x, utilization: 0.1, price: 1}
hosts:
  - {id: host-1, mips: 100}
`, "reserved",
		},
		{
			"trace value out of range",
			`
hosts:
  - id: host-1
    mips: 2000
    vms:
      - id: vm-1
        mips: 1000
        workloads:
          - {id: w1, trace: {values: [1.4]}}
`, "outside [0, 1]",
		},
		{"malformed yaml", "hosts: [", "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenarioYAMLString(tt.yamlText)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestMarshalScenarioYAMLRoundTrip(t *testing.T) {
	scenario, err := ParseScenarioYAMLString(minimalScenario)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	scenario.Brownout.Policy = "highest_ratio"
	out, err := MarshalScenarioYAML(scenario)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	again, err := ParseScenarioYAML(out)
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	if again.Brownout.Policy != "highest_ratio" {
		t.Errorf("policy override lost: %s", again.Brownout.Policy)
	}
}
