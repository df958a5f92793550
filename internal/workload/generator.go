package workload

import (
	"fmt"
	"slices"

	"github.com/GoSim-25-26J-441/brownout-core/pkg/config"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/utils"
)

// Generator produces utilization traces from trace specifications
type Generator struct {
	rng *utils.RandSource
}

// NewGenerator creates a new trace generator
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng: utils.NewRandSource(seed),
	}
}

// Uniform returns n values drawn uniformly from [min, max)
func (g *Generator) Uniform(n int, min, max float64) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("trace length must be positive, got %d", n)
	}
	if min < 0 || max > 1 || min > max {
		return nil, fmt.Errorf("uniform bounds must satisfy 0 <= min <= max <= 1, got [%f, %f]", min, max)
	}
	values := make([]float64, n)
	for i := range values {
		values[i] = g.rng.UniformFloat64(min, max)
	}
	return values, nil
}

// TraceFromSpec materialises the trace described by spec. Uniform traces
// use spec.Seed when set and the generator's own source otherwise.
func (g *Generator) TraceFromSpec(spec config.TraceSpec) ([]float64, error) {
	switch spec.Type {
	case config.TraceTypeValues:
		if len(spec.Values) == 0 {
			return nil, fmt.Errorf("trace values cannot be empty")
		}
		return slices.Clone(spec.Values), nil
	case config.TraceTypeFile:
		return config.ReadTraceFile(spec.File)
	case config.TraceTypeUniform:
		if spec.Seed != 0 {
			return NewGenerator(spec.Seed).Uniform(spec.Length, spec.Min, spec.Max)
		}
		return g.Uniform(spec.Length, spec.Min, spec.Max)
	default:
		return nil, fmt.Errorf("unknown trace type %q", spec.Type)
	}
}
