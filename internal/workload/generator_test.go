package workload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/GoSim-25-26J-441/brownout-core/pkg/config"
)

func TestNewGenerator(t *testing.T) {
	g := NewGenerator(12345)
	if g == nil {
		t.Fatalf("expected non-nil generator")
	}
}

func TestGeneratorUniform(t *testing.T) {
	g := NewGenerator(12345)
	values, err := g.Uniform(500, 0.95, 1.0)
	if err != nil {
		t.Fatalf("Uniform error: %v", err)
	}
	if len(values) != 500 {
		t.Fatalf("expected 500 values, got %d", len(values))
	}
	for i, v := range values {
		if v < 0.95 || v > 1.0 {
			t.Fatalf("value %d = %f outside [0.95, 1.0]", i, v)
		}
	}

	again, _ := NewGenerator(12345).Uniform(500, 0.95, 1.0)
	for i := range values {
		if values[i] != again[i] {
			t.Fatalf("expected identical traces for identical seeds, differ at %d", i)
		}
	}
}

func TestGeneratorUniformInvalid(t *testing.T) {
	g := NewGenerator(1)
	if _, err := g.Uniform(0, 0, 1); err == nil {
		t.Error("expected error for zero length")
	}
	if _, err := g.Uniform(10, 0.8, 0.2); err == nil {
		t.Error("expected error for min > max")
	}
	if _, err := g.Uniform(10, 0.5, 1.5); err == nil {
		t.Error("expected error for max > 1")
	}
}

func TestTraceFromSpec(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trace")
	if err := os.WriteFile(path, []byte("50\n75\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	g := NewGenerator(7)
	tests := []struct {
		name    string
		spec    config.TraceSpec
		wantLen int
		wantErr bool
	}{
		{"values", config.TraceSpec{Type: config.TraceTypeValues, Values: []float64{0.1, 0.2, 0.3}}, 3, false},
		{"file", config.TraceSpec{Type: config.TraceTypeFile, File: path}, 2, false},
		{"uniform", config.TraceSpec{Type: config.TraceTypeUniform, Min: 0.2, Max: 0.4, Length: 12}, 12, false},
		{"seeded uniform", config.TraceSpec{Type: config.TraceTypeUniform, Min: 0.2, Max: 0.4, Length: 4, Seed: 99}, 4, false},
		{"missing file", config.TraceSpec{Type: config.TraceTypeFile, File: filepath.Join(dir, "nope")}, 0, true},
		{"empty values", config.TraceSpec{Type: config.TraceTypeValues}, 0, true},
		{"unknown", config.TraceSpec{Type: "sine"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := g.TraceFromSpec(tt.spec)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("TraceFromSpec error: %v", err)
			}
			if len(values) != tt.wantLen {
				t.Fatalf("expected %d values, got %d", tt.wantLen, len(values))
			}
		})
	}
}

func TestTraceFromSpecCopiesValues(t *testing.T) {
	spec := config.TraceSpec{Type: config.TraceTypeValues, Values: []float64{0.5}}
	values, err := NewGenerator(1).TraceFromSpec(spec)
	if err != nil {
		t.Fatal(err)
	}
	values[0] = 0.9
	if spec.Values[0] != 0.5 {
		t.Fatal("expected trace values to be copied")
	}
}
