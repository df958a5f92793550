package policy

import (
	"math"
	"testing"

	"github.com/GoSim-25-26J-441/brownout-core/pkg/models"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/utils"
)

func TestAssignProbabilities(t *testing.T) {
	ranked := models.BuiltinComponents(0.5)
	assignProbabilities(ranked, 0.3)

	want := []float64{0.3 + 0.7/3*2, 0.3 + 0.7/3, 0.3, 0.2, 0.1}
	for i, c := range ranked {
		if math.Abs(c.SelectionProbability-want[i]) > 1e-9 {
			t.Errorf("index %d: expected %f, got %f", i, want[i], c.SelectionProbability)
		}
	}
}

func TestAssignProbabilitiesSingle(t *testing.T) {
	ranked := []*models.OptionalComponent{models.NewOptionalComponent(1, "x", 0.2, 0.1)}
	assignProbabilities(ranked, 0.4)
	if ranked[0].SelectionProbability != 0.4 {
		t.Fatalf("expected probability equal to target, got %f", ranked[0].SelectionProbability)
	}
}

func TestProbabilisticDeterministic(t *testing.T) {
	run := func() [][]bool {
		sel, err := New(Probabilistic, utils.NewSeedSequence(1000))
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		var out [][]bool
		for i := 0; i < 10; i++ {
			components := models.BuiltinComponents(0.5)
			sel.Select(components, 0.4, NewTagSet())
			flags := make([]bool, len(components))
			for j, c := range components {
				flags[j] = c.Enabled
			}
			out = append(out, flags)
		}
		return out
	}

	a, b := run(), run()
	for i := range a {
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				t.Fatalf("evaluation %d component %d differs between identical runs", i, j)
			}
		}
	}
}

func TestProbabilisticUsesOneSeedPerEvaluation(t *testing.T) {
	seeds := utils.NewSeedSequence(1000)
	sel, _ := New(Probabilistic, seeds)
	for i := 0; i < 4; i++ {
		sel.Select(models.BuiltinComponents(0.5), 0.3, NewTagSet())
	}
	if seeds.Issued() != 4 {
		t.Fatalf("expected 4 seeds issued, got %d", seeds.Issued())
	}
}

func TestProbabilisticDisablesBelowDraw(t *testing.T) {
	seeds := utils.NewSeedSequence(1000)
	draw := utils.NewSeedSequence(1000).Draw()

	sel, _ := New(Probabilistic, seeds)
	components := models.BuiltinComponents(0.5)
	tags := NewTagSet()
	sel.Select(components, 0.3, tags)

	for _, c := range components {
		wantDisabled := c.SelectionProbability < draw
		if wantDisabled == c.Enabled {
			t.Errorf("component %s: probability %f draw %f enabled=%v", c.Tag, c.SelectionProbability, draw, c.Enabled)
		}
		if wantDisabled != tags.Has(c.Tag) {
			t.Errorf("component %s: tag set mismatch", c.Tag)
		}
	}
}
