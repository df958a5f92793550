package policy

import (
	"github.com/GoSim-25-26J-441/brownout-core/pkg/models"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/utils"
)

// probabilisticPolicy ranks components by utilization/price and gives each a
// selection probability that falls linearly along the ranking around the
// target. One seeded draw per evaluation disables every component whose
// probability is below the draw.
type probabilisticPolicy struct {
	seeds *utils.SeedSequence
}

func (p *probabilisticPolicy) Name() string {
	return Probabilistic.String()
}

func (p *probabilisticPolicy) Kind() Kind {
	return Probabilistic
}

func (p *probabilisticPolicy) Select(components []*models.OptionalComponent, target float64, disabled TagSet) {
	if len(components) > 0 {
		ranked := make([]*models.OptionalComponent, len(components))
		copy(ranked, components)
		models.SortComponents(ranked, models.CompareByUtilizationPriceRatio)

		assignProbabilities(ranked, target)
		draw := p.seeds.Draw()
		for _, c := range ranked {
			if c.SelectionProbability < draw {
				disable(c, disabled)
			}
		}
	}
	Propagate(components, disabled)
}

// assignProbabilities spreads 1-target evenly over the upper half of the
// ranking and target evenly over the lower half. The first component of
// the upper half receives target plus the full upper step count.
func assignProbabilities(ranked []*models.OptionalComponent, target float64) {
	n := len(ranked)
	half := n / 2
	stepLow := target / float64((n+1)/2)
	stepHigh := (1 - target) / float64(n-half)
	for i, c := range ranked {
		if i < half {
			c.SelectionProbability = target + stepHigh*float64(half-i)
		} else {
			c.SelectionProbability = target - stepLow*float64(i-half)
		}
	}
}
