package policy

import (
	"math"

	"github.com/GoSim-25-26J-441/brownout-core/pkg/models"
)

// nearestPolicy disables the single component whose utilization share is
// closest to the target. Ties keep the first component in list order.
type nearestPolicy struct{}

func (p *nearestPolicy) Name() string {
	return NearestUtilization.String()
}

func (p *nearestPolicy) Kind() Kind {
	return NearestUtilization
}

func (p *nearestPolicy) Select(components []*models.OptionalComponent, target float64, disabled TagSet) {
	if len(components) > 0 {
		disable(components[nearestIndex(components, target)], disabled)
	}
	Propagate(components, disabled)
}

// nearestIndex scans the list once; distances of 1 or more never replace
// the initial choice of index 0.
func nearestIndex(components []*models.OptionalComponent, target float64) int {
	best := 0
	minDistance := 1.0
	for i, c := range components {
		d := math.Abs(c.Utilization - target)
		if d < minDistance {
			minDistance = d
			best = i
		}
	}
	return best
}
