package policy

import (
	"github.com/GoSim-25-26J-441/brownout-core/pkg/models"
)

// partitionPolicy ranks components with cmp and disables the shortest
// ranked prefix whose cumulative utilization is closest to the target.
type partitionPolicy struct {
	kind Kind
	cmp  models.ComponentComparator
}

func newPartitionPolicy(kind Kind, cmp models.ComponentComparator) *partitionPolicy {
	return &partitionPolicy{kind: kind, cmp: cmp}
}

func (p *partitionPolicy) Name() string {
	return p.kind.String()
}

func (p *partitionPolicy) Kind() Kind {
	return p.kind
}

func (p *partitionPolicy) Select(components []*models.OptionalComponent, target float64, disabled TagSet) {
	if len(components) > 0 {
		// rank a copy; the workload's own order is left untouched
		ranked := make([]*models.OptionalComponent, len(components))
		copy(ranked, components)
		models.SortComponents(ranked, p.cmp)

		boundary := partitionBoundary(ranked, target)
		for i := 0; i <= boundary; i++ {
			disable(ranked[i], disabled)
		}
	}
	Propagate(components, disabled)
}

// partitionBoundary returns the last index to disable in a ranked list.
// If the first component alone covers the target only it is disabled.
// Otherwise the boundary is whichever of the two prefixes around the
// target is closer to it, preferring the shorter prefix on a tie; a target
// beyond the total disables everything.
func partitionBoundary(ranked []*models.OptionalComponent, target float64) int {
	if ranked[0].Utilization >= target {
		return 0
	}
	boundary := len(ranked) - 1
	prefix := ranked[0].Utilization
	for i := 1; i < len(ranked); i++ {
		next := prefix + ranked[i].Utilization
		if prefix <= target && target < next {
			if target-prefix <= next-target {
				boundary = i - 1
			} else {
				boundary = i
			}
			break
		}
		prefix = next
	}
	return boundary
}
