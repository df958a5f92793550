package brownout

import (
	"github.com/samber/lo"

	"github.com/GoSim-25-26J-441/brownout-core/pkg/models"
)

// EffectiveUtilization returns the workload utilization after degradation:
// the shares of the still enabled components plus the lower threshold,
// scaled by the previous utilization.
func EffectiveUtilization(previousUtilization float64, components []*models.OptionalComponent, lowerThreshold float64) float64 {
	return (enabledShare(components) + lowerThreshold) * previousUtilization
}

func enabledShare(components []*models.OptionalComponent) float64 {
	return lo.SumBy(lo.Filter(components, func(c *models.OptionalComponent, _ int) bool {
		return c.Enabled
	}), func(c *models.OptionalComponent) float64 {
		return c.Utilization
	})
}

func disabledComponents(components []*models.OptionalComponent) []*models.OptionalComponent {
	return lo.Filter(components, func(c *models.OptionalComponent, _ int) bool {
		return !c.Enabled
	})
}
