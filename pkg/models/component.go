package models

import (
	"slices"
)

// OptionalComponent is a detachable slice of a workload's CPU demand.
// Utilization is a fraction of the workload's previous-interval utilization;
// Price is the revenue lost while the component is disabled. Components on
// different workloads that share a Tag are switched off together.
type OptionalComponent struct {
	ID                   int     `json:"id" yaml:"id"`
	Tag                  string  `json:"tag" yaml:"tag"`
	Utilization          float64 `json:"utilization" yaml:"utilization"`
	Price                float64 `json:"price" yaml:"price"`
	Enabled              bool    `json:"enabled" yaml:"-"`
	SelectionProbability float64 `json:"selection_probability,omitempty" yaml:"-"`
}

// NewOptionalComponent creates an enabled component
func NewOptionalComponent(id int, tag string, utilization, price float64) *OptionalComponent {
	return &OptionalComponent{
		ID:          id,
		Tag:         tag,
		Utilization: utilization,
		Price:       price,
		Enabled:     true,
	}
}

// Clone returns an independent copy of the component
func (c *OptionalComponent) Clone() *OptionalComponent {
	cp := *c
	return &cp
}

// UtilizationPriceRatio returns utilization/price. ok is false for
// components without a positive price, whose ratio is undefined.
func (c *OptionalComponent) UtilizationPriceRatio() (ratio float64, ok bool) {
	if c.Price <= 0 {
		return 0, false
	}
	return c.Utilization / c.Price, true
}

// ComponentComparator orders two components; negative means a sorts first
type ComponentComparator func(a, b *OptionalComponent) int

// CompareByPrice orders components by ascending price
func CompareByPrice(a, b *OptionalComponent) int {
	return compareFloat(a.Price, b.Price)
}

// CompareByUtilization orders components by ascending utilization share
func CompareByUtilization(a, b *OptionalComponent) int {
	return compareFloat(a.Utilization, b.Utilization)
}

// CompareByUtilizationPriceRatio orders components by descending
// utilization/price. Components without a positive price rank last.
func CompareByUtilizationPriceRatio(a, b *OptionalComponent) int {
	ra, okA := a.UtilizationPriceRatio()
	rb, okB := b.UtilizationPriceRatio()
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	}
	return compareFloat(rb, ra)
}

// SortComponents sorts in place, keeping the original order of equal elements
func SortComponents(components []*OptionalComponent, cmp ComponentComparator) {
	slices.SortStableFunc(components, cmp)
}

// CloneComponents deep-copies a component list
func CloneComponents(components []*OptionalComponent) []*OptionalComponent {
	out := make([]*OptionalComponent, len(components))
	for i, c := range components {
		out[i] = c.Clone()
	}
	return out
}

// BuiltinComponents returns the reference five-component set. Shares are
// scaled so that, with every component enabled, shares plus the lower
// threshold add up to the full workload utilization.
func BuiltinComponents(lowerThreshold float64) []*OptionalComponent {
	scale := (1 - lowerThreshold) / 0.5
	return []*OptionalComponent{
		NewOptionalComponent(1, "tag1", 0.15*scale, 0.12*scale),
		NewOptionalComponent(2, "tag2", 0.12*scale, 0.08*scale),
		NewOptionalComponent(3, "tag3", 0.10*scale, 0.10*scale),
		NewOptionalComponent(4, "tag4", 0.08*scale, 0.09*scale),
		NewOptionalComponent(5, "tag5", 0.05*scale, 0.11*scale),
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
