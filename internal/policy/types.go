package policy

import (
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/GoSim-25-26J-441/brownout-core/pkg/config"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/models"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/utils"
)

// ErrUnknownPolicy is returned when a policy name or kind is not recognised
var ErrUnknownPolicy = errors.New("unknown policy")

// Kind enumerates the degradation policies
type Kind int

const (
	NearestUtilization Kind = iota
	LowestUtilization
	LowestPrice
	HighestRatio
	Probabilistic
)

var kindNames = map[Kind]string{
	NearestUtilization: "nearest_utilization",
	LowestUtilization:  "lowest_utilization",
	LowestPrice:        "lowest_price",
	HighestRatio:       "highest_ratio",
	Probabilistic:      "probabilistic",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Kinds returns every policy kind in declaration order
func Kinds() []Kind {
	return []Kind{NearestUtilization, LowestUtilization, LowestPrice, HighestRatio, Probabilistic}
}

// ParseKind maps a configured policy name onto its Kind
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
}

// Selector chooses which optional components of one workload to disable so
// that roughly target worth of utilization is shed.
type Selector interface {
	// Name returns the policy name for identification
	Name() string
	// Kind returns the policy kind
	Kind() Kind
	// Select disables components in place, records their tags into
	// disabled and then propagates every disabled tag over components.
	// It never re-enables a component.
	Select(components []*models.OptionalComponent, target float64, disabled TagSet)
}

// New creates the selector for kind. seeds is only consulted by the
// probabilistic policy and must be non-nil for it.
func New(kind Kind, seeds *utils.SeedSequence) (Selector, error) {
	switch kind {
	case NearestUtilization:
		return &nearestPolicy{}, nil
	case LowestUtilization:
		return newPartitionPolicy(kind, models.CompareByUtilization), nil
	case LowestPrice:
		return newPartitionPolicy(kind, models.CompareByPrice), nil
	case HighestRatio:
		return newPartitionPolicy(kind, models.CompareByUtilizationPriceRatio), nil
	case Probabilistic:
		if seeds == nil {
			return nil, fmt.Errorf("probabilistic policy requires a seed sequence")
		}
		return &probabilisticPolicy{seeds: seeds}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, kind)
	}
}

// NewFromConfig creates the selector configured in cfg, with a seed
// sequence starting at cfg.MarkovSeed.
func NewFromConfig(cfg *config.Brownout) (Selector, error) {
	kind, err := ParseKind(cfg.Policy)
	if err != nil {
		return nil, err
	}
	return New(kind, utils.NewSeedSequence(cfg.MarkovSeed))
}

// TagSet is the set of tags disabled during one host evaluation
type TagSet map[string]struct{}

// NewTagSet creates an empty tag set
func NewTagSet() TagSet {
	return make(TagSet)
}

// Add records tag as disabled
func (s TagSet) Add(tag string) {
	s[tag] = struct{}{}
}

// Has reports whether tag is disabled
func (s TagSet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// Tags returns the disabled tags in sorted order
func (s TagSet) Tags() []string {
	tags := lo.Keys(s)
	slices.Sort(tags)
	return tags
}

// Clear empties the set
func (s TagSet) Clear() {
	clear(s)
}

// Propagate disables every component whose tag is in disabled
func Propagate(components []*models.OptionalComponent, disabled TagSet) {
	for _, c := range components {
		if disabled.Has(c.Tag) {
			c.Enabled = false
		}
	}
}

// disable switches c off and records its tag
func disable(c *models.OptionalComponent, disabled TagSet) {
	c.Enabled = false
	disabled.Add(c.Tag)
}
