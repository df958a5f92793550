package improvement

import (
	"github.com/GoSim-25-26J-441/brownout-core/internal/metrics"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/models"
)

// ObjectiveFunction scores a run report. Lower scores are better; maximizing
// objectives negate their value.
type ObjectiveFunction interface {
	// Evaluate computes the objective value from a run report.
	Evaluate(report *models.Report) (float64, error)

	// Name returns the name of the objective function.
	Name() string

	// Direction returns whether we're minimizing (true) or maximizing (false).
	Direction() bool // true = minimize, false = maximize
}

// ObjectiveType represents the type of objective function
type ObjectiveType string

const (
	// ObjectiveMinimizeRevenueLoss minimizes the price of disabled components
	ObjectiveMinimizeRevenueLoss ObjectiveType = "revenue_loss"
	// ObjectiveMinimizeDeactivatedRatio minimizes the deactivated component ratio
	ObjectiveMinimizeDeactivatedRatio ObjectiveType = "deactivated_ratio"
	// ObjectiveMaximizeObtainedRevenue maximizes the sampled obtained revenue
	ObjectiveMaximizeObtainedRevenue ObjectiveType = "obtained_revenue"
	// ObjectiveMinimizeActiveHosts minimizes the mean number of active hosts
	ObjectiveMinimizeActiveHosts ObjectiveType = "active_hosts"
)

// DefaultObjective is used when no objective is named
const DefaultObjective = ObjectiveMinimizeRevenueLoss

// ObjectiveTypes lists the accepted objective names
func ObjectiveTypes() []ObjectiveType {
	return []ObjectiveType{
		ObjectiveMinimizeRevenueLoss,
		ObjectiveMinimizeDeactivatedRatio,
		ObjectiveMaximizeObtainedRevenue,
		ObjectiveMinimizeActiveHosts,
	}
}

// NewObjectiveFunction creates an objective function from a type string.
// An empty string selects DefaultObjective.
func NewObjectiveFunction(objType string) (ObjectiveFunction, error) {
	if objType == "" {
		objType = string(DefaultObjective)
	}
	switch ObjectiveType(objType) {
	case ObjectiveMinimizeRevenueLoss:
		return &RevenueLossObjective{}, nil
	case ObjectiveMinimizeDeactivatedRatio:
		return &DeactivatedRatioObjective{}, nil
	case ObjectiveMaximizeObtainedRevenue:
		return &ObtainedRevenueObjective{}, nil
	case ObjectiveMinimizeActiveHosts:
		return &ActiveHostsObjective{}, nil
	default:
		return nil, &UnknownObjectiveError{ObjectiveType: objType}
	}
}

// RevenueLossObjective minimizes revenue loss
type RevenueLossObjective struct{}

func (o *RevenueLossObjective) Name() string {
	return string(ObjectiveMinimizeRevenueLoss)
}

func (o *RevenueLossObjective) Direction() bool {
	return true // minimize
}

func (o *RevenueLossObjective) Evaluate(report *models.Report) (float64, error) {
	if report == nil {
		return 0, &InvalidReportError{Reason: "report is nil"}
	}
	return report.RevenueLoss, nil
}

// DeactivatedRatioObjective minimizes the deactivated component ratio
type DeactivatedRatioObjective struct{}

func (o *DeactivatedRatioObjective) Name() string {
	return string(ObjectiveMinimizeDeactivatedRatio)
}

func (o *DeactivatedRatioObjective) Direction() bool {
	return true // minimize
}

func (o *DeactivatedRatioObjective) Evaluate(report *models.Report) (float64, error) {
	if report == nil {
		return 0, &InvalidReportError{Reason: "report is nil"}
	}
	return report.DeactivatedRatio, nil
}

// ObtainedRevenueObjective maximizes obtained revenue
type ObtainedRevenueObjective struct{}

func (o *ObtainedRevenueObjective) Name() string {
	return string(ObjectiveMaximizeObtainedRevenue)
}

func (o *ObtainedRevenueObjective) Direction() bool {
	return false // maximize (so we negate the value)
}

func (o *ObtainedRevenueObjective) Evaluate(report *models.Report) (float64, error) {
	if report == nil {
		return 0, &InvalidReportError{Reason: "report is nil"}
	}
	return -report.ObtainedRevenue, nil
}

// ActiveHostsObjective minimizes the mean of the active host snapshots
type ActiveHostsObjective struct{}

func (o *ActiveHostsObjective) Name() string {
	return string(ObjectiveMinimizeActiveHosts)
}

func (o *ActiveHostsObjective) Direction() bool {
	return true // minimize
}

func (o *ActiveHostsObjective) Evaluate(report *models.Report) (float64, error) {
	if report == nil {
		return 0, &InvalidReportError{Reason: "report is nil"}
	}
	counts := make([]float64, len(report.ActiveHostsByInterval))
	for i, c := range report.ActiveHostsByInterval {
		counts[i] = float64(c.ActiveHosts)
	}
	return metrics.Mean(counts), nil
}

// UnknownObjectiveError indicates an unknown objective type
type UnknownObjectiveError struct {
	ObjectiveType string
}

func (e *UnknownObjectiveError) Error() string {
	return "unknown objective type: " + e.ObjectiveType
}

// InvalidReportError indicates a report that cannot be evaluated
type InvalidReportError struct {
	Reason string
}

func (e *InvalidReportError) Error() string {
	return "invalid report: " + e.Reason
}
