package improvement

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/GoSim-25-26J-441/brownout-core/pkg/models"
)

// ReportComparison compares two run reports
type ReportComparison struct {
	Policy1              string
	Policy2              string
	ObjectiveDiff        float64 // Difference in objective score (run2 - run1)
	Improvement          bool    // True if run2 is better than run1
	RevenueLossDiff      float64
	ObtainedRevenueDiff  float64
	DeactivatedRatioDiff float64
	TriggerDiff          int
}

// CompareReports compares two run reports under an objective
func CompareReports(report1, report2 *models.Report, objective ObjectiveFunction) (*ReportComparison, error) {
	if report1 == nil {
		return nil, fmt.Errorf("report1 is nil")
	}
	if report2 == nil {
		return nil, fmt.Errorf("report2 is nil")
	}
	if objective == nil {
		return nil, fmt.Errorf("objective function is nil")
	}

	score1, err := objective.Evaluate(report1)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate objective for report1: %w", err)
	}
	score2, err := objective.Evaluate(report2)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate objective for report2: %w", err)
	}

	return &ReportComparison{
		Policy1:              report1.Policy,
		Policy2:              report2.Policy,
		ObjectiveDiff:        score2 - score1,
		Improvement:          score2 < score1, // maximizing objectives are negated
		RevenueLossDiff:      report2.RevenueLoss - report1.RevenueLoss,
		ObtainedRevenueDiff:  report2.ObtainedRevenue - report1.ObtainedRevenue,
		DeactivatedRatioDiff: report2.DeactivatedRatio - report1.DeactivatedRatio,
		TriggerDiff:          report2.DimmerTriggerCount - report1.DimmerTriggerCount,
	}, nil
}

// ScoreSpread describes how far apart the policy scores are
type ScoreSpread struct {
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// spread summarises scores; it returns a zero spread for no scores
func spread(scores []float64) ScoreSpread {
	if len(scores) == 0 {
		return ScoreSpread{}
	}
	data := stats.Float64Data(scores)
	m, _ := data.Mean()
	v, _ := data.PopulationVariance()
	lo, _ := data.Min()
	hi, _ := data.Max()
	return ScoreSpread{Mean: m, Variance: v, Min: lo, Max: hi}
}

// GetImprovementPercentage calculates the percentage improvement between
// two scores, relative to the magnitude of score1
func GetImprovementPercentage(score1, score2 float64, minimize bool) float64 {
	if score1 == 0 {
		return 0
	}
	diff := score2 - score1
	if minimize {
		// For minimization, negative diff means improvement
		return -(diff / math.Abs(score1)) * 100
	}
	// For maximization, positive diff means improvement
	return (diff / math.Abs(score1)) * 100
}
