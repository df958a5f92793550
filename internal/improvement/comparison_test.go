package improvement

import (
	"math"
	"testing"

	"github.com/GoSim-25-26J-441/brownout-core/pkg/models"
)

func TestCompareReports(t *testing.T) {
	report1 := &models.Report{Policy: "lowest_price", RevenueLoss: 0.5, ObtainedRevenue: 10, DeactivatedRatio: 0.4, DimmerTriggerCount: 5}
	report2 := &models.Report{Policy: "nearest_utilization", RevenueLoss: 0.25, ObtainedRevenue: 10, DeactivatedRatio: 0.5, DimmerTriggerCount: 4}

	comparison, err := CompareReports(report1, report2, &RevenueLossObjective{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !comparison.Improvement {
		t.Fatalf("expected report2 to improve revenue loss")
	}
	if comparison.ObjectiveDiff != -0.25 || comparison.RevenueLossDiff != -0.25 {
		t.Fatalf("unexpected diffs %+v", comparison)
	}
	if comparison.TriggerDiff != -1 {
		t.Fatalf("expected trigger diff -1, got %d", comparison.TriggerDiff)
	}
	if math.Abs(comparison.DeactivatedRatioDiff-0.1) > 1e-9 {
		t.Fatalf("expected ratio diff 0.1, got %f", comparison.DeactivatedRatioDiff)
	}

	// maximizing objective: more obtained revenue is better
	report2.ObtainedRevenue = 12
	comparison, err = CompareReports(report1, report2, &ObtainedRevenueObjective{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !comparison.Improvement || comparison.ObtainedRevenueDiff != 2 {
		t.Fatalf("expected obtained revenue improvement, got %+v", comparison)
	}
}

func TestCompareReportsErrors(t *testing.T) {
	report := &models.Report{}
	if _, err := CompareReports(nil, report, &RevenueLossObjective{}); err == nil {
		t.Fatal("expected error for nil report1")
	}
	if _, err := CompareReports(report, nil, &RevenueLossObjective{}); err == nil {
		t.Fatal("expected error for nil report2")
	}
	if _, err := CompareReports(report, report, nil); err == nil {
		t.Fatal("expected error for nil objective")
	}
}

func TestGetImprovementPercentage(t *testing.T) {
	tests := []struct {
		name     string
		score1   float64
		score2   float64
		minimize bool
		want     float64
	}{
		{"minimize improved", 100, 80, true, 20},
		{"minimize degraded", 100, 120, true, -20},
		{"maximize improved", 100, 120, false, 20},
		{"negated scores", -4, -6, true, 50},
		{"zero baseline", 0, 10, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetImprovementPercentage(tt.score1, tt.score2, tt.minimize); math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("expected %f, got %f", tt.want, got)
			}
		})
	}
}

func TestSpread(t *testing.T) {
	s := spread([]float64{1, 2, 3})
	if s.Mean != 2 || s.Min != 1 || s.Max != 3 {
		t.Fatalf("unexpected spread %+v", s)
	}
	if math.Abs(s.Variance-2.0/3.0) > 1e-9 {
		t.Fatalf("expected population variance 2/3, got %f", s.Variance)
	}
	if spread(nil) != (ScoreSpread{}) {
		t.Fatal("expected zero spread for no scores")
	}
}
