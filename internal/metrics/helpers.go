package metrics

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"github.com/GoSim-25-26J-441/brownout-core/pkg/models"
)

// Metric names recorded by the collector
const (
	MetricDimmerValue      = "dimmer_value"
	MetricOverloadedHosts  = "overloaded_hosts"
	MetricDimmerTriggered  = "dimmer_triggered"
	MetricRevenueLoss      = "revenue_loss"
	MetricObtainedRevenue  = "obtained_revenue"
	MetricDeactivatedRatio = "deactivated_ratio"
	MetricDisabledTags     = "disabled_tags"
	MetricActiveHosts      = "active_hosts"
	MetricHostUtilization  = "host_utilization"
)

// RecordHostUtilization records a host CPU utilization sample
func RecordHostUtilization(collector *Collector, utilization, t float64, labels map[string]string) {
	collector.Record(MetricHostUtilization, utilization, t, labels)
}

// CreateHostLabels creates labels for a host
func CreateHostLabels(hostID string) map[string]string {
	return map[string]string{
		"host": hostID,
	}
}

// Summarize computes count, sum, extrema, mean and nearest-rank
// percentiles of values.
func Summarize(values []float64) (*models.Aggregation, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("cannot summarize: %w", stats.EmptyInputErr)
	}
	data := stats.Float64Data(values)

	sum, err := data.Sum()
	if err != nil {
		return nil, err
	}
	lo, err := data.Min()
	if err != nil {
		return nil, err
	}
	hi, err := data.Max()
	if err != nil {
		return nil, err
	}
	mean, err := data.Mean()
	if err != nil {
		return nil, err
	}
	p50, err := stats.PercentileNearestRank(data, 50)
	if err != nil {
		return nil, fmt.Errorf("p50: %w", err)
	}
	p95, err := stats.PercentileNearestRank(data, 95)
	if err != nil {
		return nil, fmt.Errorf("p95: %w", err)
	}

	return &models.Aggregation{
		Count: int64(len(values)),
		Sum:   sum,
		Min:   lo,
		Max:   hi,
		Mean:  mean,
		P50:   p50,
		P95:   p95,
	}, nil
}

// Mean returns the arithmetic mean of values, or 0 for no values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m, err := stats.Mean(values)
	if err != nil {
		return 0
	}
	return m
}
