package metrics

import (
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/GoSim-25-26J-441/brownout-core/internal/brownout"
	"github.com/GoSim-25-26J-441/brownout-core/internal/resource"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/models"
)

// Collector collects time-series metrics during simulation. It implements
// brownout.Observer so a controller can feed it directly.
type Collector struct {
	mu sync.RWMutex

	// Time-series data: metric name -> labels -> []MetricPoint
	timeSeries map[string]map[string][]*models.MetricPoint

	// Aggregated data: metric name -> labels -> Aggregation
	aggregations map[string]map[string]*models.Aggregation
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{
		timeSeries:   make(map[string]map[string][]*models.MetricPoint),
		aggregations: make(map[string]map[string]*models.Aggregation),
	}
}

// Record records a metric value at simulated time t
func (c *Collector) Record(name string, value, t float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := labelKey(labels)
	if c.timeSeries[name] == nil {
		c.timeSeries[name] = make(map[string][]*models.MetricPoint)
	}

	point := &models.MetricPoint{
		Time:   t,
		Name:   name,
		Value:  value,
		Labels: copyLabels(labels),
	}
	c.timeSeries[name][key] = append(c.timeSeries[name][key], point)

	// cached aggregations are stale now
	if c.aggregations[name] != nil {
		delete(c.aggregations[name], key)
	}
}

// GetTimeSeries returns all time-series points for a metric
func (c *Collector) GetTimeSeries(name string, labels map[string]string) []*models.MetricPoint {
	c.mu.RLock()
	defer c.mu.RUnlock()

	points := c.getPointsUnsafe(name, labelKey(labels))
	if points == nil {
		return nil
	}

	// Return a copy
	result := make([]*models.MetricPoint, len(points))
	for i, p := range points {
		result[i] = &models.MetricPoint{
			Time:   p.Time,
			Name:   p.Name,
			Value:  p.Value,
			Labels: copyLabels(p.Labels),
		}
	}
	return result
}

// GetAllTimeSeries returns every point of a metric across all label sets,
// ordered by time.
func (c *Collector) GetAllTimeSeries(name string) []*models.MetricPoint {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var result []*models.MetricPoint
	for _, points := range c.timeSeries[name] {
		for _, p := range points {
			result = append(result, &models.MetricPoint{
				Time:   p.Time,
				Name:   p.Name,
				Value:  p.Value,
				Labels: copyLabels(p.Labels),
			})
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Time != result[j].Time {
			return result[i].Time < result[j].Time
		}
		return labelKey(result[i].Labels) < labelKey(result[j].Labels)
	})
	return result
}

// GetAggregation calculates and returns aggregated statistics for a metric
func (c *Collector) GetAggregation(name string, labels map[string]string) *models.Aggregation {
	c.mu.RLock()
	defer c.mu.RUnlock()

	points := c.getPointsUnsafe(name, labelKey(labels))
	if len(points) == 0 {
		return nil
	}
	return calculateAggregation(points)
}

// GetOrComputeAggregation gets cached aggregation or computes it
func (c *Collector) GetOrComputeAggregation(name string, labels map[string]string) *models.Aggregation {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := labelKey(labels)
	if c.aggregations[name] == nil {
		c.aggregations[name] = make(map[string]*models.Aggregation)
	}
	if agg, ok := c.aggregations[name][key]; ok {
		return agg
	}

	points := c.getPointsUnsafe(name, key)
	if len(points) == 0 {
		return nil
	}
	agg := calculateAggregation(points)
	c.aggregations[name][key] = agg
	return agg
}

// GetSummary aggregates every metric over all of its label sets
func (c *Collector) GetSummary() map[string]*models.Aggregation {
	c.mu.RLock()
	defer c.mu.RUnlock()

	summary := make(map[string]*models.Aggregation, len(c.timeSeries))
	for name, labelMap := range c.timeSeries {
		var all []*models.MetricPoint
		for _, points := range labelMap {
			all = append(all, points...)
		}
		if agg := calculateAggregation(all); agg != nil {
			summary[name] = agg
		}
	}
	return summary
}

// GetMetricNames returns all metric names that have been collected, sorted
func (c *Collector) GetMetricNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.timeSeries))
	for name := range c.timeSeries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// GetLabelsForMetric returns all label combinations for a metric
func (c *Collector) GetLabelsForMetric(name string) []map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.timeSeries[name] == nil {
		return nil
	}
	keys := make([]string, 0, len(c.timeSeries[name]))
	for key := range c.timeSeries[name] {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	labelsList := make([]map[string]string, 0, len(keys))
	for _, key := range keys {
		if points := c.timeSeries[name][key]; len(points) > 0 {
			labelsList = append(labelsList, copyLabels(points[0].Labels))
		}
	}
	return labelsList
}

// Clear clears all collected metrics
func (c *Collector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.timeSeries = make(map[string]map[string][]*models.MetricPoint)
	c.aggregations = make(map[string]map[string]*models.Aggregation)
}

// ObserveDimmer records the dimmer signal
func (c *Collector) ObserveDimmer(now float64, signal brownout.Signal) {
	c.Record(MetricDimmerValue, signal.Value, now, nil)
	c.Record(MetricOverloadedHosts, float64(signal.OverloadedHosts), now, nil)
}

// ObserveEvaluation records what a boundary evaluation added to the host account
func (c *Collector) ObserveEvaluation(ev *brownout.Evaluation) {
	if !ev.Boundary {
		return
	}
	labels := CreateHostLabels(ev.HostID)
	c.Record(MetricObtainedRevenue, ev.ObtainedRevenue, ev.Time, labels)
	if !ev.Triggered {
		return
	}
	c.Record(MetricDimmerTriggered, 1, ev.Time, labels)
	c.Record(MetricRevenueLoss, ev.RevenueLoss, ev.Time, labels)
	c.Record(MetricDeactivatedRatio, ev.DeactivatedRatio, ev.Time, labels)
	c.Record(MetricDisabledTags, float64(len(ev.DisabledTags)), ev.Time, labels)
}

// ObserveInterval records the active host count of an interval
func (c *Collector) ObserveInterval(intervalStart float64, activeHosts int) {
	c.Record(MetricActiveHosts, float64(activeHosts), intervalStart, nil)
}

// RecordStep records the host utilization of a processing step
func (c *Collector) RecordStep(step *resource.StepResult) {
	hostIDs := make([]string, 0, len(step.HostUtilization))
	for id := range step.HostUtilization {
		hostIDs = append(hostIDs, id)
	}
	slices.Sort(hostIDs)
	for _, id := range hostIDs {
		RecordHostUtilization(c, step.HostUtilization[id], step.Time, CreateHostLabels(id))
	}
}

// getPointsUnsafe returns points without locking (caller must hold lock)
func (c *Collector) getPointsUnsafe(name, key string) []*models.MetricPoint {
	if c.timeSeries[name] == nil {
		return nil
	}
	return c.timeSeries[name][key]
}

// labelKey creates a key from labels for map lookup
func labelKey(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(labels[k])
		b.WriteByte(',')
	}
	return b.String()
}

// copyLabels creates a copy of the labels map
func copyLabels(labels map[string]string) map[string]string {
	if labels == nil {
		return nil
	}
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		out[k] = v
	}
	return out
}

// calculateAggregation calculates aggregated statistics from metric points
func calculateAggregation(points []*models.MetricPoint) *models.Aggregation {
	if len(points) == 0 {
		return nil
	}
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	agg, err := Summarize(values)
	if err != nil {
		return nil
	}
	return agg
}
