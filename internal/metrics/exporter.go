package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GoSim-25-26J-441/brownout-core/internal/brownout"
)

const namespace = "brownout"

// Exporter publishes controller events as Prometheus metrics. Every series
// carries a run_id label so concurrent runs can share one registry.
type Exporter struct {
	registry *prometheus.Registry

	dimmerValue      *prometheus.GaugeVec
	overloadedHosts  *prometheus.GaugeVec
	activeHosts      *prometheus.GaugeVec
	triggers         *prometheus.CounterVec
	revenueLoss      *prometheus.CounterVec
	obtainedRevenue  *prometheus.CounterVec
	deactivatedRatio *prometheus.CounterVec
	disabledTags     *prometheus.HistogramVec
}

// NewExporter registers the brownout metrics on reg. A nil reg gets a
// fresh registry.
func NewExporter(reg *prometheus.Registry) *Exporter {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	e := &Exporter{
		registry: reg,
		dimmerValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dimmer_value",
			Help:      "Dimmer value of the latest tick.",
		}, []string{"run_id"}),
		overloadedHosts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "overloaded_hosts",
			Help:      "Hosts above the dimmer up threshold at the latest tick.",
		}, []string{"run_id"}),
		activeHosts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_hosts",
			Help:      "Hosts with non-zero utilization in the latest interval.",
		}, []string{"run_id"}),
		triggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dimmer_triggers_total",
			Help:      "Host evaluations that degraded workloads.",
		}, []string{"run_id", "host_id"}),
		revenueLoss: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revenue_loss_total",
			Help:      "Price of components disabled by degradation.",
		}, []string{"run_id", "host_id"}),
		obtainedRevenue: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "obtained_revenue_total",
			Help:      "Revenue sampled from executing workloads at interval boundaries.",
		}, []string{"run_id", "host_id"}),
		deactivatedRatio: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deactivated_ratio_total",
			Help:      "Fraction of components disabled, normalized by VM count.",
		}, []string{"run_id", "host_id"}),
		disabledTags: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "disabled_tags",
			Help:      "Distinct tags disabled per triggered host evaluation.",
			Buckets:   prometheus.LinearBuckets(0, 1, 6),
		}, []string{"run_id"}),
	}
	reg.MustRegister(
		e.dimmerValue,
		e.overloadedHosts,
		e.activeHosts,
		e.triggers,
		e.revenueLoss,
		e.obtainedRevenue,
		e.deactivatedRatio,
		e.disabledTags,
	)
	return e
}

// Registry returns the registry the metrics live on
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Handler serves the registry in the Prometheus exposition format
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// ForRun returns an observer that labels everything with runID
func (e *Exporter) ForRun(runID string) brownout.Observer {
	return &runObserver{exporter: e, runID: runID}
}

// Forget drops every series of runID
func (e *Exporter) Forget(runID string) {
	match := prometheus.Labels{"run_id": runID}
	e.dimmerValue.DeletePartialMatch(match)
	e.overloadedHosts.DeletePartialMatch(match)
	e.activeHosts.DeletePartialMatch(match)
	e.triggers.DeletePartialMatch(match)
	e.revenueLoss.DeletePartialMatch(match)
	e.obtainedRevenue.DeletePartialMatch(match)
	e.deactivatedRatio.DeletePartialMatch(match)
	e.disabledTags.DeletePartialMatch(match)
}

type runObserver struct {
	exporter *Exporter
	runID    string
}

func (o *runObserver) ObserveDimmer(_ float64, signal brownout.Signal) {
	o.exporter.dimmerValue.WithLabelValues(o.runID).Set(signal.Value)
	o.exporter.overloadedHosts.WithLabelValues(o.runID).Set(float64(signal.OverloadedHosts))
}

func (o *runObserver) ObserveEvaluation(ev *brownout.Evaluation) {
	if !ev.Boundary {
		return
	}
	e := o.exporter
	e.obtainedRevenue.WithLabelValues(o.runID, ev.HostID).Add(ev.ObtainedRevenue)
	if !ev.Triggered {
		return
	}
	e.triggers.WithLabelValues(o.runID, ev.HostID).Inc()
	e.revenueLoss.WithLabelValues(o.runID, ev.HostID).Add(ev.RevenueLoss)
	e.deactivatedRatio.WithLabelValues(o.runID, ev.HostID).Add(ev.DeactivatedRatio)
	e.disabledTags.WithLabelValues(o.runID).Observe(float64(len(ev.DisabledTags)))
}

func (o *runObserver) ObserveInterval(_ float64, activeHosts int) {
	o.exporter.activeHosts.WithLabelValues(o.runID).Set(float64(activeHosts))
}
