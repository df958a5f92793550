package brownout

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/GoSim-25-26J-441/brownout-core/internal/policy"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/config"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/logger"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/models"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/utils"
)

// Config holds the controller settings
type Config struct {
	Policy            policy.Kind
	DimmerUpThreshold float64
	LowerThreshold    float64
	Interval          float64
	Offset            float64
	MarkovSeed        int64
}

// DefaultConfig returns the reference settings
func DefaultConfig() Config {
	return Config{
		Policy:            policy.NearestUtilization,
		DimmerUpThreshold: config.DefaultDimmerUpThreshold,
		LowerThreshold:    config.DefaultComponentLowerThreshold,
		Interval:          config.DefaultSchedulingInterval,
		Offset:            config.DefaultTriggerOffset,
		MarkovSeed:        config.DefaultMarkovSeed,
	}
}

// ConfigFromScenario extracts the controller settings of a parsed scenario
func ConfigFromScenario(s *config.Scenario) (Config, error) {
	kind, err := policy.ParseKind(s.Brownout.Policy)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Policy:            kind,
		DimmerUpThreshold: s.Brownout.DimmerUpThreshold,
		LowerThreshold:    s.Brownout.ComponentLowerThreshold,
		Interval:          s.Simulation.SchedulingInterval,
		Offset:            s.Simulation.TriggerOffset,
		MarkovSeed:        s.Brownout.MarkovSeed,
	}, nil
}

func (c Config) validate() error {
	if c.DimmerUpThreshold <= 0 || c.DimmerUpThreshold > 1 {
		return fmt.Errorf("dimmer up threshold must be in (0, 1], got %f", c.DimmerUpThreshold)
	}
	if c.LowerThreshold < 0 || c.LowerThreshold >= 1 {
		return fmt.Errorf("lower threshold must be in [0, 1), got %f", c.LowerThreshold)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %f", c.Interval)
	}
	return nil
}

// Observer receives controller events. Callbacks run after the controller
// released its lock, so they may read the controller.
type Observer interface {
	ObserveDimmer(now float64, signal Signal)
	ObserveEvaluation(ev *Evaluation)
	ObserveInterval(intervalStart float64, activeHosts int)
}

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the controller logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver registers an observer
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// Evaluation describes one host evaluation at one tick. The revenue and
// ratio fields hold what this evaluation added to the host account.
type Evaluation struct {
	HostID           string   `json:"host_id"`
	Time             float64  `json:"time"`
	Boundary         bool     `json:"boundary"`
	Triggered        bool     `json:"triggered"`
	DimmerValue      float64  `json:"dimmer_value"`
	ScaledDimmer     float64  `json:"scaled_dimmer"`
	Workloads        int      `json:"workloads"`
	DisabledTags     []string `json:"disabled_tags,omitempty"`
	RevenueLoss      float64  `json:"revenue_loss"`
	DeactivatedRatio float64  `json:"deactivated_ratio"`
	ObtainedRevenue  float64  `json:"obtained_revenue"`
}

// TickResult is the outcome of Tick
type TickResult struct {
	Time        float64       `json:"time"`
	Signal      Signal        `json:"signal"`
	Evaluations []*Evaluation `json:"evaluations"`
}

// Controller owns all brownout state of one simulation run: the dimmer
// extrema, the seed sequence of the probabilistic policy and the ledger.
// All methods are safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	cfg      Config
	clock    utils.IntervalClock
	seeds    *utils.SeedSequence
	selector policy.Selector
	dimmer   DimmerState
	ledger   *Ledger

	logger    *slog.Logger
	observers []Observer
}

// NewController creates a controller for one run
func NewController(cfg Config, opts ...Option) (*Controller, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid brownout config: %w", err)
	}
	seeds := utils.NewSeedSequence(cfg.MarkovSeed)
	selector, err := policy.New(cfg.Policy, seeds)
	if err != nil {
		return nil, err
	}
	c := &Controller{
		cfg:      cfg,
		clock:    utils.NewIntervalClock(cfg.Interval, cfg.Offset),
		seeds:    seeds,
		selector: selector,
		dimmer:   NewDimmerState(),
		ledger:   NewLedger(),
		logger:   logger.Default,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the controller settings
func (c *Controller) Config() Config {
	return c.cfg
}

// PolicyName returns the name of the active degradation policy
func (c *Controller) PolicyName() string {
	return c.selector.Name()
}

// Clock returns the interval clock the controller evaluates against
func (c *Controller) Clock() utils.IntervalClock {
	return c.clock
}

// ComputeDimmerValue derives the dimmer signal at now and folds it into the
// extrema.
func (c *Controller) ComputeDimmerValue(now float64, hosts []Host) Signal {
	c.mu.Lock()
	signal := c.computeDimmerLocked(now, hosts)
	c.mu.Unlock()

	for _, o := range c.observers {
		o.ObserveDimmer(now, signal)
	}
	return signal
}

func (c *Controller) computeDimmerLocked(now float64, hosts []Host) Signal {
	signal := Signal{
		Value:           dimmerValue(c.clock, now),
		OverloadedHosts: countOverloaded(hosts, c.cfg.DimmerUpThreshold),
	}
	c.dimmer.Observe(signal.Value)
	return signal
}

// Tick computes the dimmer signal and evaluates every host at now
func (c *Controller) Tick(now float64, hosts []Host) (*TickResult, error) {
	signal := c.ComputeDimmerValue(now, hosts)
	result := &TickResult{Time: now, Signal: signal}
	for _, h := range hosts {
		ev, err := c.Evaluate(now, h, signal.Value)
		if err != nil {
			return nil, err
		}
		result.Evaluations = append(result.Evaluations, ev)
	}
	return result, nil
}

// vmTarget pairs a VM's executing workloads with its previous utilization
type vmTarget struct {
	vm          VM
	workloads   []Workload
	utilization float64
}

// Evaluate runs the overload trigger for one host. Outside interval
// boundaries it does nothing. At a boundary it samples the obtained revenue
// and, when the previous host utilization reaches the up threshold, degrades
// every executing workload on the host. Missing VM telemetry fails the
// evaluation before any state is changed.
func (c *Controller) Evaluate(now float64, host Host, dimmerValue float64) (*Evaluation, error) {
	c.mu.Lock()
	ev, err := c.evaluateLocked(now, host, dimmerValue)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	for _, o := range c.observers {
		o.ObserveEvaluation(ev)
	}
	return ev, nil
}

func (c *Controller) evaluateLocked(now float64, host Host, dimmerValue float64) (*Evaluation, error) {
	ev := &Evaluation{HostID: host.ID(), Time: now, DimmerValue: dimmerValue}
	if !c.clock.IsBoundary(now) {
		return ev, nil
	}
	ev.Boundary = true

	previous := host.PreviousUtilization()
	triggered := previous >= c.cfg.DimmerUpThreshold

	vms := host.VMs()
	targets := make([]vmTarget, 0, len(vms))
	executing := 0
	for _, vm := range vms {
		t := vmTarget{vm: vm, workloads: vm.ExecutingWorkloads()}
		executing += len(t.workloads)
		if triggered && len(t.workloads) > 0 {
			u, err := vmPreviousUtilization(vm)
			if err != nil {
				return nil, fmt.Errorf("host %s: %w", host.ID(), err)
			}
			t.utilization = u
		}
		targets = append(targets, t)
	}

	acct := c.ledger.account(host.ID())
	ev.ObtainedRevenue = c.ledger.addObtainedRevenue(acct, executing)
	if !triggered {
		return ev, nil
	}

	ev.Triggered = true
	c.ledger.recordTrigger(acct)
	scaled := dimmerValue * previous / c.cfg.DimmerUpThreshold
	ev.ScaledDimmer = scaled

	disabled := policy.NewTagSet()
	for _, t := range targets {
		for _, w := range t.workloads {
			components := w.OptionalComponents()
			for _, comp := range components {
				comp.Enabled = true
			}
			c.selector.Select(components, t.utilization*scaled, disabled)
		}
	}

	// tags disabled by later workloads also apply to earlier ones
	for _, t := range targets {
		for _, w := range t.workloads {
			policy.Propagate(w.OptionalComponents(), disabled)
		}
	}

	for _, t := range targets {
		for _, w := range t.workloads {
			components := w.OptionalComponents()
			effective := EffectiveUtilization(t.utilization, components, c.cfg.LowerThreshold)
			w.SetInstantUtilization(effective, now)

			ev.RevenueLoss += c.ledger.addRevenueLoss(acct, components)
			ev.DeactivatedRatio += c.ledger.addDeactivatedRatio(acct, components, len(vms))
			ev.Workloads++

			c.logger.Debug("workload degraded",
				"host_id", host.ID(),
				"vm_id", t.vm.ID(),
				"workload_id", w.ID(),
				"vm_previous_utilization", t.utilization,
				"effective_utilization", effective)
		}
	}

	ev.DisabledTags = disabled.Tags()
	disabled.Clear()

	c.logger.Info("dimmer triggered",
		"host_id", host.ID(),
		"time", now,
		"dimmer_value", dimmerValue,
		"scaled_dimmer", scaled,
		"workloads", ev.Workloads,
		"disabled_tags", ev.DisabledTags)
	return ev, nil
}

// vmPreviousUtilization is the last requested demand over capacity
func vmPreviousUtilization(vm VM) (float64, error) {
	requested, ok := vm.LastRequestedMIPS()
	if !ok {
		return 0, fmt.Errorf("vm %s has no requested demand recorded: %w", vm.ID(), ErrMissingTelemetry)
	}
	if vm.MIPS() <= 0 {
		return 0, fmt.Errorf("vm %s has no capacity: %w", vm.ID(), ErrMissingTelemetry)
	}
	return requested / vm.MIPS(), nil
}

// ObserveInterval records the end of a processing step at now. A step that
// advanced the clock adds now to the triggerable intervals; at an interval
// boundary the number of hosts with non-zero utilization is stored under
// the interval start. It returns the active host count.
func (c *Controller) ObserveInterval(now, lastProcessTime float64, hosts []Host) int {
	c.mu.Lock()
	active := 0
	if now-lastProcessTime > 0 {
		c.ledger.recordInterval(now)
		for _, h := range hosts {
			if h.Utilization() > 0 {
				active++
			}
		}
	}
	boundary := c.clock.IsBoundary(now)
	start := c.clock.IntervalStart(now)
	if boundary {
		c.ledger.recordActiveHosts(start, active)
	}
	c.mu.Unlock()

	if boundary {
		for _, o := range c.observers {
			o.ObserveInterval(start, active)
		}
	}
	return active
}

// RevenueLoss sums the revenue loss over all hosts
func (c *Controller) RevenueLoss() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.RevenueLoss()
}

// ObtainedRevenue sums the obtained revenue over all hosts
func (c *Controller) ObtainedRevenue() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.ObtainedRevenue()
}

// DeactivatedRatio sums the deactivated ratio over all hosts
func (c *Controller) DeactivatedRatio() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.DeactivatedRatio()
}

// HostAccount returns the account of one host
func (c *Controller) HostAccount(hostID string) (HostAccount, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Account(hostID)
}

// HostAccounts returns every host account in first-seen order
func (c *Controller) HostAccounts() []HostAccount {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Accounts()
}

// DimmerTriggerCount returns how many host evaluations triggered
func (c *Controller) DimmerTriggerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.TriggerCount()
}

// TimesMayTriggerDimmer returns the number of recorded intervals times hostCount
func (c *Controller) TimesMayTriggerDimmer(hostCount int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.TriggerableIntervals() * hostCount
}

// ActiveHostsByInterval returns the active host table in insertion order
func (c *Controller) ActiveHostsByInterval() []models.IntervalCount {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.ActiveHostsByInterval()
}

// HighestDimmerValue returns the largest dimmer value produced so far
func (c *Controller) HighestDimmerValue() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dimmer.Highest
}

// LowestDimmerValue returns the smallest positive dimmer value produced so far
func (c *Controller) LowestDimmerValue() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dimmer.Lowest
}

// SeedsIssued returns how many probabilistic draws were taken
func (c *Controller) SeedsIssued() int64 {
	return c.seeds.Issued()
}

// Report assembles the end-of-run report. SimulatedTime and Ticks are left
// for the caller driving the clock.
func (c *Controller) Report(hostCount int) *models.Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	report := &models.Report{
		Policy:                c.selector.Name(),
		RevenueLoss:           c.ledger.RevenueLoss(),
		ObtainedRevenue:       c.ledger.ObtainedRevenue(),
		DeactivatedRatio:      c.ledger.DeactivatedRatio(),
		DimmerTriggerCount:    c.ledger.TriggerCount(),
		TimesMayTriggerDimmer: c.ledger.TriggerableIntervals() * hostCount,
		HighestDimmerValue:    c.dimmer.Highest,
		LowestDimmerValue:     c.dimmer.Lowest,
		ActiveHostsByInterval: c.ledger.ActiveHostsByInterval(),
	}
	for _, acct := range c.ledger.Accounts() {
		report.Hosts = append(report.Hosts, models.HostReport{
			HostID:           acct.HostID,
			RevenueLoss:      acct.RevenueLoss,
			ObtainedRevenue:  acct.ObtainedRevenue,
			DeactivatedRatio: acct.DeactivatedRatio,
			Triggers:         acct.Triggers,
		})
	}
	return report
}
