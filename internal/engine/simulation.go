package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoSim-25-26J-441/brownout-core/internal/brownout"
	"github.com/GoSim-25-26J-441/brownout-core/internal/policy"
	"github.com/GoSim-25-26J-441/brownout-core/internal/resource"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/config"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/logger"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/models"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/utils"
)

const tickIndexKey = "tick"

// StepHook is called after every datacenter processing step
type StepHook func(step *resource.StepResult)

type simOptions struct {
	logger    *slog.Logger
	observers []brownout.Observer
	hooks     []StepHook
	policy    *policy.Kind
}

// SimulationOption configures a Simulation
type SimulationOption func(*simOptions)

// WithLogger sets the logger shared by the engine, controller and datacenter
func WithLogger(l *slog.Logger) SimulationOption {
	return func(o *simOptions) {
		o.logger = l
	}
}

// WithObserver registers a controller observer
func WithObserver(obs brownout.Observer) SimulationOption {
	return func(o *simOptions) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

// WithStepHook registers a hook called after every processing step
func WithStepHook(h StepHook) SimulationOption {
	return func(o *simOptions) {
		if h != nil {
			o.hooks = append(o.hooks, h)
		}
	}
}

// WithPolicy overrides the degradation policy of the scenario
func WithPolicy(kind policy.Kind) SimulationOption {
	return func(o *simOptions) {
		o.policy = &kind
	}
}

// Simulation drives one scenario: scheduling ticks from the engine run
// datacenter processing steps until the scenario duration is reached.
type Simulation struct {
	engine     *Engine
	scenario   *config.Scenario
	controller *brownout.Controller
	datacenter *resource.Datacenter
	clock      utils.IntervalClock
	hooks      []StepHook
	logger     *slog.Logger
}

// NewSimulation builds the controller, datacenter and engine of a scenario
// and schedules the first tick.
func NewSimulation(runID string, scenario *config.Scenario, opts ...SimulationOption) (*Simulation, error) {
	o := &simOptions{logger: logger.Default}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logger.Default
	}
	log := o.logger.With("run_id", runID)

	cfg, err := brownout.ConfigFromScenario(scenario)
	if err != nil {
		return nil, fmt.Errorf("brownout config: %w", err)
	}
	if o.policy != nil {
		cfg.Policy = *o.policy
	}

	ctrlOpts := []brownout.Option{brownout.WithLogger(log)}
	for _, obs := range o.observers {
		ctrlOpts = append(ctrlOpts, brownout.WithObserver(obs))
	}
	controller, err := brownout.NewController(cfg, ctrlOpts...)
	if err != nil {
		return nil, err
	}

	datacenter, err := resource.NewDatacenter(scenario, controller, log)
	if err != nil {
		return nil, fmt.Errorf("datacenter: %w", err)
	}

	s := &Simulation{
		engine:     NewEngine(runID),
		scenario:   scenario,
		controller: controller,
		datacenter: datacenter,
		clock:      controller.Clock(),
		hooks:      o.hooks,
		logger:     log,
	}
	s.engine.SetLogger(log)
	s.engine.GetRunManager().SetPolicy(controller.PolicyName())
	s.engine.RegisterHandler(EventTypeSchedulingTick, s.handleTick)

	if first := s.clock.TickTime(0); first <= scenario.Simulation.Duration {
		if err := s.engine.ScheduleAt(EventTypeSchedulingTick, first, PriorityTick, map[string]any{tickIndexKey: 0}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Simulation) handleTick(e *Engine, ev *Event) error {
	step, err := s.datacenter.Process(ev.Time)
	if err != nil {
		return err
	}
	for _, h := range s.hooks {
		h(step)
	}

	n, _ := ev.Data[tickIndexKey].(int)
	next := s.clock.TickTime(n + 1)
	if next > s.scenario.Simulation.Duration {
		return nil
	}
	return e.ScheduleAt(EventTypeSchedulingTick, next, PriorityTick, map[string]any{tickIndexKey: n + 1})
}

// Run executes the simulation to the end of the scenario and returns the
// final report
func (s *Simulation) Run(ctx context.Context) (*models.Report, error) {
	if err := s.engine.Run(ctx, s.scenario.Simulation.Duration); err != nil {
		return nil, err
	}
	report := s.datacenter.Report()
	s.logger.Info("simulation report",
		"policy", report.Policy,
		"revenue_loss", report.RevenueLoss,
		"obtained_revenue", report.ObtainedRevenue,
		"deactivated_ratio", report.DeactivatedRatio,
		"dimmer_triggers", report.DimmerTriggerCount,
		"ticks", report.Ticks)
	return report, nil
}

// Stop cancels a running simulation
func (s *Simulation) Stop() {
	s.engine.Stop()
}

// Report returns the report of the steps processed so far
func (s *Simulation) Report() *models.Report {
	return s.datacenter.Report()
}

// RunState returns the lifecycle state of the run
func (s *Simulation) RunState() *models.Run {
	return s.engine.GetRunManager().GetRun()
}

// Controller returns the brownout controller
func (s *Simulation) Controller() *brownout.Controller {
	return s.controller
}

// Datacenter returns the simulated datacenter
func (s *Simulation) Datacenter() *resource.Datacenter {
	return s.datacenter
}

// Engine returns the event engine
func (s *Simulation) Engine() *Engine {
	return s.engine
}
