package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/GoSim-25-26J-441/brownout-core/pkg/logger"
)

// ErrEventInPast is returned when an event is scheduled before the current
// simulated time
var ErrEventInPast = errors.New("event scheduled in the past")

// Engine is the discrete-event simulation engine. Simulated time only
// advances when an event is processed.
type Engine struct {
	eventQueue *EventQueue
	runManager *RunManager
	handlers   map[EventType]EventHandler
	logger     *slog.Logger

	mu  sync.RWMutex
	now float64

	eventCounter int64
	processed    int64
}

// EventHandler is a function that handles a specific event type
type EventHandler func(*Engine, *Event) error

// NewEngine creates a new simulation engine
func NewEngine(runID string) *Engine {
	return &Engine{
		eventQueue: NewEventQueue(),
		runManager: NewRunManager(runID),
		handlers:   make(map[EventType]EventHandler),
		logger:     logger.Default,
	}
}

// SetLogger sets the engine's logger
func (e *Engine) SetLogger(l *slog.Logger) {
	if l != nil {
		e.logger = l
	}
}

// RegisterHandler registers an event handler
func (e *Engine) RegisterHandler(eventType EventType, handler EventHandler) {
	e.handlers[eventType] = handler
}

// ScheduleEvent schedules an event
func (e *Engine) ScheduleEvent(event *Event) error {
	if now := e.Now(); event.Time < now {
		return fmt.Errorf("%s at %.3f (now %.3f): %w", event.Type, event.Time, now, ErrEventInPast)
	}
	counter := atomic.AddInt64(&e.eventCounter, 1)
	if event.ID == "" {
		event.ID = fmt.Sprintf("evt-%d", counter)
	}
	e.eventQueue.Schedule(event)

	e.logger.Debug("event scheduled",
		"event_id", event.ID,
		"type", event.Type,
		"time", event.Time,
		"queue_size", e.eventQueue.Size())
	return nil
}

// ScheduleAt schedules an event at a specific simulation time
func (e *Engine) ScheduleAt(eventType EventType, at float64, priority int, data map[string]any) error {
	return e.ScheduleEvent(&Event{
		Type:     eventType,
		Time:     at,
		Priority: priority,
		Data:     data,
	})
}

// ScheduleAfter schedules an event delay time units after the current simulation time
func (e *Engine) ScheduleAfter(eventType EventType, delay float64, priority int, data map[string]any) error {
	return e.ScheduleAt(eventType, e.Now()+delay, priority, data)
}

// Now returns the current simulation time
func (e *Engine) Now() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.now
}

func (e *Engine) advance(t float64) {
	e.mu.Lock()
	e.now = t
	e.mu.Unlock()
}

// Run processes events until the simulation end event at until, an empty
// queue, a handler error or cancellation. Events scheduled exactly at until
// run before the end event.
func (e *Engine) Run(ctx context.Context, until float64) error {
	runID := e.runManager.RunID()
	e.logger.Info("starting simulation", "run_id", runID, "until", until)

	e.runManager.Start()
	if err := e.ScheduleAt(EventTypeSimulationEnd, until, PriorityEnd, nil); err != nil {
		e.runManager.Fail(err)
		return err
	}

	runCtx := e.runManager.Context()
	for {
		select {
		case <-ctx.Done():
			e.runManager.Cancel()
			e.logger.Info("simulation cancelled", "run_id", runID, "sim_time", e.Now())
			return fmt.Errorf("simulation cancelled: %w", ctx.Err())
		case <-runCtx.Done():
			e.logger.Info("simulation stopped", "run_id", runID, "sim_time", e.Now())
			return fmt.Errorf("simulation stopped: %w", runCtx.Err())
		default:
		}

		event := e.eventQueue.Next()
		if event == nil {
			e.advance(until)
			break
		}

		e.logger.Debug("processing event",
			"event_id", event.ID,
			"type", event.Type,
			"previous_sim_time", e.Now(),
			"event_time", event.Time,
			"queue_size", e.eventQueue.Size())
		e.advance(event.Time)

		if event.Type == EventTypeSimulationEnd {
			break
		}

		handler, ok := e.handlers[event.Type]
		if !ok {
			e.logger.Warn("no handler for event type",
				"event_type", event.Type,
				"event_id", event.ID)
			continue
		}
		atomic.AddInt64(&e.processed, 1)
		if err := handler(e, event); err != nil {
			e.logger.Error("event handler error",
				"event_id", event.ID,
				"type", event.Type,
				"error", err)
			err = fmt.Errorf("%s at %.3f: %w", event.Type, event.Time, err)
			e.runManager.Fail(err)
			return err
		}
	}

	e.runManager.Complete()
	e.logger.Info("simulation completed",
		"run_id", runID,
		"sim_time", e.Now(),
		"events_processed", atomic.LoadInt64(&e.processed))
	return nil
}

// GetRunManager returns the run manager
func (e *Engine) GetRunManager() *RunManager {
	return e.runManager
}

// GetEventQueue returns the event queue
func (e *Engine) GetEventQueue() *EventQueue {
	return e.eventQueue
}

// Stop stops the simulation
func (e *Engine) Stop() {
	e.runManager.Cancel()
	e.eventQueue.Clear()
	e.logger.Info("simulation stop requested", "run_id", e.runManager.RunID())
}

// GetStats returns current simulation statistics
func (e *Engine) GetStats() map[string]any {
	stats := e.runManager.GetStats()
	stats["sim_time"] = e.Now()
	stats["events_in_queue"] = e.eventQueue.Size()
	stats["events_scheduled"] = atomic.LoadInt64(&e.eventCounter)
	stats["events_processed"] = atomic.LoadInt64(&e.processed)
	return stats
}
