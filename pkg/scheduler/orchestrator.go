// Package scheduler implements the multi-timescale orchestrator that decides, per global
// step, which operations run and in what order.
//
// In interval mode each canonical operation fires at step t when t is a multiple of its
// interval, always in the order intracellular, diffusion, intercellular. In sequence mode
// every Step runs the full configured macrostep: each operation repeated as declared.
package scheduler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/cellfate/pkg/domain"
	"github.com/aretw0/cellfate/pkg/ports"
	"github.com/aretw0/cellfate/pkg/registry"
)

const component = "scheduler"

// Orchestrator is single-threaded and step-driven. It is not safe for concurrent Step calls.
type Orchestrator struct {
	cfg    domain.SchedulerConfig
	ops    *registry.Registry
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	clock  int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks; OnProcessFired is called after
// every executed operation.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *Orchestrator) { o.hooks = hooks }
}

// WithOperation registers a named operation for use in sequence mode.
func WithOperation(op domain.Operation, h ports.OperationHandler) Option {
	return func(o *Orchestrator) { o.ops.Register(op, h) }
}

// New validates the configuration against the registered handlers.
func New(cfg domain.SchedulerConfig, handlers map[domain.Operation]ports.OperationHandler, opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		cfg:    cfg,
		ops:    registry.NewRegistry(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for op, h := range handlers {
		o.ops.Register(op, h)
	}
	for _, opt := range opts {
		opt(o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Orchestrator) validate() error {
	var errs domain.ConfigurationErrors

	if o.cfg.TotalSteps < 0 {
		errs.Add(component, "total_steps", fmt.Sprintf("must be >= 0, got %d", o.cfg.TotalSteps), nil)
	}

	if o.cfg.SequenceMode() {
		for i, ms := range o.cfg.Sequence {
			subject := string(ms.Operation)
			if ms.Operation == "" {
				errs.Add(component, fmt.Sprintf("sequence[%d]", i), "macrostep has no operation", nil)
				continue
			}
			if !o.ops.Has(ms.Operation) {
				o.logger.Warn("macrostep names an unregistered operation",
					"operation", ms.Operation,
					"registered", o.ops.Names())
				errs.Add(component, subject, "no handler registered", domain.ErrUnknownOperation)
			}
			if ms.Repeat <= 0 {
				errs.Add(component, subject, fmt.Sprintf("repeat must be > 0, got %d", ms.Repeat), nil)
			}
		}
		return errs.Err()
	}

	for _, op := range domain.CanonicalOperations {
		if k := o.cfg.Interval(op); k <= 0 {
			errs.Add(component, string(op), fmt.Sprintf("interval must be > 0, got %d", k), nil)
		}
		if !o.ops.Has(op) {
			errs.Add(component, string(op), "no handler registered", domain.ErrUnknownOperation)
		}
	}
	return errs.Err()
}

// Clock returns the number of completed global steps.
func (o *Orchestrator) Clock() int { return o.clock }

// TotalSteps returns the configured run length.
func (o *Orchestrator) TotalSteps() int { return o.cfg.TotalSteps }

// Due returns the operations that execute at global step t, in execution order.
// Repeated macrosteps appear once per repetition.
func (o *Orchestrator) Due(t int) []domain.Operation {
	if o.cfg.SequenceMode() {
		var due []domain.Operation
		for _, ms := range o.cfg.Sequence {
			for i := 0; i < ms.Repeat; i++ {
				due = append(due, ms.Operation)
			}
		}
		return due
	}

	due := make([]domain.Operation, 0, len(domain.CanonicalOperations))
	for _, op := range domain.CanonicalOperations {
		if t%o.cfg.Interval(op) == 0 {
			due = append(due, op)
		}
	}
	return due
}

// Step executes every operation due at the current clock value and advances the clock.
// The first failing operation aborts the step; the clock is not advanced.
func (o *Orchestrator) Step(ctx context.Context) error {
	t := o.clock
	due := o.Due(t)
	repeats := make(map[domain.Operation]int, len(due))

	for _, op := range due {
		start := time.Now()
		err := o.ops.Execute(ctx, op, t)
		repeat := repeats[op]
		repeats[op]++

		if o.hooks.OnProcessFired != nil {
			o.hooks.OnProcessFired(ctx, &domain.ProcessEvent{
				EventBase: domain.EventBase{Timestamp: start, Type: domain.EventProcessFired, Step: t},
				Operation: op,
				Repeat:    repeat,
				Duration:  time.Since(start),
				Err:       err,
			})
		}
		if err != nil {
			return fmt.Errorf("step %d: %s: %w", t, op, err)
		}
	}

	o.logger.Debug("global step complete", "step", t, "fired", due)
	o.clock++
	return nil
}

// Run steps until the clock reaches TotalSteps. The context is checked between global
// steps; a running step is never interrupted by the orchestrator itself.
func (o *Orchestrator) Run(ctx context.Context) error {
	for o.clock < o.cfg.TotalSteps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := o.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}
