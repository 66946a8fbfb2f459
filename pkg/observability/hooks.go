package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/cellfate/pkg/domain"
)

// LoggingHooks logs every lifecycle event. Operations are logged at Debug, failed
// operations at Error, step summaries at Info.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnProcessFired: func(ctx context.Context, e *domain.ProcessEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "process failed",
					"operation", e.Operation,
					"step", e.Step,
					"err", e.Err)
				return
			}
			logger.DebugContext(ctx, "process fired",
				"operation", e.Operation,
				"step", e.Step,
				"repeat", e.Repeat,
				"duration", e.Duration)
		},
		OnCellEvaluated: func(ctx context.Context, e *domain.CellEvent) {
			if len(e.Changes) == 0 {
				return
			}
			logger.DebugContext(ctx, "cell evaluated",
				"cell", e.CellID,
				"step", e.Step,
				"flips", e.Flips,
				"changes", len(e.Changes),
				"phenotype", e.Phenotype)
		},
		OnStepComplete: func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, "step complete",
				"step", e.Summary.Step,
				"cells", e.Summary.Cells,
				"flips", e.Summary.Flips,
				"phenotypes", e.Summary.Phenotypes)
		},
	}
}

// Merge combines several hook sets; every non-nil callback is called in argument order.
func Merge(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var (
		fired     []func(context.Context, *domain.ProcessEvent)
		evaluated []func(context.Context, *domain.CellEvent)
		complete  []func(context.Context, *domain.StepEvent)
	)
	for _, h := range sets {
		if h.OnProcessFired != nil {
			fired = append(fired, h.OnProcessFired)
		}
		if h.OnCellEvaluated != nil {
			evaluated = append(evaluated, h.OnCellEvaluated)
		}
		if h.OnStepComplete != nil {
			complete = append(complete, h.OnStepComplete)
		}
	}

	var out domain.LifecycleHooks
	if len(fired) > 0 {
		out.OnProcessFired = func(ctx context.Context, e *domain.ProcessEvent) {
			for _, f := range fired {
				f(ctx, e)
			}
		}
	}
	if len(evaluated) > 0 {
		out.OnCellEvaluated = func(ctx context.Context, e *domain.CellEvent) {
			for _, f := range evaluated {
				f(ctx, e)
			}
		}
	}
	if len(complete) > 0 {
		out.OnStepComplete = func(ctx context.Context, e *domain.StepEvent) {
			for _, f := range complete {
				f(ctx, e)
			}
		}
	}
	return out
}
