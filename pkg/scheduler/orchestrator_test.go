package scheduler_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cellfate/pkg/domain"
	"github.com/aretw0/cellfate/pkg/ports"
	"github.com/aretw0/cellfate/pkg/scheduler"
)

// trace records every operation execution as "op@t".
type trace struct{ calls []string }

func (tr *trace) handler(op domain.Operation) ports.OperationHandler {
	return ports.OperationFunc(func(_ context.Context, step int) error {
		tr.calls = append(tr.calls, fmt.Sprintf("%s@%d", op, step))
		return nil
	})
}

func (tr *trace) canonical() map[domain.Operation]ports.OperationHandler {
	return map[domain.Operation]ports.OperationHandler{
		domain.OpIntracellular: tr.handler(domain.OpIntracellular),
		domain.OpDiffusion:     tr.handler(domain.OpDiffusion),
		domain.OpIntercellular: tr.handler(domain.OpIntercellular),
	}
}

func TestOrchestrator_IntervalScenario(t *testing.T) {
	tr := &trace{}
	o, err := scheduler.New(domain.SchedulerConfig{
		DiffusionStep:     2,
		IntracellularStep: 1,
		IntercellularStep: 5,
		TotalSteps:        10,
	}, tr.canonical())
	require.NoError(t, err)

	require.NoError(t, o.Run(context.Background()))
	assert.Equal(t, 10, o.Clock())

	fired := map[domain.Operation][]int{}
	for step := 0; step < 10; step++ {
		for _, op := range o.Due(step) {
			fired[op] = append(fired[op], step)
		}
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, fired[domain.OpIntracellular])
	assert.Equal(t, []int{0, 2, 4, 6, 8}, fired[domain.OpDiffusion])
	assert.Equal(t, []int{0, 5}, fired[domain.OpIntercellular])

	// Execution order within a step is canonical.
	assert.Equal(t, []string{"intracellular@0", "diffusion@0", "intercellular@0", "intracellular@1"}, tr.calls[:4])
	assert.Len(t, tr.calls, 10+5+2)
}

func TestOrchestrator_SequenceMode(t *testing.T) {
	tr := &trace{}
	o, err := scheduler.New(domain.SchedulerConfig{
		Sequence: []domain.MacroStep{
			{Operation: domain.OpIntracellular, Repeat: 3},
			{Operation: domain.OpDiffusion, Repeat: 2},
			{Operation: "divide", Repeat: 1},
		},
		TotalSteps: 2,
	}, tr.canonical(), scheduler.WithOperation("divide", tr.handler("divide")))
	require.NoError(t, err)

	require.NoError(t, o.Run(context.Background()))
	assert.Equal(t, []string{
		"intracellular@0", "intracellular@0", "intracellular@0", "diffusion@0", "diffusion@0", "divide@0",
		"intracellular@1", "intracellular@1", "intracellular@1", "diffusion@1", "diffusion@1", "divide@1",
	}, tr.calls)
}

func TestNew_Validation(t *testing.T) {
	tr := &trace{}
	tests := []struct {
		name     string
		cfg      domain.SchedulerConfig
		handlers map[domain.Operation]ports.OperationHandler
		unknown  bool
	}{
		{
			name:     "Zero Interval",
			cfg:      domain.SchedulerConfig{DiffusionStep: 0, IntracellularStep: 1, IntercellularStep: 1},
			handlers: tr.canonical(),
		},
		{
			name:     "Negative Interval",
			cfg:      domain.SchedulerConfig{DiffusionStep: 1, IntracellularStep: -2, IntercellularStep: 1},
			handlers: tr.canonical(),
		},
		{
			name:     "Negative Total",
			cfg:      domain.SchedulerConfig{DiffusionStep: 1, IntracellularStep: 1, IntercellularStep: 1, TotalSteps: -1},
			handlers: tr.canonical(),
		},
		{
			name:     "Missing Canonical Handler",
			cfg:      domain.SchedulerConfig{DiffusionStep: 1, IntracellularStep: 1, IntercellularStep: 1},
			handlers: map[domain.Operation]ports.OperationHandler{domain.OpIntracellular: tr.handler(domain.OpIntracellular)},
			unknown:  true,
		},
		{
			name:     "Unknown Macrostep Operation",
			cfg:      domain.SchedulerConfig{Sequence: []domain.MacroStep{{Operation: "migrate", Repeat: 1}}},
			handlers: tr.canonical(),
			unknown:  true,
		},
		{
			name:     "Non-Positive Repeat",
			cfg:      domain.SchedulerConfig{Sequence: []domain.MacroStep{{Operation: domain.OpDiffusion, Repeat: 0}}},
			handlers: tr.canonical(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scheduler.New(tt.cfg, tt.handlers)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrConfiguration)
			if tt.unknown {
				assert.ErrorIs(t, err, domain.ErrUnknownOperation)
			}
		})
	}
}

func TestOrchestrator_StepErrorStopsRun(t *testing.T) {
	boom := errors.New("diffusion solver diverged")
	tr := &trace{}
	handlers := tr.canonical()
	handlers[domain.OpDiffusion] = ports.OperationFunc(func(_ context.Context, step int) error {
		if step == 2 {
			return boom
		}
		return nil
	})

	var events []*domain.ProcessEvent
	o, err := scheduler.New(domain.SchedulerConfig{
		DiffusionStep: 1, IntracellularStep: 1, IntercellularStep: 1, TotalSteps: 5,
	}, handlers, scheduler.WithLifecycleHooks(domain.LifecycleHooks{
		OnProcessFired: func(_ context.Context, e *domain.ProcessEvent) { events = append(events, e) },
	}))
	require.NoError(t, err)

	err = o.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, o.Clock(), "failed step must not advance the clock")

	last := events[len(events)-1]
	assert.Equal(t, domain.OpDiffusion, last.Operation)
	assert.Equal(t, 2, last.Step)
	assert.ErrorIs(t, last.Err, boom)
}

func TestOrchestrator_RunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	steps := 0
	handlers := map[domain.Operation]ports.OperationHandler{
		domain.OpIntracellular: ports.OperationFunc(func(context.Context, int) error {
			steps++
			if steps == 3 {
				cancel()
			}
			return nil
		}),
		domain.OpDiffusion:     ports.OperationFunc(func(context.Context, int) error { return nil }),
		domain.OpIntercellular: ports.OperationFunc(func(context.Context, int) error { return nil }),
	}

	o, err := scheduler.New(domain.SchedulerConfig{
		DiffusionStep: 1, IntracellularStep: 1, IntercellularStep: 1, TotalSteps: 100,
	}, handlers)
	require.NoError(t, err)

	err = o.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, o.Clock(), "the step in flight completes before cancellation is observed")
}

func TestOrchestrator_RepeatIndexInEvents(t *testing.T) {
	tr := &trace{}
	var repeats []int
	o, err := scheduler.New(domain.SchedulerConfig{
		Sequence: []domain.MacroStep{{Operation: domain.OpDiffusion, Repeat: 3}},
	}, tr.canonical(), scheduler.WithLifecycleHooks(domain.LifecycleHooks{
		OnProcessFired: func(_ context.Context, e *domain.ProcessEvent) { repeats = append(repeats, e.Repeat) },
	}))
	require.NoError(t, err)

	require.NoError(t, o.Step(context.Background()))
	assert.Equal(t, []int{0, 1, 2}, repeats)
	assert.Equal(t, 1, o.Clock())
}
