// Package population drives every cell's own gene network through intracellular
// sub-steps and publishes the results.
package population

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/cellfate/pkg/domain"
	"github.com/aretw0/cellfate/pkg/environment"
	"github.com/aretw0/cellfate/pkg/network"
	"github.com/aretw0/cellfate/pkg/ports"
)

// Mode selects how the per-cell loop executes.
type Mode string

const (
	// ModeSerial evaluates cells one after another in birth order.
	ModeSerial Mode = "serial"
	// ModeParallel evaluates cells on a bounded worker pool.
	ModeParallel Mode = "parallel"
)

// ParseMode validates a mode name. The empty string selects ModeSerial.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeSerial:
		return ModeSerial, nil
	case ModeParallel:
		return ModeParallel, nil
	}
	return "", &domain.ConfigurationError{
		Component: "population",
		Subject:   s,
		Reason:    "execution mode must be serial or parallel",
	}
}

// Coordinator owns the population and runs the intracellular sub-step.
// The topology is shared read-only; every cell has its own network.State and its own
// random stream derived from (seed, birth order, evaluation round), so serial and parallel runs with
// the same seed produce the same snapshots.
type Coordinator struct {
	net      *network.Network
	mapper   *environment.Mapper
	env      ports.Environment
	resolver ports.PhenotypeResolver
	store    ports.SnapshotStore
	recorder ports.SummaryRecorder
	hooks    domain.LifecycleHooks
	logger   *slog.Logger

	seed       uint64
	mode       Mode
	workers    int
	randomInit bool

	stepMu sync.Mutex // serialises Step
	rounds int        // committed intracellular sub-steps, guarded by stepMu
	mu     sync.RWMutex
	cells  map[string]*Cell
	births uint64
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSeed sets the master seed from which every cell's random stream is derived.
func WithSeed(seed uint64) Option {
	return func(c *Coordinator) { c.seed = seed }
}

// WithMode selects serial or parallel per-cell execution.
func WithMode(mode Mode) Option {
	return func(c *Coordinator) { c.mode = mode }
}

// WithWorkers bounds the parallel worker pool. Values < 1 mean GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *Coordinator) { c.workers = n }
}

// WithRandomInit makes every reset draw non-fate nodes uniformly instead of clearing them.
func WithRandomInit(enabled bool) Option {
	return func(c *Coordinator) { c.randomInit = enabled }
}

// WithResolver replaces the default PriorityResolver.
func WithResolver(r ports.PhenotypeResolver) Option {
	return func(c *Coordinator) {
		if r != nil {
			c.resolver = r
		}
	}
}

// WithStore publishes every cell snapshot after each sub-step.
func WithStore(s ports.SnapshotStore) Option {
	return func(c *Coordinator) { c.store = s }
}

// WithRecorder records every post-step summary.
func WithRecorder(r ports.SummaryRecorder) Option {
	return func(c *Coordinator) { c.recorder = r }
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Coordinator) { c.hooks = hooks }
}

// NewCoordinator creates an empty population. env may be nil, in which case every input
// falls back to its default state.
func NewCoordinator(net *network.Network, mapper *environment.Mapper, env ports.Environment, opts ...Option) (*Coordinator, error) {
	if net == nil {
		return nil, fmt.Errorf("population: network is required")
	}
	c := &Coordinator{
		net:      net,
		mapper:   mapper,
		env:      env,
		resolver: PriorityResolver{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		mode:     ModeSerial,
		cells:    make(map[string]*Cell),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.mapper == nil {
		m, err := environment.NewMapper(net, nil)
		if err != nil {
			return nil, err
		}
		c.mapper = m
	}
	if c.workers < 1 {
		c.workers = runtime.GOMAXPROCS(0)
	}
	if _, err := ParseMode(string(c.mode)); err != nil {
		return nil, err
	}
	return c, nil
}

// AddCell creates a cell (cell birth) with a freshly reset gene state.
// An empty id is replaced by "cell-<birth>".
func (c *Coordinator) AddCell(id string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	birth := c.births
	if id == "" {
		id = fmt.Sprintf("cell-%d", birth)
	}
	if _, exists := c.cells[id]; exists {
		return "", fmt.Errorf("population: cell %q already exists", id)
	}
	c.births++

	src := rand.NewPCG(c.streamSeed(-1), birth)
	state := c.net.NewState(rand.New(src))
	state.Reset(c.randomInit)
	c.cells[id] = &Cell{
		ID:        id,
		Birth:     birth,
		src:       src,
		state:     state,
		cache:     state.States(),
		outputs:   state.OutputStates(),
		phenotype: domain.PhenotypeQuiescent,
		evaluated: -1,
		round:     -1,
		acted:     -1,
	}
	return id, nil
}

// RemoveCell discards a cell (cell death) and its published snapshot.
func (c *Coordinator) RemoveCell(ctx context.Context, id string) error {
	c.mu.Lock()
	_, ok := c.cells[id]
	delete(c.cells, id)
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrCellNotFound, id)
	}
	if c.store != nil {
		if err := c.store.Delete(ctx, id); err != nil {
			return fmt.Errorf("population: delete snapshot %s: %w", id, err)
		}
	}
	return nil
}

// Len returns the number of living cells.
func (c *Coordinator) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cells)
}

// CellIDs returns the living cells in birth order.
func (c *Coordinator) CellIDs() []string {
	cells := c.ordered()
	ids := make([]string, len(cells))
	for i, cell := range cells {
		ids[i] = cell.ID
	}
	return ids
}

// Snapshot returns the cached results of one cell.
func (c *Coordinator) Snapshot(id string) (domain.CellSnapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cell, ok := c.cells[id]
	if !ok {
		return domain.CellSnapshot{}, fmt.Errorf("%w: %s", domain.ErrCellNotFound, id)
	}
	return cell.Snapshot(), nil
}

func (c *Coordinator) ordered() []*Cell {
	c.mu.RLock()
	cells := make([]*Cell, 0, len(c.cells))
	for _, cell := range c.cells {
		cells = append(cells, cell)
	}
	c.mu.RUnlock()
	sort.Slice(cells, func(i, j int) bool { return cells[i].Birth < cells[j].Birth })
	return cells
}

type result struct {
	states    domain.GeneState
	outputs   domain.GeneState
	phenotype domain.Phenotype
	flips     int
}

// streamSeed mixes the master seed with the evaluation round (-1 at birth). Together
// with the birth order it fixes a cell's draws for one round. A failed Step does not
// advance the round, so retrying it replays the same draws.
func (c *Coordinator) streamSeed(round int) uint64 {
	return c.seed ^ uint64(round+1)*0x9e3779b97f4a7c15
}

// evaluate runs one cell's intracellular sub-step. It touches only that cell's State.
func (c *Coordinator) evaluate(ctx context.Context, cell *Cell, round int) (result, error) {
	var conc map[string]float64
	if c.env != nil {
		var err error
		conc, err = c.env.Concentrations(ctx, cell.ID)
		if err != nil {
			return result{}, fmt.Errorf("cell %s: read concentrations: %w", cell.ID, err)
		}
	}

	inputs := c.mapper.Map(conc)
	cell.src.Seed(c.streamSeed(round), cell.Birth)
	cell.state.Reset(c.randomInit)
	cell.state.SetInputStates(inputs)
	flips := cell.state.Run(c.net.PropagationSteps())

	states := cell.state.States()
	return result{
		states:    states,
		outputs:   cell.state.OutputStates(),
		phenotype: c.resolver.Resolve(states),
		flips:     flips,
	}, nil
}

// Step runs one intracellular sub-step for every living cell, then reduces the finished
// per-cell results into a StepSummary and publishes snapshots and events.
func (c *Coordinator) Step(ctx context.Context, step int) (domain.StepSummary, error) {
	c.stepMu.Lock()
	defer c.stepMu.Unlock()

	cells := c.ordered()
	results := make([]result, len(cells))
	round := c.rounds

	// 1. Per-cell evaluation
	if c.mode == ModeParallel && len(cells) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.workers)
		for i, cell := range cells {
			g.Go(func() error {
				r, err := c.evaluate(gctx, cell, round)
				results[i] = r
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return domain.StepSummary{}, err
		}
	} else {
		for i, cell := range cells {
			r, err := c.evaluate(ctx, cell, round)
			if err != nil {
				return domain.StepSummary{}, err
			}
			results[i] = r
		}
	}

	// 2. Commit caches and reduce
	summary := domain.StepSummary{
		Step:       step,
		Cells:      len(cells),
		Phenotypes: make(map[domain.Phenotype]int),
	}
	events := make([]*domain.CellEvent, 0, len(cells))
	now := time.Now()

	c.mu.Lock()
	for i, cell := range cells {
		r := results[i]
		changes := domain.Diff(cell.cache, r.states)
		cell.cache = r.states
		cell.outputs = r.outputs
		cell.phenotype = r.phenotype
		cell.evaluated = step
		cell.round = round

		summary.Flips += r.flips
		summary.Phenotypes[r.phenotype]++
		events = append(events, &domain.CellEvent{
			EventBase: domain.EventBase{Timestamp: now, Type: domain.EventCellEvaluated, Step: step},
			CellID:    cell.ID,
			Flips:     r.flips,
			Changes:   changes,
			Phenotype: r.phenotype,
		})
	}
	c.mu.Unlock()
	c.rounds++

	c.logger.Debug("intracellular step complete",
		"step", step,
		"cells", summary.Cells,
		"flips", summary.Flips)

	// 3. Publish
	if err := c.publish(ctx, cells, summary); err != nil {
		return summary, err
	}

	if c.hooks.OnCellEvaluated != nil {
		for _, ev := range events {
			c.hooks.OnCellEvaluated(ctx, ev)
		}
	}
	if c.hooks.OnStepComplete != nil {
		c.hooks.OnStepComplete(ctx, &domain.StepEvent{
			EventBase: domain.EventBase{Timestamp: now, Type: domain.EventStepComplete, Step: step},
			Summary:   summary,
		})
	}
	return summary, nil
}

func (c *Coordinator) publish(ctx context.Context, cells []*Cell, summary domain.StepSummary) error {
	if c.store != nil {
		for _, cell := range cells {
			c.mu.RLock()
			snap := cell.Snapshot()
			c.mu.RUnlock()
			if err := c.store.Save(ctx, snap); err != nil {
				return fmt.Errorf("population: save snapshot %s: %w", cell.ID, err)
			}
		}
	}
	if c.recorder != nil {
		if err := c.recorder.Record(ctx, summary); err != nil {
			return fmt.Errorf("population: record summary: %w", err)
		}
	}
	return nil
}
