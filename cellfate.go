package cellfate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/cellfate/pkg/adapters/loam"
	"github.com/aretw0/cellfate/pkg/adapters/memory"
	"github.com/aretw0/cellfate/pkg/adapters/redis"
	"github.com/aretw0/cellfate/pkg/adapters/sqlite"
	"github.com/aretw0/cellfate/pkg/config"
	"github.com/aretw0/cellfate/pkg/domain"
	"github.com/aretw0/cellfate/pkg/environment"
	"github.com/aretw0/cellfate/pkg/network"
	"github.com/aretw0/cellfate/pkg/population"
	"github.com/aretw0/cellfate/pkg/ports"
	"github.com/aretw0/cellfate/pkg/scheduler"
)

// Simulation is the high-level entry point of the library.
// It wires the network, the environment mapper, the population and the orchestrator.
type Simulation struct {
	cfg          config.Config
	cfgSet       bool
	loader       ports.TopologyLoader
	env          ports.Environment
	store        ports.SnapshotStore
	recorder     ports.SummaryRecorder
	resolver     ports.PhenotypeResolver
	locker       ports.RunLocker
	lockTTL      time.Duration
	diffusion    ports.OperationHandler
	intercell    ports.OperationHandler
	operations   map[domain.Operation]ports.OperationHandler
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	closers      []io.Closer
	net          *network.Network
	coordinator  *population.Coordinator
	orchestrator *scheduler.Orchestrator
	baseDir      string
	Name         string
}

// Option defines a functional option for configuring the Simulation.
type Option func(*Simulation)

// WithConfig supplies an already-loaded configuration; the path given to New is then
// only used as the run name.
func WithConfig(cfg config.Config) Option {
	return func(s *Simulation) {
		s.cfg = cfg
		s.cfgSet = true
	}
}

// WithLoader overrides where the topology comes from (default: the config's network section).
func WithLoader(l ports.TopologyLoader) Option {
	return func(s *Simulation) { s.loader = l }
}

// WithEnvironment overrides the concentration source (default: the config's static field).
func WithEnvironment(env ports.Environment) Option {
	return func(s *Simulation) { s.env = env }
}

// WithStore overrides the snapshot store selected by the config.
func WithStore(store ports.SnapshotStore) Option {
	return func(s *Simulation) { s.store = store }
}

// WithRecorder overrides the summary recorder selected by the config.
func WithRecorder(r ports.SummaryRecorder) Option {
	return func(s *Simulation) { s.recorder = r }
}

// WithResolver replaces the default phenotype priority.
func WithResolver(r ports.PhenotypeResolver) Option {
	return func(s *Simulation) { s.resolver = r }
}

// WithRunLocker makes Run (and Lease) hold a lease on the run name for its whole duration.
func WithRunLocker(l ports.RunLocker, ttl time.Duration) Option {
	return func(s *Simulation) {
		s.locker = l
		s.lockTTL = ttl
	}
}

// WithDiffusion installs the diffusion collaborator (default: no-op).
func WithDiffusion(h ports.OperationHandler) Option {
	return func(s *Simulation) { s.diffusion = h }
}

// WithIntercellular installs the intercellular collaborator (default: no-op, or the
// built-in fate actions when simulation.fate_actions is set).
func WithIntercellular(h ports.OperationHandler) Option {
	return func(s *Simulation) { s.intercell = h }
}

// WithOperation registers a custom operation for sequence mode.
func WithOperation(op domain.Operation, h ports.OperationHandler) Option {
	return func(s *Simulation) {
		if s.operations == nil {
			s.operations = make(map[domain.Operation]ports.OperationHandler)
		}
		s.operations[op] = h
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Simulation) { s.hooks = hooks }
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulation) { s.logger = logger }
}

// New builds a simulation from the configuration file at configPath, or from WithConfig.
// Every structural problem is reported before anything runs.
func New(configPath string, opts ...Option) (*Simulation, error) {
	sim := &Simulation{}
	for _, opt := range opts {
		opt(sim)
	}

	if !sim.cfgSet {
		if configPath == "" {
			return nil, fmt.Errorf("configPath is required when no config is provided")
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		sim.cfg = cfg
	} else if err := sim.cfg.Validate(); err != nil {
		return nil, err
	}
	if configPath != "" {
		sim.baseDir = filepath.Dir(configPath)
		base := filepath.Base(configPath)
		sim.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if sim.Name == "" {
		sim.Name = "default"
	}

	if sim.logger == nil {
		sim.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	sim.logger = sim.logger.With("run", sim.Name)

	if err := sim.build(); err != nil {
		_ = sim.Close()
		return nil, err
	}
	return sim, nil
}

func (s *Simulation) build() error {
	if s.loader == nil {
		s.loader = s.cfg
		if dir := s.cfg.ModelDir; dir != "" {
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(s.baseDir, dir)
			}
			l, err := loam.Open(dir, s.cfg.Network.PropagationSteps)
			if err != nil {
				return err
			}
			s.loader = l
		}
	}
	topo, err := s.loader.LoadTopology(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load topology: %w", err)
	}

	// 1. Topology and input mapping
	s.net, err = network.New(topo, network.WithLogger(s.logger))
	if err != nil {
		return err
	}
	mapper, err := environment.NewMapper(s.net, s.cfg.Associations)
	if err != nil {
		return err
	}

	// 2. Collaborators
	if s.env == nil {
		env := memory.NewEnvironment(s.cfg.Environment.Shared)
		for id, field := range s.cfg.Environment.Cells {
			env.SetLocal(id, field)
		}
		s.env = env
	}
	if err := s.openStores(); err != nil {
		return err
	}

	// 3. Population
	mode, err := population.ParseMode(s.cfg.Simulation.Mode)
	if err != nil {
		return err
	}
	s.coordinator, err = population.NewCoordinator(s.net, mapper, s.env,
		population.WithSeed(s.cfg.Simulation.Seed),
		population.WithMode(mode),
		population.WithWorkers(s.cfg.Simulation.Workers),
		population.WithRandomInit(s.cfg.Simulation.RandomInit),
		population.WithResolver(s.resolver),
		population.WithStore(s.store),
		population.WithRecorder(s.recorder),
		population.WithLifecycleHooks(s.hooks),
		population.WithLogger(s.logger),
	)
	if err != nil {
		return err
	}

	// 4. Orchestrator
	handlers := map[domain.Operation]ports.OperationHandler{
		domain.OpIntracellular: ports.OperationFunc(func(ctx context.Context, step int) error {
			_, err := s.coordinator.Step(ctx, step)
			return err
		}),
		domain.OpDiffusion:     s.diffusion,
		domain.OpIntercellular: s.intercell,
	}
	if handlers[domain.OpDiffusion] == nil {
		handlers[domain.OpDiffusion] = noop
	}
	if handlers[domain.OpIntercellular] == nil {
		handlers[domain.OpIntercellular] = noop
		if s.cfg.Simulation.FateActions {
			handlers[domain.OpIntercellular] = s.coordinator.FateHandler(s.cfg.Simulation.MaxCells)
		}
	}
	schedOpts := []scheduler.Option{
		scheduler.WithLogger(s.logger),
		scheduler.WithLifecycleHooks(s.hooks),
	}
	for op, h := range s.operations {
		schedOpts = append(schedOpts, scheduler.WithOperation(op, h))
	}
	s.orchestrator, err = scheduler.New(s.cfg.Scheduler, handlers, schedOpts...)
	return err
}

var noop = ports.OperationFunc(func(context.Context, int) error { return nil })

// openStores honours the config's store section for whatever was not injected.
func (s *Simulation) openStores() error {
	switch s.cfg.Store.Driver {
	case config.DriverRedis:
		if s.store != nil && s.recorder != nil {
			break
		}
		rc := s.cfg.Store.Redis
		st := redis.New(rc.Addr, rc.Password, rc.DB,
			redis.WithPrefix(rc.Prefix+s.Name+":"),
			redis.WithTTL(rc.TTL),
		)
		s.closers = append(s.closers, st)
		if s.store == nil {
			s.store = st
		}
		if s.recorder == nil {
			s.recorder = st
		}
		if s.locker == nil {
			s.locker = redis.NewLocker(st.Client(), rc.Prefix)
			s.lockTTL = time.Hour
		}
	case config.DriverSQLite:
		if s.store != nil && s.recorder != nil {
			break
		}
		st, err := sqlite.Open(s.cfg.Store.SQLite.DSN, sqlite.WithRun(s.Name))
		if err != nil {
			return err
		}
		s.closers = append(s.closers, st)
		if s.store == nil {
			s.store = st
		}
		if s.recorder == nil {
			s.recorder = st
		}
	}

	if s.store == nil || s.recorder == nil {
		mem := memory.NewStore()
		if s.store == nil {
			s.store = mem
		}
		if s.recorder == nil {
			s.recorder = mem
		}
	}
	return nil
}

// Seed creates n cells (cell birth). n <= 0 uses simulation.cells from the config.
func (s *Simulation) Seed(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		n = s.cfg.Simulation.Cells
	}
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return ids, err
		}
		id, err := s.coordinator.AddCell("")
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	s.logger.Info("population seeded", "cells", len(ids))
	return ids, nil
}

// AddCell creates one cell with the given ID ("" generates one).
func (s *Simulation) AddCell(id string) (string, error) {
	return s.coordinator.AddCell(id)
}

// RemoveCell discards a cell and its published snapshot.
func (s *Simulation) RemoveCell(ctx context.Context, id string) error {
	return s.coordinator.RemoveCell(ctx, id)
}

// Step executes one global step of the orchestrator.
func (s *Simulation) Step(ctx context.Context) error {
	return s.orchestrator.Step(ctx)
}

// Lease takes the exclusive lease on the run name when a RunLocker is configured.
// Callers driving Step themselves hold it for the whole run; the returned function gives
// it back and is safe to call after ctx is cancelled. Without a locker it is a no-op.
func (s *Simulation) Lease(ctx context.Context) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	release, err := s.locker.Acquire(ctx, s.Name, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to lease run %q: %w", s.Name, err)
	}
	return func() {
		if relErr := release(context.WithoutCancel(ctx)); relErr != nil {
			s.logger.Warn("failed to release run lease", "err", relErr)
		}
	}, nil
}

// Run executes global steps until scheduler.total_steps is reached or ctx ends.
func (s *Simulation) Run(ctx context.Context) error {
	release, err := s.Lease(ctx)
	if err != nil {
		return err
	}
	defer release()

	start := time.Now()
	s.logger.Info("run started",
		"total_steps", s.orchestrator.TotalSteps(),
		"cells", s.coordinator.Len())

	if err := s.orchestrator.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			s.logger.Info("run canceled", "step", s.orchestrator.Clock())
		}
		return err
	}

	s.logger.Info("run finished",
		"steps", s.orchestrator.Clock(),
		"cells", s.coordinator.Len(),
		"duration", time.Since(start))
	return nil
}

// Clock returns the number of completed global steps.
func (s *Simulation) Clock() int { return s.orchestrator.Clock() }

// CellIDs returns the living cells in birth order.
func (s *Simulation) CellIDs() []string { return s.coordinator.CellIDs() }

// Snapshot returns the last evaluation of a living cell.
func (s *Simulation) Snapshot(id string) (domain.CellSnapshot, error) {
	return s.coordinator.Snapshot(id)
}

// Summaries returns the recorded post-step aggregates.
func (s *Simulation) Summaries(ctx context.Context) ([]domain.StepSummary, error) {
	return s.recorder.History(ctx)
}

// Network returns the immutable topology shared by every cell.
func (s *Simulation) Network() *network.Network { return s.net }

// Topology returns the validated node list for introspection.
func (s *Simulation) Topology() domain.Topology {
	return domain.Topology{
		Nodes:            s.net.Nodes(),
		Inputs:           s.net.Inputs(),
		Outputs:          s.net.Outputs(),
		PropagationSteps: s.net.PropagationSteps(),
	}
}

// Config returns the configuration the simulation was built from.
func (s *Simulation) Config() config.Config { return s.cfg }

// Close releases the stores opened from the configuration.
func (s *Simulation) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	s.closers = nil
	return errors.Join(errs...)
}
