package cellfate_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cellfate"
	"github.com/aretw0/cellfate/pkg/adapters/memory"
	"github.com/aretw0/cellfate/pkg/config"
	"github.com/aretw0/cellfate/pkg/domain"
	"github.com/aretw0/cellfate/pkg/ports"
)

const modelYAML = `
network:
  propagation_steps: 30
  outputs: [Proliferation, Apoptosis]
  nodes:
    - {name: EGF, is_input: true}
    - {name: TNF, is_input: true}
    - {name: Proliferation, logic: EGF AND NOT TNF}
    - {name: Apoptosis, logic: TNF}
associations:
  - {substance: egf, node: EGF, threshold: 1}
  - {substance: tnf, node: TNF, threshold: 1}
scheduler:
  diffusion_step: 2
  intracellular_step: 1
  intercellular_step: 5
  total_steps: 6
simulation:
  seed: 11
  cells: 3
environment:
  shared: {egf: 2}
  cells:
    cell-2: {tnf: 2}
`

func writeModel(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(modelYAML), 0o644))
	return path
}

func TestSimulation_FromFile(t *testing.T) {
	ctx := context.Background()

	var diffusionSteps []int
	sim, err := cellfate.New(writeModel(t),
		cellfate.WithDiffusion(ports.OperationFunc(func(_ context.Context, step int) error {
			diffusionSteps = append(diffusionSteps, step)
			return nil
		})),
	)
	require.NoError(t, err)
	defer sim.Close()
	assert.Equal(t, "model", sim.Name)

	ids, err := sim.Seed(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"cell-0", "cell-1", "cell-2"}, ids)

	require.NoError(t, sim.Run(ctx))
	assert.Equal(t, 6, sim.Clock())
	assert.Equal(t, []int{0, 2, 4}, diffusionSteps)

	// cell-2 sees TNF locally; the reset clears fates so Proliferation never sticks.
	snap, err := sim.Snapshot("cell-2")
	require.NoError(t, err)
	assert.Equal(t, domain.PhenotypeApoptotic, snap.Phenotype)
	assert.Equal(t, 5, snap.Step)
	assert.False(t, snap.Outputs["Proliferation"])

	snap, err = sim.Snapshot("cell-0")
	require.NoError(t, err)
	assert.Equal(t, domain.PhenotypeProliferating, snap.Phenotype)

	history, err := sim.Summaries(ctx)
	require.NoError(t, err)
	require.Len(t, history, 6)
	assert.Equal(t, map[domain.Phenotype]int{
		domain.PhenotypeProliferating: 2,
		domain.PhenotypeApoptotic:     1,
	}, history[5].Phenotypes)
}

func TestSimulation_InvalidModel(t *testing.T) {
	cfg := config.Default()
	cfg.Network = domain.Topology{Nodes: []domain.NetworkNode{
		{Name: "A", Logic: "B AND"},
	}}
	_, err := cellfate.New("", cellfate.WithConfig(cfg))
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = cellfate.New("")
	assert.Error(t, err, "a path or a config is required")
}

func TestSimulation_UnknownMacrostep(t *testing.T) {
	cfg := config.Default()
	cfg.Network = domain.Topology{Nodes: []domain.NetworkNode{{Name: "A", IsInput: true}}}
	cfg.Scheduler.Sequence = []domain.MacroStep{{Operation: "migrate", Repeat: 1}}

	_, err := cellfate.New("", cellfate.WithConfig(cfg))
	assert.ErrorIs(t, err, domain.ErrUnknownOperation)

	sim, err := cellfate.New("", cellfate.WithConfig(cfg),
		cellfate.WithOperation("migrate", ports.OperationFunc(func(context.Context, int) error { return nil })))
	require.NoError(t, err)
	require.NoError(t, sim.Step(context.Background()))
}

func TestSimulation_FateActions(t *testing.T) {
	ctx := context.Background()
	cfg, err := config.Parse([]byte(modelYAML), "yaml")
	require.NoError(t, err)
	cfg.Simulation.FateActions = true
	cfg.Simulation.MaxCells = 6

	store := memory.NewStore()
	sim, err := cellfate.New("fate", cellfate.WithConfig(cfg), cellfate.WithStore(store))
	require.NoError(t, err)

	_, err = sim.Seed(ctx, 0)
	require.NoError(t, err)
	require.NoError(t, sim.Run(ctx))

	// Intercellular fires at t=0 and t=5: cell-2 dies at t=0 while the two others
	// divide, then the four survivors divide until the cap.
	assert.NotContains(t, sim.CellIDs(), "cell-2")
	_, err = store.Load(ctx, "cell-2")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	assert.Len(t, sim.CellIDs(), 6)
}

func TestSimulation_FateActionsFollowEvaluations(t *testing.T) {
	ctx := context.Background()
	cfg, err := config.Parse([]byte(modelYAML), "yaml")
	require.NoError(t, err)
	cfg.Scheduler.IntracellularStep = 5
	cfg.Scheduler.IntercellularStep = 1
	cfg.Scheduler.TotalSteps = 5
	cfg.Simulation.Cells = 1
	cfg.Simulation.FateActions = true

	sim, err := cellfate.New("fate-intervals", cellfate.WithConfig(cfg))
	require.NoError(t, err)
	defer sim.Close()

	_, err = sim.Seed(ctx, 0)
	require.NoError(t, err)
	require.NoError(t, sim.Run(ctx))

	// One intracellular evaluation at t=0, five intercellular firings: one division.
	assert.Equal(t, []string{"cell-0", "cell-1"}, sim.CellIDs())
}

func TestSimulation_SQLiteStore(t *testing.T) {
	ctx := context.Background()
	cfg, err := config.Parse([]byte(modelYAML), "yaml")
	require.NoError(t, err)
	cfg.Store.Driver = config.DriverSQLite
	cfg.Store.SQLite.DSN = filepath.Join(t.TempDir(), "runs.db")

	sim, err := cellfate.New("sqlite-run", cellfate.WithConfig(cfg))
	require.NoError(t, err)
	defer sim.Close()

	_, err = sim.Seed(ctx, 2)
	require.NoError(t, err)
	require.NoError(t, sim.Step(ctx))

	history, err := sim.Summaries(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 2, history[0].Cells)
}

func TestSimulation_Topology(t *testing.T) {
	sim, err := cellfate.New(writeModel(t))
	require.NoError(t, err)

	topo := sim.Topology()
	assert.Len(t, topo.Nodes, 4)
	assert.Equal(t, []string{"EGF", "TNF"}, topo.Inputs)
	assert.Equal(t, 30, topo.PropagationSteps)
	assert.True(t, sim.Network().Inhibits("TNF", "Proliferation"))
}

func TestSimulation_ModelDir(t *testing.T) {
	dir := t.TempDir()
	nodes := filepath.Join(dir, "nodes")
	require.NoError(t, os.MkdirAll(nodes, 0o755))
	files := map[string]string{
		"EGF.md":           "---\ninput: true\n---\nGrowth factor.\n",
		"Proliferation.md": "---\nlogic: EGF\nfate: true\n---\nDivision.\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(nodes, name), []byte(body), 0o644))
	}

	path := filepath.Join(dir, "dir-model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
model_dir: nodes
network:
  propagation_steps: 4
associations:
  - {substance: egf, node: EGF, threshold: 1}
scheduler:
  total_steps: 2
simulation:
  cells: 1
environment:
  shared: {egf: 3}
`), 0o644))

	sim, err := cellfate.New(path)
	require.NoError(t, err)
	defer sim.Close()

	topo := sim.Topology()
	assert.Equal(t, 4, topo.PropagationSteps)
	assert.Equal(t, []string{"EGF"}, topo.Inputs)

	ctx := context.Background()
	_, err = sim.Seed(ctx, 0)
	require.NoError(t, err)
	require.NoError(t, sim.Run(ctx))

	snap, err := sim.Snapshot("cell-0")
	require.NoError(t, err)
	assert.Equal(t, domain.PhenotypeProliferating, snap.Phenotype)
}
