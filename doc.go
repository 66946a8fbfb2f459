/*
Package cellfate simulates cell-fate decisions in a population of agents, each carrying its
own Boolean gene-regulatory network.

Every cell evaluates the shared, immutable network topology against its own state vector
with an asynchronous single-gene stochastic update. A multi-timescale orchestrator
interleaves the fast intracellular evaluation with slower diffusion and intercellular
operations at independently configured intervals, or runs an explicit sequence of
macrosteps.

# Concept

The substance field, the diffusion solver and cell mechanics are external collaborators.
The simulation reads local concentrations through ports.Environment, turns them into input
node states with threshold associations, and publishes each cell's resulting gene states
and phenotype to a ports.SnapshotStore.

# Usage

	sim, err := cellfate.New("./model.yaml",
		cellfate.WithDiffusion(solver),
		cellfate.WithLogger(logger),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer sim.Close()

	ctx := context.Background()
	if _, err := sim.Seed(ctx, 0); err != nil { // population size from the config
		log.Fatal(err)
	}
	if err := sim.Run(ctx); err != nil {
		log.Fatal(err)
	}

	for _, id := range sim.CellIDs() {
		snap, _ := sim.Snapshot(id)
		fmt.Println(id, snap.Phenotype)
	}

Runs are reproducible: the same configuration and seed produce the same snapshots in both
serial and parallel execution modes.
*/
package cellfate
