/*
Package ports defines the driven ports (interfaces) of the simulation core.

These interfaces keep the core free of the collaborators it is embedded in: the
diffusion solver, topology sources, phenotype logic and result storage.

# Key Interfaces

  - TopologyLoader: supplies the validated node tuples and input/output sets.
  - Environment: supplies per-cell substance concentrations (read-only to the core).
  - PhenotypeResolver: derives a phenotype from fate-node states.
  - OperationHandler: a unit of scheduled work (diffusion, intercellular, custom).
  - SnapshotStore / SummaryRecorder: publish per-cell results and step aggregates.
  - RunLocker: leases a run ID so simulations sharing a store do not collide.
*/
package ports
