/*
Package domain contains the core types of the cell-fate simulation.

It is kept pure and free of I/O so that loaders, stores and transports can be swapped
without touching the simulation logic.

# Key Entities

  - NetworkNode / Topology: the immutable description of the regulatory network.
  - GeneState: a per-cell Boolean snapshot, never shared across cells.
  - SchedulerConfig: interval or macrostep-sequence schedule for the orchestrator.
  - CellSnapshot / StepSummary: published per-cell results and their post-step reduction.
  - ConfigurationError: the single fatal error class, raised only at load time.
*/
package domain
