package ports

import (
	"context"

	"github.com/aretw0/cellfate/pkg/domain"
)

// Environment is the diffusion/environment collaborator.
// It returns the substance concentrations local to a cell and must not be mutated
// by the caller. Implementations are called from concurrent per-cell workers when the
// coordinator runs in parallel mode.
type Environment interface {
	Concentrations(ctx context.Context, cellID string) (map[string]float64, error)
}

// PhenotypeResolver derives a phenotype from a cell's fate-node states.
type PhenotypeResolver interface {
	Resolve(states domain.GeneState) domain.Phenotype
}

// OperationHandler executes one scheduled operation at the given global step.
type OperationHandler interface {
	Execute(ctx context.Context, step int) error
}

// OperationFunc adapts a plain function to OperationHandler.
type OperationFunc func(ctx context.Context, step int) error

// Execute calls f.
func (f OperationFunc) Execute(ctx context.Context, step int) error {
	return f(ctx, step)
}
