package population

import (
	"math/rand/v2"

	"github.com/aretw0/cellfate/pkg/domain"
	"github.com/aretw0/cellfate/pkg/network"
)

// Cell is one agent of the population. It exclusively owns its gene state and its
// private cache of the last evaluation.
type Cell struct {
	ID    string
	Birth uint64 // order of creation, used to derive the cell's random stream

	src       *rand.PCG // reseeded before every evaluation
	state     *network.State
	cache     domain.GeneState
	outputs   domain.GeneState
	phenotype domain.Phenotype
	evaluated int // global step of the last evaluation, -1 before the first
	round     int // evaluation round of the cache, -1 before the first
	acted     int // round a fate action has already consumed, -1 for none
}

// States returns a copy of the full gene state cached at the last evaluation.
func (c *Cell) States() domain.GeneState { return c.cache.Clone() }

// Outputs returns a copy of the declared output states cached at the last evaluation.
func (c *Cell) Outputs() domain.GeneState { return c.outputs.Clone() }

// Phenotype returns the phenotype derived at the last evaluation.
func (c *Cell) Phenotype() domain.Phenotype { return c.phenotype }

// Snapshot packages the cached results for publication.
func (c *Cell) Snapshot() domain.CellSnapshot {
	return domain.CellSnapshot{
		CellID:    c.ID,
		Step:      c.evaluated,
		States:    c.States(),
		Outputs:   c.Outputs(),
		Phenotype: c.phenotype,
	}
}

// PriorityResolver is the default phenotype collaborator. It walks the fate nodes in a
// fixed priority order (Necrosis, Apoptosis, Growth_Arrest, Proliferation) and returns
// the phenotype of the first one that is on; with none on the cell is quiescent.
type PriorityResolver struct{}

var fatePhenotypes = map[string]domain.Phenotype{
	domain.FateNecrosis:      domain.PhenotypeNecrotic,
	domain.FateApoptosis:     domain.PhenotypeApoptotic,
	domain.FateGrowthArrest:  domain.PhenotypeArrested,
	domain.FateProliferation: domain.PhenotypeProliferating,
}

// Resolve implements ports.PhenotypeResolver.
func (PriorityResolver) Resolve(states domain.GeneState) domain.Phenotype {
	for _, fate := range domain.FateNodes {
		if states[fate] {
			return fatePhenotypes[fate]
		}
	}
	return domain.PhenotypeQuiescent
}
