package domain

import "sort"

// GeneState maps node names to their Boolean state.
// Every cell owns its own GeneState; values are never shared across cells.
type GeneState map[string]bool

// Clone returns an independent copy.
func (g GeneState) Clone() GeneState {
	if g == nil {
		return nil
	}
	out := make(GeneState, len(g))
	for k, v := range g {
		out[k] = v
	}
	return out
}

// Active returns the sorted names of nodes that are on.
func (g GeneState) Active() []string {
	names := make([]string, 0, len(g))
	for k, v := range g {
		if v {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

// Phenotype is the cell behaviour derived from the fate nodes.
type Phenotype string

const (
	PhenotypeQuiescent     Phenotype = "quiescent"
	PhenotypeProliferating Phenotype = "proliferating"
	PhenotypeArrested      Phenotype = "arrested"
	PhenotypeApoptotic     Phenotype = "apoptotic"
	PhenotypeNecrotic      Phenotype = "necrotic"
)

// CellSnapshot is the published result of one intracellular evaluation of a cell.
type CellSnapshot struct {
	CellID    string    `json:"cell_id"`
	Step      int       `json:"step"`
	States    GeneState `json:"states"`
	Outputs   GeneState `json:"outputs"`
	Phenotype Phenotype `json:"phenotype"`
}

// StepSummary is the population-wide aggregate of one intracellular sub-step.
// It is reduced from finished per-cell results, never accumulated concurrently.
type StepSummary struct {
	Step       int               `json:"step"`
	Cells      int               `json:"cells"`
	Flips      int               `json:"flips"`
	Phenotypes map[Phenotype]int `json:"phenotypes"`
}
