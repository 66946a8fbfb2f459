package population

import (
	"context"

	"github.com/aretw0/cellfate/pkg/domain"
	"github.com/aretw0/cellfate/pkg/ports"
)

// FateHandler returns an intercellular operation that acts on each cell's last
// phenotype: apoptotic and necrotic cells die, proliferating cells divide while the
// population is below maxCells (0 means unbounded). Each evaluation is acted on at most
// once: a cell not re-evaluated since the last firing is skipped, as are cells never
// evaluated. A division held back by the cap still consumes the decision. Daughters are born with a fresh reset state and are first evaluated at the next
// intracellular step.
func (c *Coordinator) FateHandler(maxCells int) ports.OperationHandler {
	return ports.OperationFunc(func(ctx context.Context, step int) error {
		c.mu.Lock()
		decisions := make(map[string]domain.Phenotype, len(c.cells))
		for id, cell := range c.cells {
			if cell.round > cell.acted {
				decisions[id] = cell.phenotype
				cell.acted = cell.round
			}
		}
		c.mu.Unlock()

		births, deaths := 0, 0
		// Birth order keeps divisions deterministic
		for _, id := range c.CellIDs() {
			phenotype, ok := decisions[id]
			if !ok {
				continue
			}

			switch phenotype {
			case domain.PhenotypeApoptotic, domain.PhenotypeNecrotic:
				if err := c.RemoveCell(ctx, id); err != nil {
					return err
				}
				deaths++
			case domain.PhenotypeProliferating:
				if maxCells > 0 && c.Len() >= maxCells {
					continue
				}
				if _, err := c.AddCell(""); err != nil {
					return err
				}
				births++
			}
		}

		if births > 0 || deaths > 0 {
			c.logger.Debug("fate actions applied",
				"step", step,
				"births", births,
				"deaths", deaths,
				"cells", c.Len())
		}
		return nil
	})
}
