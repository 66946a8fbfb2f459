package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cellfate/pkg/adapters/memory"
	"github.com/aretw0/cellfate/pkg/domain"
	"github.com/aretw0/cellfate/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSnapshotStoreContract(t, store)
}

func TestMemoryStore_History(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	sum := domain.StepSummary{Step: 0, Cells: 2, Flips: 3, Phenotypes: map[domain.Phenotype]int{domain.PhenotypeQuiescent: 2}}
	require.NoError(t, store.Record(ctx, sum))
	sum.Phenotypes[domain.PhenotypeQuiescent] = 99 // must not leak
	require.NoError(t, store.Record(ctx, domain.StepSummary{Step: 1, Cells: 2}))

	history, err := store.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 2, history[0].Phenotypes[domain.PhenotypeQuiescent])
	assert.Equal(t, 1, history[1].Step)
}
