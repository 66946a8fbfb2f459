package ports

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/cellfate/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract verifies that a SnapshotStore implementation adheres to the
// interface contract. Adapters call it from their own tests.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()

	snap := domain.CellSnapshot{
		CellID:    "cell-1",
		Step:      3,
		States:    domain.GeneState{"EGF": true, "ERK": true, "Apoptosis": false},
		Outputs:   domain.GeneState{"Apoptosis": false},
		Phenotype: domain.PhenotypeProliferating,
	}

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, snap), "Save should not return error")

		loaded, err := store.Load(ctx, snap.CellID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap, loaded)
	})

	t.Run("Save Replaces", func(t *testing.T) {
		next := snap
		next.Step = 4
		next.States = domain.GeneState{"EGF": false}
		require.NoError(t, store.Save(ctx, next))

		loaded, err := store.Load(ctx, snap.CellID)
		require.NoError(t, err)
		assert.Equal(t, 4, loaded.Step)
		assert.Equal(t, domain.GeneState{"EGF": false}, loaded.States)
	})

	t.Run("Load Is Isolated", func(t *testing.T) {
		loaded, err := store.Load(ctx, snap.CellID)
		require.NoError(t, err)
		loaded.States["EGF"] = true

		again, err := store.Load(ctx, snap.CellID)
		require.NoError(t, err)
		assert.False(t, again.States["EGF"], "caller mutation leaked into the store")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-cell")
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("List", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			s := snap
			s.CellID = fmt.Sprintf("list-%d", i)
			require.NoError(t, store.Save(ctx, s))
		}
		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Subset(t, ids, []string{"list-0", "list-1", "list-2", snap.CellID})
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, snap.CellID))

		_, err := store.Load(ctx, snap.CellID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.NotContains(t, ids, snap.CellID)

		assert.NoError(t, store.Delete(ctx, "never-existed"))
	})
}
