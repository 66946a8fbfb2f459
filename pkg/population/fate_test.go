package population_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cellfate/pkg/adapters/memory"
	"github.com/aretw0/cellfate/pkg/population"
)

func TestFateHandler(t *testing.T) {
	ctx := context.Background()
	net := fateNetwork(t)
	env := memory.NewEnvironment(nil)
	env.SetLocal("grower", map[string]float64{"egf": 5})
	env.SetLocal("victim", map[string]float64{"tnf": 5})

	c, err := population.NewCoordinator(net, fateMapper(t, net), env)
	require.NoError(t, err)
	for _, id := range []string{"grower", "victim", "idle"} {
		_, err := c.AddCell(id)
		require.NoError(t, err)
	}

	fate := c.FateHandler(0)

	// Nothing evaluated yet: no action.
	require.NoError(t, fate.Execute(ctx, 0))
	assert.Equal(t, 3, c.Len())

	_, err = c.Step(ctx, 0)
	require.NoError(t, err)
	require.NoError(t, fate.Execute(ctx, 0))
	assert.Equal(t, []string{"grower", "idle", "cell-3"}, c.CellIDs())

	// No evaluation since the last firing: every decision has been acted on.
	require.NoError(t, fate.Execute(ctx, 1))
	assert.Equal(t, []string{"grower", "idle", "cell-3"}, c.CellIDs())

	// A fresh evaluation lets the grower divide once more.
	_, err = c.Step(ctx, 2)
	require.NoError(t, err)
	require.NoError(t, fate.Execute(ctx, 2))
	assert.Equal(t, []string{"grower", "idle", "cell-3", "cell-4"}, c.CellIDs())
}

func TestFateHandler_OneActionPerEvaluation(t *testing.T) {
	ctx := context.Background()
	net := fateNetwork(t)
	env := memory.NewEnvironment(map[string]float64{"egf": 5})

	c, err := population.NewCoordinator(net, fateMapper(t, net), env)
	require.NoError(t, err)
	_, err = c.AddCell("")
	require.NoError(t, err)

	// Intracellular every 5 steps, intercellular every step.
	fate := c.FateHandler(0)
	_, err = c.Step(ctx, 0)
	require.NoError(t, err)
	for step := 0; step < 5; step++ {
		require.NoError(t, fate.Execute(ctx, step))
	}
	assert.Equal(t, 2, c.Len(), "one evaluation, one division")
}

func TestFateHandler_RespectsCap(t *testing.T) {
	ctx := context.Background()
	net := fateNetwork(t)
	env := memory.NewEnvironment(map[string]float64{"egf": 5})

	c, err := population.NewCoordinator(net, fateMapper(t, net), env)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := c.AddCell("")
		require.NoError(t, err)
	}

	fate := c.FateHandler(4)
	for step := 0; step < 3; step++ {
		_, err := c.Step(ctx, step)
		require.NoError(t, err)
		require.NoError(t, fate.Execute(ctx, step))
	}
	assert.Equal(t, 4, c.Len())
}
