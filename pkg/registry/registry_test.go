package registry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cellfate/pkg/domain"
	"github.com/aretw0/cellfate/pkg/ports"
	"github.com/aretw0/cellfate/pkg/registry"
)

func TestRegistry(t *testing.T) {
	r := registry.NewRegistry()
	var got []int
	r.Register("grow", ports.OperationFunc(func(_ context.Context, step int) error {
		got = append(got, step)
		return nil
	}))
	r.Register(domain.OpDiffusion, ports.OperationFunc(func(context.Context, int) error { return nil }))

	assert.True(t, r.Has("grow"))
	assert.Equal(t, []domain.Operation{domain.OpDiffusion, "grow"}, r.Names())

	require.NoError(t, r.Execute(context.Background(), "grow", 7))
	assert.Equal(t, []int{7}, got)

	err := r.Execute(context.Background(), "shrink", 0)
	assert.ErrorIs(t, err, domain.ErrUnknownOperation)

	r.Register("grow", nil)
	assert.False(t, r.Has("grow"))
}
