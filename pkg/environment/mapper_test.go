package environment_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cellfate/pkg/domain"
	"github.com/aretw0/cellfate/pkg/environment"
	"github.com/aretw0/cellfate/pkg/network"
)

func testNetwork(t *testing.T) *network.Network {
	t.Helper()
	net, err := network.New(domain.Topology{
		Nodes: []domain.NetworkNode{
			{Name: "Oxygen", IsInput: true, DefaultState: true},
			{Name: "GrowthSignal", IsInput: true},
			{Name: "Death", IsInput: true},
			{Name: "ERK", Logic: "GrowthSignal AND Oxygen"},
		},
	})
	require.NoError(t, err)
	return net
}

func TestMapper_Map(t *testing.T) {
	m, err := environment.NewMapper(testNetwork(t), []environment.Association{
		{Substance: "oxygen", Node: "Oxygen", Threshold: 5},
		{Substance: "egf", Node: "GrowthSignal", Threshold: 0.5},
		{Substance: "igf", Node: "GrowthSignal", Threshold: 0.2},
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		conc map[string]float64
		want map[string]bool
	}{
		{
			name: "Nothing Present Falls Back To Defaults",
			conc: nil,
			want: map[string]bool{"Oxygen": true, "GrowthSignal": false, "Death": false},
		},
		{
			name: "Threshold Is Inclusive",
			conc: map[string]float64{"oxygen": 5},
			want: map[string]bool{"Oxygen": true, "GrowthSignal": false, "Death": false},
		},
		{
			name: "Below Threshold Overrides Default",
			conc: map[string]float64{"oxygen": 4.99},
			want: map[string]bool{"Oxygen": false, "GrowthSignal": false, "Death": false},
		},
		{
			name: "Multiple Substances Are OR-Merged",
			conc: map[string]float64{"egf": 0.1, "igf": 0.3},
			want: map[string]bool{"Oxygen": true, "GrowthSignal": true, "Death": false},
		},
		{
			name: "All Present Substances Below",
			conc: map[string]float64{"egf": 0.1, "igf": 0.1},
			want: map[string]bool{"Oxygen": true, "GrowthSignal": false, "Death": false},
		},
		{
			name: "Unmapped Substances Are Ignored",
			conc: map[string]float64{"glucose": 100},
			want: map[string]bool{"Oxygen": true, "GrowthSignal": false, "Death": false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Map(tt.conc))
		})
	}
}

func TestNewMapper_Validation(t *testing.T) {
	tests := []struct {
		name  string
		assoc environment.Association
	}{
		{"Unknown Node", environment.Association{Substance: "x", Node: "Ghost", Threshold: 1}},
		{"Non-Input Node", environment.Association{Substance: "x", Node: "ERK", Threshold: 1}},
		{"Missing Substance", environment.Association{Node: "Oxygen", Threshold: 1}},
		{"NaN Threshold", environment.Association{Substance: "x", Node: "Oxygen", Threshold: math.NaN()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := environment.NewMapper(testNetwork(t), []environment.Association{tt.assoc})
			assert.ErrorIs(t, err, domain.ErrConfiguration)
		})
	}
}
