package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cellfate/internal/presentation/graph"
	"github.com/aretw0/cellfate/pkg/domain"
	"github.com/aretw0/cellfate/pkg/network"
)

func testNetwork(t *testing.T) *network.Network {
	t.Helper()
	net, err := network.New(domain.Topology{
		Nodes: []domain.NetworkNode{
			{Name: "TNF", IsInput: true},
			{Name: "NFkB", Logic: "TNF AND NOT casp.3"},
			{Name: "casp.3", Logic: "TNF"},
			{Name: "Apoptosis", Logic: "casp.3 AND NOT NFkB"},
		},
	})
	require.NoError(t, err)
	return net
}

func TestGenerateMermaid(t *testing.T) {
	out := graph.GenerateMermaid(testNetwork(t), nil)

	tests := []struct {
		name     string
		contains []string
	}{
		{"Header", []string{"graph LR\n"}},
		{"Input Shape", []string{`TNF[/"TNF"/]`}},
		{"Fate Shape", []string{`Apoptosis(("Apoptosis"))`}},
		{"Sanitized IDs Keep Labels", []string{`NFkB["NFkB"]`, `casp_3["casp.3"]`}},
		{"Activation Edges", []string{"TNF --> NFkB", "TNF --> casp_3", "casp_3 --> Apoptosis"}},
		{"Inhibition Edges", []string{"casp_3 -. NOT .-> NFkB", "NFkB -. NOT .-> Apoptosis"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
		})
	}
	assert.NotContains(t, out, "classDef")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	out := graph.GenerateMermaid(testNetwork(t), &graph.StateOverlay{
		States: map[string]bool{"TNF": true, "Apoptosis": false},
	})

	assert.Contains(t, out, "classDef on")
	assert.Contains(t, out, "class TNF on;")
	assert.Contains(t, out, "class Apoptosis off;")
	assert.NotContains(t, out, "class casp_3")
}
