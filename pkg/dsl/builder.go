package dsl

import (
	"fmt"

	"github.com/aretw0/cellfate/pkg/adapters/memory"
	"github.com/aretw0/cellfate/pkg/domain"
)

// Builder manages the topology construction. Nodes keep their declaration order.
type Builder struct {
	nodes   map[string]*NodeBuilder
	order   []string
	outputs []string
	fates   []string
	steps   int
}

// New creates a new topology builder.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*NodeBuilder),
	}
}

// Steps sets the number of single-gene updates per intracellular evaluation.
func (b *Builder) Steps(n int) *Builder {
	b.steps = n
	return b
}

// Add creates a new node in the topology.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(name string) *NodeBuilder {
	if nb, ok := b.nodes[name]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node:    domain.NetworkNode{Name: name},
		builder: b,
	}
	b.nodes[name] = nb
	b.order = append(b.order, name)
	return nb
}

// Input adds an input node, set from the environment.
func (b *Builder) Input(name string) *NodeBuilder {
	return b.Add(name).Input()
}

// Gene adds an internal node.
func (b *Builder) Gene(name string) *NodeBuilder {
	return b.Add(name)
}

// Fate adds a terminal decision node and reports it as an output.
// Canonical fate names need no extra declaration; others are added to the fate set.
func (b *Builder) Fate(name string) *NodeBuilder {
	nb := b.Add(name)
	if !domain.IsFateNode(name) && !contains(b.fates, name) {
		b.fates = append(b.fates, name)
	}
	nb.Output()
	return nb
}

// Topology assembles the declared nodes. It does not validate them; network.New does.
func (b *Builder) Topology() domain.Topology {
	topo := domain.Topology{
		Nodes:            make([]domain.NetworkNode, 0, len(b.order)),
		Outputs:          append([]string(nil), b.outputs...),
		FateNodes:        append([]string(nil), b.fates...),
		PropagationSteps: b.steps,
	}
	for _, name := range b.order {
		topo.Nodes = append(topo.Nodes, b.nodes[name].Build())
	}
	return topo
}

// Build compiles the topology into a memory.Loader.
func (b *Builder) Build() (*memory.Loader, error) {
	for _, name := range b.order {
		if err := b.nodes[name].err; err != nil {
			return nil, fmt.Errorf("node %q: %w", name, err)
		}
	}
	return memory.NewLoader(b.Topology()), nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
