// Package network implements the Boolean gene-regulatory network.
//
// A Network is the immutable topology, validated once and shared read-only by every cell.
// A State is one cell's exclusively owned state vector, indexed by node id; logic
// evaluation and the stochastic update read only from that vector.
package network

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/aretw0/cellfate/internal/compiler"
	"github.com/aretw0/cellfate/pkg/domain"
)

const component = "network"

// Network is the validated, immutable topology.
type Network struct {
	nodes    []domain.NetworkNode
	index    map[string]int
	logic    []*compiler.Expr // nil for inputs
	upstream [][]int          // distinct dependencies per node, ascending
	input    []bool
	fate     []bool
	inputs   []int
	outputs  []int
	steps    int
	logger   *slog.Logger
}

// Option configures a Network.
type Option func(*Network)

// WithLogger sets the logger used for recoverable conditions such as ignored input keys.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Network) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// New validates the topology and builds the network.
// Every structural problem is reported in one *domain.ConfigurationErrors (or a single
// *domain.ConfigurationError); nothing is checked again during a run.
func New(topo domain.Topology, opts ...Option) (*Network, error) {
	n := &Network{
		index:  make(map[string]int, len(topo.Nodes)),
		steps:  topo.PropagationSteps,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(n)
	}

	var errs domain.ConfigurationErrors

	if topo.PropagationSteps < 0 {
		errs.Add(component, "", fmt.Sprintf("propagation_steps must be >= 0, got %d", topo.PropagationSteps), nil)
	}
	if len(topo.Nodes) == 0 {
		errs.Add(component, "", "topology declares no nodes", nil)
	}

	// 1. Register names
	for _, node := range topo.Nodes {
		if node.Name == "" {
			errs.Add(component, "", "node with empty name", nil)
			continue
		}
		if _, dup := n.index[node.Name]; dup {
			errs.Add(component, node.Name, "duplicate node name", nil)
			continue
		}
		n.index[node.Name] = len(n.nodes)
		n.nodes = append(n.nodes, node)
	}

	size := len(n.nodes)
	n.input = make([]bool, size)
	n.fate = make([]bool, size)
	n.logic = make([]*compiler.Expr, size)
	n.upstream = make([][]int, size)

	// 2. Input and fate designations
	for i, node := range n.nodes {
		n.input[i] = node.IsInput
		n.fate[i] = domain.IsFateNode(node.Name)
	}
	for _, name := range topo.Inputs {
		i, ok := n.index[name]
		if !ok {
			errs.Add(component, name, "declared input is not a node", nil)
			continue
		}
		n.input[i] = true
	}
	for _, name := range topo.FateNodes {
		i, ok := n.index[name]
		if !ok {
			errs.Add(component, name, "declared fate node is not a node", nil)
			continue
		}
		n.fate[i] = true
	}
	for _, name := range topo.Outputs {
		i, ok := n.index[name]
		if !ok {
			errs.Add(component, name, "declared output is not a node", nil)
			continue
		}
		n.outputs = append(n.outputs, i)
	}
	for i := range n.nodes {
		if n.input[i] {
			n.inputs = append(n.inputs, i)
		}
	}

	// 3. Compile logic
	for i, node := range n.nodes {
		if node.Logic == "" {
			if !n.input[i] {
				errs.Add(component, node.Name, "non-input node has no logic", nil)
			}
			continue
		}
		expr, err := compiler.Parse(node.Logic)
		if err != nil {
			errs.Add(component, node.Name, "malformed logic", err)
			continue
		}
		if err := expr.Bind(n.index); err != nil {
			errs.Add(component, node.Name, "dangling reference in logic", err)
			continue
		}
		if n.input[i] {
			// Inputs are never computed; the expression is only checked.
			n.logger.Debug("logic on input node is ignored", "node", node.Name)
			continue
		}
		n.logic[i] = expr
		n.upstream[i] = dependencies(expr, n.index)
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}
	return n, nil
}

func dependencies(expr *compiler.Expr, index map[string]int) []int {
	vars := expr.Vars()
	deps := make([]int, 0, len(vars))
	for _, v := range vars {
		deps = append(deps, index[v])
	}
	sort.Ints(deps)
	return deps
}

// PropagationSteps is the number of single-gene updates per intracellular evaluation.
func (n *Network) PropagationSteps() int { return n.steps }

// Size returns the number of nodes.
func (n *Network) Size() int { return len(n.nodes) }

// Nodes returns the node definitions in id order.
func (n *Network) Nodes() []domain.NetworkNode {
	out := make([]domain.NetworkNode, len(n.nodes))
	copy(out, n.nodes)
	return out
}

// Node looks up a node definition by name.
func (n *Network) Node(name string) (domain.NetworkNode, bool) {
	i, ok := n.index[name]
	if !ok {
		return domain.NetworkNode{}, false
	}
	return n.nodes[i], true
}

// IsInput reports whether name is an input node.
func (n *Network) IsInput(name string) bool {
	i, ok := n.index[name]
	return ok && n.input[i]
}

// IsFate reports whether name is a fate node.
func (n *Network) IsFate(name string) bool {
	i, ok := n.index[name]
	return ok && n.fate[i]
}

// Inputs returns the input node names in id order.
func (n *Network) Inputs() []string { return n.names(n.inputs) }

// Outputs returns the declared output node names in declaration order.
func (n *Network) Outputs() []string { return n.names(n.outputs) }

// Upstream returns the distinct nodes referenced by name's logic.
func (n *Network) Upstream(name string) []string {
	i, ok := n.index[name]
	if !ok {
		return nil
	}
	return n.names(n.upstream[i])
}

// Logic returns the canonical form of name's logic, or "" for inputs.
func (n *Network) Logic(name string) string {
	i, ok := n.index[name]
	if !ok || n.logic[i] == nil {
		return ""
	}
	return n.logic[i].String()
}

// Inhibits reports whether source appears negated in target's logic.
func (n *Network) Inhibits(source, target string) bool {
	i, ok := n.index[target]
	if !ok || n.logic[i] == nil {
		return false
	}
	return n.logic[i].Negated(source)
}

func (n *Network) names(ids []int) []string {
	out := make([]string, len(ids))
	for k, id := range ids {
		out[k] = n.nodes[id].Name
	}
	return out
}
