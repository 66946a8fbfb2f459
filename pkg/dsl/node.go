package dsl

import (
	"errors"
	"strings"

	"github.com/aretw0/cellfate/pkg/domain"
)

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node       domain.NetworkNode
	activators []string
	inhibitors []string
	builder    *Builder
	err        error
}

// Input marks the node as an input node.
func (n *NodeBuilder) Input() *NodeBuilder {
	n.node.IsInput = true
	return n
}

// Default sets the state an input takes when the environment says nothing about it.
func (n *NodeBuilder) Default(on bool) *NodeBuilder {
	n.node.DefaultState = on
	return n
}

// Logic sets the Boolean rule verbatim.
func (n *NodeBuilder) Logic(expr string) *NodeBuilder {
	if len(n.activators) > 0 || len(n.inhibitors) > 0 {
		n.err = errors.New("Logic cannot be combined with Activated/Inhibited")
	}
	n.node.Logic = expr
	return n
}

// Activated adds activators: the node is on when any of them is on (and no inhibitor is).
func (n *NodeBuilder) Activated(by ...string) *NodeBuilder {
	n.activators = append(n.activators, by...)
	n.compose()
	return n
}

// Inhibited adds inhibitors: any of them being on keeps the node off.
func (n *NodeBuilder) Inhibited(by ...string) *NodeBuilder {
	n.inhibitors = append(n.inhibitors, by...)
	n.compose()
	return n
}

// Output reports the node in output snapshots.
func (n *NodeBuilder) Output() *NodeBuilder {
	if !contains(n.builder.outputs, n.node.Name) {
		n.builder.outputs = append(n.builder.outputs, n.node.Name)
	}
	return n
}

// compose rebuilds the rule as (a1 OR a2 ...) AND NOT i1 AND NOT i2 ...
func (n *NodeBuilder) compose() {
	var terms []string
	switch len(n.activators) {
	case 0:
		// Inhibition alone: on unless inhibited.
		terms = append(terms, "true")
	case 1:
		terms = append(terms, n.activators[0])
	default:
		terms = append(terms, "("+strings.Join(n.activators, " OR ")+")")
	}
	for _, inh := range n.inhibitors {
		terms = append(terms, "NOT "+inh)
	}
	n.node.Logic = strings.Join(terms, " AND ")
}

// Build returns the underlying domain.NetworkNode.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.NetworkNode {
	return n.node
}
