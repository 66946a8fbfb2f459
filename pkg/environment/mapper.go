// Package environment converts local substance concentrations into Boolean gene inputs.
package environment

import (
	"fmt"
	"math"

	"github.com/aretw0/cellfate/pkg/domain"
	"github.com/aretw0/cellfate/pkg/network"
)

const component = "environment"

// Association binds a substance to an input node: the input is on when the local
// concentration is at or above Threshold.
type Association struct {
	Substance string  `json:"substance" yaml:"substance" mapstructure:"substance"`
	Node      string  `json:"node" yaml:"node" mapstructure:"node"`
	Threshold float64 `json:"threshold" yaml:"threshold" mapstructure:"threshold"`
}

type rule struct {
	substance string
	threshold float64
}

type binding struct {
	node         string
	defaultState bool
	rules        []rule
}

// Mapper applies a fixed association/threshold table. It is immutable and safe to share.
type Mapper struct {
	bindings []binding
}

// NewMapper validates the associations against the network's inputs.
func NewMapper(net *network.Network, associations []Association) (*Mapper, error) {
	var errs domain.ConfigurationErrors

	byNode := make(map[string][]rule)
	for _, a := range associations {
		switch {
		case a.Substance == "":
			errs.Add(component, a.Node, "association has no substance", nil)
			continue
		case math.IsNaN(a.Threshold) || math.IsInf(a.Threshold, 0):
			errs.Add(component, a.Substance, fmt.Sprintf("threshold must be finite, got %v", a.Threshold), nil)
			continue
		}
		if _, ok := net.Node(a.Node); !ok {
			errs.Add(component, a.Node, "association targets an unknown node", nil)
			continue
		}
		if !net.IsInput(a.Node) {
			errs.Add(component, a.Node, "association targets a non-input node", nil)
			continue
		}
		byNode[a.Node] = append(byNode[a.Node], rule{substance: a.Substance, threshold: a.Threshold})
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	m := &Mapper{}
	for _, name := range net.Inputs() {
		node, _ := net.Node(name)
		m.bindings = append(m.bindings, binding{
			node:         name,
			defaultState: node.DefaultState,
			rules:        byNode[name],
		})
	}
	return m, nil
}

// Map returns a value for every input node. Several substances bound to one input are
// OR-merged over the entries present; an input with no present entry (or no
// association at all) falls back to its default state.
func (m *Mapper) Map(concentrations map[string]float64) map[string]bool {
	out := make(map[string]bool, len(m.bindings))
	for _, b := range m.bindings {
		value, matched := false, false
		for _, r := range b.rules {
			c, ok := concentrations[r.substance]
			if !ok {
				continue
			}
			matched = true
			if c >= r.threshold {
				value = true
				break
			}
		}
		if !matched {
			value = b.defaultState
		}
		out[b.node] = value
	}
	return out
}
