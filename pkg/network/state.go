package network

import (
	"fmt"
	"sort"

	"github.com/aretw0/cellfate/pkg/domain"
)

// Source is the explicit random source a State draws from.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	// IntN returns a uniform value in [0, n). n is always > 0.
	IntN(n int) int
}

// Update describes the outcome of one single-gene update.
type Update struct {
	Node    string // candidate that was picked, "" when there was none
	Changed bool   // whether the recomputed value was committed
}

// State is one cell's mutable gene state. It must not be shared between cells;
// concurrent use of a single State is not supported.
type State struct {
	net        *Network
	values     []bool
	src        Source
	candidates []int
}

// NewState creates a state vector for one cell. Input nodes start at their default
// state and every other node is false until Reset is called.
func (n *Network) NewState(src Source) *State {
	s := &State{
		net:        n,
		values:     make([]bool, len(n.nodes)),
		src:        src,
		candidates: make([]int, 0, len(n.nodes)),
	}
	for _, i := range n.inputs {
		s.values[i] = n.nodes[i].DefaultState
	}
	return s
}

// Network returns the topology this state belongs to.
func (s *State) Network() *Network { return s.net }

// Reset reinitialises every non-input node. Fate nodes are always false; other nodes are
// drawn uniformly when randomInit is set and false otherwise. Inputs are left untouched.
func (s *State) Reset(randomInit bool) {
	for i := range s.values {
		switch {
		case s.net.input[i]:
			continue
		case s.net.fate[i]:
			s.values[i] = false
		case randomInit:
			s.values[i] = s.src.IntN(2) == 1
		default:
			s.values[i] = false
		}
	}
}

// SetInputStates overwrites the state of every declared input present in values.
// Keys that are not input nodes are ignored with a warning and returned sorted.
func (s *State) SetInputStates(values map[string]bool) []string {
	var ignored []string
	for name, v := range values {
		i, ok := s.net.index[name]
		if !ok || !s.net.input[i] {
			ignored = append(ignored, name)
			continue
		}
		s.values[i] = v
	}
	if len(ignored) > 0 {
		sort.Strings(ignored)
		s.net.logger.Warn("ignoring unknown input keys", "keys", ignored)
	}
	return ignored
}

// EvaluateLogic computes name's logic over the current snapshot without committing it.
func (s *State) EvaluateLogic(name string) (bool, error) {
	i, ok := s.net.index[name]
	if !ok {
		return false, fmt.Errorf("unknown node %q", name)
	}
	if s.net.logic[i] == nil {
		return false, fmt.Errorf("node %q is an input and has no logic", name)
	}
	return s.net.logic[i].Eval(s.values), nil
}

// SingleGeneUpdate performs one asynchronous stochastic update:
// candidates are non-input nodes that are on or have at least one upstream node on;
// one is picked uniformly, recomputed, and committed only if its value changed.
// At most one node changes per call.
func (s *State) SingleGeneUpdate() Update {
	s.candidates = s.candidates[:0]
	for i, expr := range s.net.logic {
		if expr == nil {
			continue
		}
		if s.values[i] || s.anyUpstreamOn(i) {
			s.candidates = append(s.candidates, i)
		}
	}
	if len(s.candidates) == 0 {
		return Update{}
	}

	i := s.candidates[s.src.IntN(len(s.candidates))]
	next := s.net.logic[i].Eval(s.values)
	if next == s.values[i] {
		return Update{Node: s.net.nodes[i].Name}
	}
	s.values[i] = next
	return Update{Node: s.net.nodes[i].Name, Changed: true}
}

func (s *State) anyUpstreamOn(i int) bool {
	for _, dep := range s.net.upstream[i] {
		if s.values[dep] {
			return true
		}
	}
	return false
}

// Run calls SingleGeneUpdate exactly steps times and returns how many updates committed
// a change. It never stops early on apparent convergence: the step count is a
// statistical tuning parameter.
func (s *State) Run(steps int) int {
	flips := 0
	for k := 0; k < steps; k++ {
		if s.SingleGeneUpdate().Changed {
			flips++
		}
	}
	return flips
}

// Get returns a single node's state.
func (s *State) Get(name string) (bool, bool) {
	i, ok := s.net.index[name]
	if !ok {
		return false, false
	}
	return s.values[i], true
}

// States returns an owned snapshot of every node.
func (s *State) States() domain.GeneState {
	out := make(domain.GeneState, len(s.values))
	for i, v := range s.values {
		out[s.net.nodes[i].Name] = v
	}
	return out
}

// OutputStates returns an owned snapshot of the declared output nodes.
func (s *State) OutputStates() domain.GeneState {
	out := make(domain.GeneState, len(s.net.outputs))
	for _, i := range s.net.outputs {
		out[s.net.nodes[i].Name] = s.values[i]
	}
	return out
}
