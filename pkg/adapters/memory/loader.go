package memory

import (
	"context"
	"sync"

	"github.com/aretw0/cellfate/pkg/domain"
)

// Loader implements ports.TopologyLoader over an already-built topology.
type Loader struct {
	topo domain.Topology
}

// NewLoader wraps a topology value.
func NewLoader(topo domain.Topology) *Loader {
	return &Loader{topo: topo}
}

// LoadTopology returns a copy of the wrapped topology.
func (l *Loader) LoadTopology(ctx context.Context) (domain.Topology, error) {
	if err := ctx.Err(); err != nil {
		return domain.Topology{}, err
	}
	topo := l.topo
	topo.Nodes = append([]domain.NetworkNode(nil), l.topo.Nodes...)
	topo.Inputs = append([]string(nil), l.topo.Inputs...)
	topo.Outputs = append([]string(nil), l.topo.Outputs...)
	topo.FateNodes = append([]string(nil), l.topo.FateNodes...)
	return topo, nil
}

// Environment implements ports.Environment with a fixed field of concentrations.
// A cell without its own entry sees the shared field. Safe for concurrent use.
type Environment struct {
	mu     sync.RWMutex
	shared map[string]float64
	local  map[string]map[string]float64
}

// NewEnvironment creates an environment whose shared field is the given map.
func NewEnvironment(shared map[string]float64) *Environment {
	return &Environment{
		shared: cloneField(shared),
		local:  make(map[string]map[string]float64),
	}
}

// SetShared replaces the field seen by cells without a local override.
func (e *Environment) SetShared(field map[string]float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shared = cloneField(field)
}

// SetLocal overrides the field for one cell.
func (e *Environment) SetLocal(cellID string, field map[string]float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.local[cellID] = cloneField(field)
}

// Forget drops a cell's local override.
func (e *Environment) Forget(cellID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.local, cellID)
}

// Concentrations returns a copy of the field local to the cell.
func (e *Environment) Concentrations(ctx context.Context, cellID string) (map[string]float64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if field, ok := e.local[cellID]; ok {
		return cloneField(field), nil
	}
	return cloneField(e.shared), nil
}

func cloneField(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
