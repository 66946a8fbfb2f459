// Package registry maps operation names to the handlers the orchestrator fires.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/cellfate/pkg/domain"
	"github.com/aretw0/cellfate/pkg/ports"
)

// Registry manages the available operations.
type Registry struct {
	mu       sync.RWMutex
	handlers map[domain.Operation]ports.OperationHandler
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[domain.Operation]ports.OperationHandler),
	}
}

// Register adds an operation to the registry.
// If an operation with the same name exists, it is overwritten. A nil handler removes it.
func (r *Registry) Register(op domain.Operation, h ports.OperationHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h == nil {
		delete(r.handlers, op)
		return
	}
	r.handlers[op] = h
}

// Has reports whether op is registered.
func (r *Registry) Has(op domain.Operation) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[op]
	return ok
}

// Names returns the registered operations, sorted.
func (r *Registry) Names() []domain.Operation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]domain.Operation, 0, len(r.handlers))
	for op := range r.handlers {
		names = append(names, op)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Execute looks up an operation by name and executes it.
// Returns an error wrapping domain.ErrUnknownOperation if it is not found.
func (r *Registry) Execute(ctx context.Context, op domain.Operation, step int) error {
	r.mu.RLock()
	h, ok := r.handlers[op]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownOperation, op)
	}
	return h.Execute(ctx, step)
}
