package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/cellfate/pkg/domain"
)

// Store implements ports.SnapshotStore and ports.SummaryRecorder in memory.
// Safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	snapshots map[string]domain.CellSnapshot
	history   []domain.StepSummary
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		snapshots: make(map[string]domain.CellSnapshot),
	}
}

// Save replaces the snapshot held for the cell.
func (s *Store) Save(ctx context.Context, snap domain.CellSnapshot) error {
	// Deep copy so later caller mutations do not leak in
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.CellID] = copySnapshot(snap)
	return nil
}

// Load retrieves a copy of the snapshot.
func (s *Store) Load(ctx context.Context, cellID string) (domain.CellSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[cellID]
	if !ok {
		return domain.CellSnapshot{}, domain.ErrSnapshotNotFound
	}
	return copySnapshot(snap), nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, cellID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, cellID)
	return nil
}

// List returns the stored cell IDs, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.snapshots))
	for id := range s.snapshots {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Record appends a step summary to the history.
func (s *Store) Record(ctx context.Context, summary domain.StepSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, copySummary(summary))
	return nil
}

// History returns the recorded summaries in step order.
func (s *Store) History(ctx context.Context) ([]domain.StepSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.StepSummary, len(s.history))
	for i, sum := range s.history {
		out[i] = copySummary(sum)
	}
	return out, nil
}

func copySnapshot(snap domain.CellSnapshot) domain.CellSnapshot {
	snap.States = snap.States.Clone()
	snap.Outputs = snap.Outputs.Clone()
	return snap
}

func copySummary(sum domain.StepSummary) domain.StepSummary {
	phenotypes := make(map[domain.Phenotype]int, len(sum.Phenotypes))
	for k, v := range sum.Phenotypes {
		phenotypes[k] = v
	}
	sum.Phenotypes = phenotypes
	return sum
}
