package ports

import (
	"context"

	"github.com/aretw0/cellfate/pkg/domain"
)

// SnapshotStore publishes the latest gene-state snapshot of every cell.
type SnapshotStore interface {
	// Save replaces the snapshot held for snap.CellID.
	Save(ctx context.Context, snap domain.CellSnapshot) error

	// Load retrieves the snapshot for a cell.
	// Returns domain.ErrSnapshotNotFound if there is none.
	Load(ctx context.Context, cellID string) (domain.CellSnapshot, error)

	// Delete removes a cell's snapshot (cell death). Deleting a missing cell is not an error.
	Delete(ctx context.Context, cellID string) error

	// List returns the IDs of cells with a stored snapshot.
	List(ctx context.Context) ([]string, error)
}

// SummaryRecorder keeps the history of post-step population aggregates.
type SummaryRecorder interface {
	Record(ctx context.Context, summary domain.StepSummary) error
	History(ctx context.Context) ([]domain.StepSummary, error)
}
