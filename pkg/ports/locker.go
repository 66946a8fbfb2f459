package ports

import (
	"context"
	"time"
)

// ReleaseFunc gives a run lease back.
type ReleaseFunc func(ctx context.Context) error

// RunLocker leases a run ID so that two simulation processes publishing into the same
// shared store cannot drive the same run at once.
type RunLocker interface {
	// Acquire blocks until the lease for runID is held or ctx ends.
	// The lease expires after ttl unless released first.
	Acquire(ctx context.Context, runID string, ttl time.Duration) (ReleaseFunc, error)
}
