package ports

import (
	"context"

	"github.com/aretw0/cellfate/pkg/domain"
)

// TopologyLoader supplies the regulatory network description.
// The core never parses a description-file grammar itself.
type TopologyLoader interface {
	LoadTopology(ctx context.Context) (domain.Topology, error)
}
