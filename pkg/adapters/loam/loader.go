// Package loam loads a network topology from a directory of node documents (Markdown with
// frontmatter, YAML or JSON), one document per node.
package loam

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"

	"github.com/aretw0/cellfate/pkg/domain"
)

// Loader adapts a Loam repository to ports.TopologyLoader.
type Loader struct {
	Repo  *loam.TypedRepository[NodeMetadata]
	steps int
}

// New creates a new Loam adapter. steps is the propagation step count of the network.
func New(repo *loam.TypedRepository[NodeMetadata], steps int) *Loader {
	return &Loader{
		Repo:  repo,
		steps: steps,
	}
}

// Open initialises a read-only Loam repository at dir.
func Open(dir string, steps int) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// The loader never writes; ReadOnly keeps Loam from sandboxing the directory.
	repo, err := loam.Init(absPath, loam.WithReadOnly(true))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[NodeMetadata](repo), steps), nil
}

// LoadTopology lists every document and turns it into a node. Nodes are ordered by name
// so the same directory always yields the same topology.
func (l *Loader) LoadTopology(ctx context.Context) (domain.Topology, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return domain.Topology{}, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string, len(docs))
	metas := make(map[string]NodeMetadata, len(docs))
	names := make([]string, 0, len(docs))

	for _, doc := range docs {
		name := nodeName(doc.ID, doc.Data.ID)

		// Collision Detection
		if existing, ok := seen[name]; ok {
			return domain.Topology{}, &domain.ConfigurationError{
				Component: "loam",
				Subject:   name,
				Reason:    fmt.Sprintf("defined in both %q and %q", existing, doc.ID),
			}
		}
		seen[name] = doc.ID
		metas[name] = doc.Data
		names = append(names, name)
	}
	sort.Strings(names)

	topo := domain.Topology{PropagationSteps: l.steps}
	for _, name := range names {
		meta := metas[name]
		topo.Nodes = append(topo.Nodes, domain.NetworkNode{
			Name:         name,
			IsInput:      meta.Input,
			DefaultState: meta.Default,
			Logic:        strings.TrimSpace(meta.Logic),
		})
		if meta.Output || meta.Fate {
			topo.Outputs = append(topo.Outputs, name)
		}
		if meta.Fate && !domain.IsFateNode(name) {
			topo.FateNodes = append(topo.FateNodes, name)
		}
	}
	return topo, nil
}

// nodeName prefers the frontmatter id, then the file name without directories or extension.
func nodeName(docID, metaID string) string {
	raw := metaID
	if raw == "" {
		raw = docID
	}
	raw = path.Base(filepath.ToSlash(raw))
	return strings.TrimSuffix(raw, path.Ext(raw))
}
