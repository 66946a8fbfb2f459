package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/cellfate/pkg/network"
)

// StateOverlay colours nodes by a cell's gene state.
type StateOverlay struct {
	States map[string]bool
}

// GenerateMermaid produces a Mermaid flowchart of the regulatory network.
// It applies semantic styling:
// - Input: [/Parallelogram/]
// - Fate: ((Circle))
// - Default: [Rectangle]
// Edges point from regulator to target; inhibitions are dashed with a "NOT" label.
// With an overlay, nodes are classed on/off.
func GenerateMermaid(net *network.Network, overlay *StateOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, node := range net.Nodes() {
		safeID := sanitizeMermaidID(node.Name)

		opener, closer := "[", "]"
		switch {
		case net.IsInput(node.Name):
			opener, closer = "[/", "/]"
		case net.IsFate(node.Name):
			opener, closer = "((", "))"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, node.Name, closer))
	}

	for _, node := range net.Nodes() {
		safeTo := sanitizeMermaidID(node.Name)
		for _, src := range net.Upstream(node.Name) {
			arrow := "-->"
			if net.Inhibits(src, node.Name) {
				arrow = "-. NOT .->"
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(src), arrow, safeTo))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% State Overlay\n")
		// Force black text for contrast on both themes
		sb.WriteString("    classDef on fill:#c8e6c9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef off fill:#eeeeee,stroke:#9e9e9e,color:#000;\n")
		for _, node := range net.Nodes() {
			on, ok := overlay.States[node.Name]
			if !ok {
				continue
			}
			class := "off"
			if on {
				class = "on"
			}
			sb.WriteString(fmt.Sprintf("    class %s %s;\n", sanitizeMermaidID(node.Name), class))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
