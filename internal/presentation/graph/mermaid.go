package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/fangraph/pkg/domain"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	// Invalid nodes have no valid path down to a resolved source.
	Invalid map[domain.NodeID]bool
	// Values annotates every node holding a value with it.
	Values bool
}

// GenerateMermaid produces a Mermaid flowchart syntax string from a list of nodes.
// Edges point downstream, from an input to the node reading it.
// It applies semantic styling:
// - Temp, Fan: ((Circle))
// - Control: [[Subroutine]]
// - CustomTemp: {{Hexagon}}
// - Flat: [/Parallelogram/]
// - Default: [Rectangle]
// It also applies overlay styles (Invalid) if provided.
func GenerateMermaid(nodes []*domain.Node, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, node := range nodes {
		safeID := mermaidID(node.ID)

		opener, closer := "[", "]"
		switch node.Type.(type) {
		case *domain.Temp, *domain.Fan:
			opener, closer = "((", "))"
		case *domain.Control:
			opener, closer = "[[", "]]"
		case *domain.CustomTemp:
			opener, closer = "{{", "}}"
		case *domain.Flat:
			opener, closer = "[/", "/]"
		}

		label := fmt.Sprintf("%s <br/> <i>%s</i>", escape(node.Name), node.Kind())
		if overlay != nil && overlay.Values {
			if v, ok := node.Value.Get(); ok {
				label += fmt.Sprintf(" <br/> %.1f", v)
			}
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))

		for _, in := range node.Inputs {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", mermaidID(in), safeID))
		}
	}

	if overlay != nil && len(overlay.Invalid) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef invalid fill:#ffebee,stroke:#c62828,stroke-width:2px,stroke-dasharray:4,color:#000;\n")
		for _, node := range nodes {
			if overlay.Invalid[node.ID] {
				sb.WriteString(fmt.Sprintf("    class %s invalid;\n", mermaidID(node.ID)))
			}
		}
	}

	return sb.String()
}

func mermaidID(id domain.NodeID) string {
	return fmt.Sprintf("n%d", id)
}

// escape keeps node names from closing the label early.
func escape(name string) string {
	return strings.ReplaceAll(name, "\"", "'")
}
