package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/promptdrafter/pkg/domain"
	"github.com/aretw0/promptdrafter/pkg/editor"
)

// Overlay contains live state to highlight on the graph.
type Overlay struct {
	// Pending marks nodes with a reconciliation waiting on the quiet period.
	Pending bool
	Current string
}

// GenerateMermaid produces a Mermaid flowchart of nodes and their input ports.
// Node shapes follow the kind:
// - Combiner: [[Subroutine]]
// - Wildcard: [/Parallelogram/]
// - Prompt: [Rectangle]
// Static inputs are drawn with solid edges, dynamic ports with dotted ones.
func GenerateMermaid(nodes []editor.View, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, node := range nodes {
		safeID := sanitizeMermaidID(node.ID)
		spec, err := domain.LookupKind(node.Kind)
		if err != nil {
			continue
		}

		opener, closer := "[", "]"
		switch node.Kind {
		case domain.KindCombiner:
			opener, closer = "[[", "]]"
		case domain.KindWildcard:
			opener, closer = "[/", "/]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s <br/> %s\"%s\n", safeID, opener, spec.DisplayName, node.ID, closer)

		for _, input := range spec.Inputs {
			fmt.Fprintf(&sb, "    %s_%s([\"%s\"]) --> %s\n", safeID, sanitizeMermaidID(input), input, safeID)
		}
		for _, port := range node.Ports {
			if spec.Namespace == "" || !strings.HasPrefix(port, spec.Namespace) {
				continue
			}
			fmt.Fprintf(&sb, "    %s_%s([\"%s\"]) -.-> %s\n", safeID, sanitizeMermaidID(port), port, safeID)
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef pending fill:#fff3e0,stroke:#e65100,stroke-dasharray:4,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		if overlay.Pending {
			for _, node := range nodes {
				if node.Pending {
					fmt.Fprintf(&sb, "    class %s pending;\n", sanitizeMermaidID(node.ID))
				}
			}
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.Current))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
