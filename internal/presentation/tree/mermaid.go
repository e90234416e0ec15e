package tree

import (
	"fmt"
	"strings"

	"github.com/aretw0/framegraph/pkg/domain"
)

// Mermaid produces a Mermaid flowchart (graph TD) of the tree.
// Durable links are solid arrows and expiring links are dotted. Every frame
// is assigned a static, valid or stale class.
func Mermaid(roots []domain.TreeNode) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	classes := make(map[status][]string)
	for _, root := range roots {
		root.Walk(func(n domain.TreeNode, _ int) {
			id := sanitizeMermaidID(n.Name)
			label := strings.ReplaceAll(n.Name, "\"", "'")
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", id, label)

			if n.Parent != "" {
				arrow := "-->"
				if !n.IsStatic {
					arrow = "-.->"
				}
				fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(n.Parent), arrow, id)
			}

			st := statusOf(n)
			classes[st] = append(classes[st], id)
		})
	}

	if len(classes) == 0 {
		return sb.String()
	}

	sb.WriteString("\n    %% Validity\n")
	// Force black text (color:#000) so labels stay readable on both themes.
	sb.WriteString("    classDef static fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef valid fill:#e8f5e9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef stale fill:#ffebee,stroke:#c62828,stroke-width:2px,stroke-dasharray:4,color:#000;\n")
	for _, st := range []status{statusStatic, statusValid, statusStale} {
		if ids := classes[st]; len(ids) > 0 {
			fmt.Fprintf(&sb, "    class %s %s;\n", strings.Join(ids, ","), st)
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
