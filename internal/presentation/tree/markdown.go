package tree

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/framegraph/pkg/domain"
)

// Markdown renders the tree as a heading and a table, one row per frame in
// depth-first order.
func Markdown(roots []domain.TreeNode) string {
	var sb strings.Builder
	frames := 0
	for _, r := range roots {
		r.Walk(func(domain.TreeNode, int) { frames++ })
	}

	sb.WriteString("# Frame tree\n\n")
	fmt.Fprintf(&sb, "%d frames, %d roots.\n", frames, len(roots))
	if frames == 0 {
		return sb.String()
	}

	sb.WriteString("\n| Frame | Parent | Kind | Valid | Last seen |\n")
	sb.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, r := range roots {
		r.Walk(func(n domain.TreeNode, _ int) {
			kind := "expiring"
			if n.IsStatic {
				kind = "static"
			}
			valid := "no"
			if n.IsValid {
				valid = "yes"
			}
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s |\n", cell(n.Name), cell(n.Parent), kind, valid, seen(n.LastSeenAt))
		})
	}
	return sb.String()
}

func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", "\\|")
}

func seen(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
