package tree

import (
	"strings"

	"github.com/aretw0/framegraph/pkg/domain"
	"github.com/muesli/termenv"
)

var badgeColors = map[status]string{
	statusStatic: "#818cf8",
	statusValid:  "#4ade80",
	statusStale:  "#fb7185",
}

// Text draws the tree with box-drawing guides and a validity badge per frame.
// Badges are colored according to p; termenv.Ascii yields plain text.
func Text(roots []domain.TreeNode, p termenv.Profile) string {
	if len(roots) == 0 {
		return "(no frames)\n"
	}

	var sb strings.Builder
	var write func(n domain.TreeNode, prefix string, last, root bool)
	write = func(n domain.TreeNode, prefix string, last, root bool) {
		childPrefix := prefix
		if !root {
			if last {
				sb.WriteString(prefix + "└── ")
				childPrefix += "    "
			} else {
				sb.WriteString(prefix + "├── ")
				childPrefix += "│   "
			}
		}
		sb.WriteString(n.Name)
		sb.WriteString(" ")
		sb.WriteString(badge(n, p))
		sb.WriteString("\n")

		for i, c := range n.Children {
			write(c, childPrefix, i == len(n.Children)-1, false)
		}
	}

	for _, r := range roots {
		write(r, "", true, true)
	}
	return sb.String()
}

func badge(n domain.TreeNode, p termenv.Profile) string {
	st := statusOf(n)
	return p.String("[" + st.String() + "]").Foreground(p.Color(badgeColors[st])).String()
}
