// Package tree renders the materialized frame tree for terminals and documents.
package tree

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/framegraph/pkg/domain"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Format selects a renderer.
type Format string

const (
	FormatText     Format = "text"
	FormatMermaid  Format = "mermaid"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat accepts the format names above, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatMermaid, FormatMarkdown, FormatJSON:
		return f, nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown tree format %q (want text, mermaid, markdown or json)", s)
}

// ProfileFor returns the color profile to use when writing to w.
// Anything that is not a terminal gets plain ASCII.
func ProfileFor(w io.Writer) termenv.Profile {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type status int

const (
	statusStatic status = iota
	statusValid
	statusStale
)

func (s status) String() string {
	switch s {
	case statusStatic:
		return "static"
	case statusValid:
		return "valid"
	}
	return "stale"
}

func statusOf(n domain.TreeNode) status {
	switch {
	case n.IsStatic:
		return statusStatic
	case n.IsValid:
		return statusValid
	}
	return statusStale
}
