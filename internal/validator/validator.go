package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/framegraph/pkg/adapters/file"
	"github.com/aretw0/framegraph/pkg/domain"
	"github.com/aretw0/framegraph/pkg/ingest"
)

// Severity ranks an issue. Errors make the fixture unusable as an attachment
// tree; warnings describe data the graph tolerates.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding.
type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
}

// Report is the result of ValidateFixture.
type Report struct {
	Frames int     `json:"frames"`
	Edges  int     `json:"edges"`
	Issues []Issue `json:"issues"`
}

// Errors returns the error-severity issues.
func (r Report) Errors() []Issue {
	var out []Issue
	for _, is := range r.Issues {
		if is.Severity == SeverityError {
			out = append(out, is)
		}
	}
	return out
}

// Err folds the error-severity issues into one error, or nil.
func (r Report) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	lines := make([]string, len(errs))
	for i, is := range errs {
		lines[i] = is.Message
	}
	return fmt.Errorf("found %d errors:\n- %s", len(errs), strings.Join(lines, "\n- "))
}

func (r *Report) add(sev Severity, code, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Severity: sev, Code: code, Message: fmt.Sprintf(format, args...)})
}

// ValidateFixture lints a fixture as an attachment tree rooted at world.
// It reports malformed edges, duplicate edges, frames with several parents,
// cycles, and frames unreachable from world.
func ValidateFixture(fx file.Fixture, world string) Report {
	var r Report
	view := make(domain.View)
	seen := make(map[[2]string]domain.Classification)

	check := func(msgs []ingest.EdgeMessage, class domain.Classification) {
		for i, m := range msgs {
			where := fmt.Sprintf("%s[%d]", class, i)
			if err := ingest.Validate(m); err != nil {
				r.add(SeverityError, "malformed", "%s: %v", where, err)
				continue
			}
			u := m.Update(class)
			if err := u.Validate(); err != nil {
				r.add(SeverityError, "malformed", "%s: %v", where, err)
				continue
			}

			key := [2]string{u.Parent, u.Child}
			if prev, dup := seen[key]; dup {
				if prev == class {
					r.add(SeverityWarning, "duplicate", "%s: edge %s -> %s listed twice; the last one wins", where, u.Parent, u.Child)
				} else {
					r.add(SeverityWarning, "shadowed", "%s: edge %s -> %s is both durable and expiring; the expiring one wins", where, u.Parent, u.Child)
				}
			}
			seen[key] = class

			if view[u.Parent] == nil {
				view[u.Parent] = make(map[string]domain.Edge)
			}
			view[u.Parent][u.Child] = domain.Edge{Parent: u.Parent, Child: u.Child, Classification: class}
		}
	}
	check(fx.Static, domain.Durable)
	check(fx.Dynamic, domain.Expiring)

	r.Edges = view.Len()
	adj := view.Adjacency()
	r.Frames = len(adj)
	if r.Frames == 0 {
		r.add(SeverityWarning, "empty", "fixture contains no usable edges")
		return r
	}

	checkParents(&r, view)
	checkCycles(&r, view)
	checkReachability(&r, adj, world)
	return r
}

func checkParents(r *Report, view domain.View) {
	parents := make(map[string][]string)
	for _, e := range view.Edges() {
		parents[e.Child] = append(parents[e.Child], e.Parent)
	}
	children := make([]string, 0, len(parents))
	for c := range parents {
		children = append(children, c)
	}
	sort.Strings(children)
	for _, c := range children {
		if ps := parents[c]; len(ps) > 1 {
			r.add(SeverityError, "multiple_parents", "frame %q has %d parents: %s", c, len(ps), strings.Join(ps, ", "))
		}
	}
}

// checkCycles reports every edge that closes an undirected loop.
func checkCycles(r *Report, view domain.View) {
	root := make(map[string]string)
	var find func(string) string
	find = func(x string) string {
		p, ok := root[x]
		if !ok || p == x {
			root[x] = x
			return x
		}
		top := find(p)
		root[x] = top
		return top
	}

	for _, e := range view.Edges() {
		a, b := find(e.Parent), find(e.Child)
		if a == b {
			r.add(SeverityError, "cycle", "edge %s -> %s closes a cycle", e.Parent, e.Child)
			continue
		}
		root[a] = b
	}
}

func checkReachability(r *Report, adj map[string][]string, world string) {
	if _, ok := adj[world]; !ok {
		r.add(SeverityWarning, "no_world", "world frame %q does not appear in the fixture", world)
		return
	}

	visited := map[string]bool{world: true}
	queue := []string{world}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, n := range adj[current] {
			if !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}

	var orphans []string
	for name := range adj {
		if !visited[name] {
			orphans = append(orphans, name)
		}
	}
	if len(orphans) > 0 {
		sort.Strings(orphans)
		r.add(SeverityError, "disconnected", "%d frames unreachable from %q: %s", len(orphans), world, strings.Join(orphans, ", "))
	}
}
