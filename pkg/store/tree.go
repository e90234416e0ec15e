package store

import (
	"sort"
	"time"

	"github.com/aretw0/framegraph/pkg/domain"
)

// BuildTree materializes the merged view into a display hierarchy.
//
// Roots are the frames with no incoming edge. When every frame has a parent
// (a malformed, cyclic feed) and the world frame is known, the world frame is
// forced to be a root. Frames still unplaced after that, such as a cycle that
// does not contain the world frame, are rooted at their lexicographically
// smallest member so every known frame appears exactly once.
//
// A node is valid when its incoming edge is durable or was refreshed within
// window (the configured default when window <= 0). The tree is never used for
// transform math.
func (s *Store) BuildTree(window time.Duration) []domain.TreeNode {
	if window <= 0 {
		window = s.expiryWindow
	}
	now := s.clock.Now()

	s.mu.RLock()
	view := s.mergedLocked()
	frames := make([]string, 0, len(s.frames))
	for name := range s.frames {
		frames = append(frames, name)
	}
	s.mu.RUnlock()
	sort.Strings(frames)

	return materialize(view, frames, s.worldFrame, now, window)
}

type placement struct {
	edge     domain.Edge
	hasEdge  bool
	children []string
}

func materialize(view domain.View, frames []string, world string, now time.Time, window time.Duration) []domain.TreeNode {
	incoming := make(map[string]bool)
	for _, e := range view.Edges() {
		incoming[e.Child] = true
	}
	known := make(map[string]bool, len(frames))
	for _, f := range frames {
		known[f] = true
	}

	var roots []string
	for _, f := range frames {
		if !incoming[f] {
			roots = append(roots, f)
		}
	}
	if len(roots) == 0 && known[world] {
		roots = []string{world}
	}

	placed := make(map[string]*placement, len(frames))

	// Breadth-first over parent->child edges; a frame hangs under the first parent that reaches it.
	grow := func(root string) {
		placed[root] = &placement{}
		queue := []string{root}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]

			children := make([]string, 0, len(view[cur]))
			for child := range view[cur] {
				children = append(children, child)
			}
			sort.Strings(children)

			for _, child := range children {
				if _, done := placed[child]; done {
					continue
				}
				placed[child] = &placement{edge: view[cur][child], hasEdge: true}
				placed[cur].children = append(placed[cur].children, child)
				queue = append(queue, child)
			}
		}
	}

	for _, r := range roots {
		grow(r)
	}
	for {
		next := ""
		if _, done := placed[world]; !done && known[world] {
			next = world
		} else {
			for _, f := range frames {
				if _, done := placed[f]; !done {
					next = f
					break
				}
			}
		}
		if next == "" {
			break
		}
		roots = append(roots, next)
		grow(next)
	}

	var build func(name, parent string) domain.TreeNode
	build = func(name, parent string) domain.TreeNode {
		p := placed[name]
		node := domain.TreeNode{
			Name:     name,
			Parent:   parent,
			Children: make([]domain.TreeNode, 0, len(p.children)),
			IsValid:  true,
			IsStatic: true,
		}
		if p.hasEdge {
			node.LastSeenAt = p.edge.LastSeenAt
			node.IsStatic = p.edge.IsStatic()
			node.IsValid = p.edge.IsValid(now, window)
		}
		for _, c := range p.children {
			node.Children = append(node.Children, build(c, name))
		}
		return node
	}

	out := make([]domain.TreeNode, 0, len(roots))
	for _, r := range roots {
		out = append(out, build(r, ""))
	}
	return out
}
