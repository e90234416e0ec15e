package domain

import "sort"

// View is a snapshot of the merged edge set, indexed parent -> child -> edge.
// A View is never mutated by the store after it is handed out.
type View map[string]map[string]Edge

// Edge looks up the stored parent->child edge.
func (v View) Edge(parent, child string) (Edge, bool) {
	children, ok := v[parent]
	if !ok {
		return Edge{}, false
	}
	e, ok := children[child]
	return e, ok
}

// Len returns the number of edges in the view.
func (v View) Len() int {
	n := 0
	for _, children := range v {
		n += len(children)
	}
	return n
}

// Edges returns every edge ordered by (parent, child).
func (v View) Edges() []Edge {
	out := make([]Edge, 0, v.Len())
	for _, children := range v {
		for _, e := range children {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Parent != out[j].Parent {
			return out[i].Parent < out[j].Parent
		}
		return out[i].Child < out[j].Child
	})
	return out
}

// Neighbors returns the frames reachable from name over one edge in either
// direction, sorted lexicographically.
func (v View) Neighbors(name string) []string {
	seen := make(map[string]struct{})
	for child := range v[name] {
		seen[child] = struct{}{}
	}
	for parent, children := range v {
		if _, ok := children[name]; ok {
			seen[parent] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Adjacency returns the undirected neighbor lists of every frame in the view,
// each list sorted lexicographically.
func (v View) Adjacency() map[string][]string {
	sets := make(map[string]map[string]struct{})
	link := func(a, b string) {
		if sets[a] == nil {
			sets[a] = make(map[string]struct{})
		}
		sets[a][b] = struct{}{}
	}
	for parent, children := range v {
		for child := range children {
			link(parent, child)
			link(child, parent)
		}
	}

	adj := make(map[string][]string, len(sets))
	for name, set := range sets {
		list := make([]string, 0, len(set))
		for n := range set {
			list = append(list, n)
		}
		sort.Strings(list)
		adj[name] = list
	}
	return adj
}
