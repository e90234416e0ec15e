package domain

import "time"

// TreeNode is one frame in the materialized, presentation-only hierarchy.
// Parent is empty for roots. Root nodes carry no edge, so they are reported as
// static and valid.
type TreeNode struct {
	Name       string     `json:"name"`
	Parent     string     `json:"parent,omitempty"`
	Children   []TreeNode `json:"children"`
	LastSeenAt time.Time  `json:"last_seen_at,omitzero"`
	IsValid    bool       `json:"is_valid"`
	IsStatic   bool       `json:"is_static"`
}

// Walk visits n and its descendants depth-first, passing the depth of each node.
func (n TreeNode) Walk(fn func(node TreeNode, depth int)) {
	var walk func(TreeNode, int)
	walk = func(cur TreeNode, depth int) {
		fn(cur, depth)
		for _, c := range cur.Children {
			walk(c, depth+1)
		}
	}
	walk(n, 0)
}

// Find returns the node with the given name among roots and their descendants.
func Find(roots []TreeNode, name string) (TreeNode, bool) {
	for _, r := range roots {
		if r.Name == name {
			return r, true
		}
		if n, ok := Find(r.Children, name); ok {
			return n, true
		}
	}
	return TreeNode{}, false
}
