package resolver

import "github.com/aretw0/framegraph/pkg/domain"

// FindPath returns the frames from source to target inclusive, or nil when no
// path exists (unknown frame, disconnected components, or an empty view).
// source == target short-circuits to [source] without consulting the view.
//
// Neighbors are expanded in lexicographic order, so the result is deterministic
// among equally short paths. The visited set keeps malformed cyclic input from
// looping.
func FindPath(source, target string, view domain.View) []string {
	if source == target {
		return []string{source}
	}

	adj := view.Adjacency()
	if _, ok := adj[source]; !ok {
		return nil
	}
	if _, ok := adj[target]; !ok {
		return nil
	}

	prev := map[string]string{source: source}
	queue := []string{source}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if _, seen := prev[next]; seen {
				continue
			}
			prev[next] = cur
			if next == target {
				return unwind(prev, source, target)
			}
			queue = append(queue, next)
		}
	}
	return nil
}

func unwind(prev map[string]string, source, target string) []string {
	var rev []string
	for cur := target; cur != source; cur = prev[cur] {
		rev = append(rev, cur)
	}
	rev = append(rev, source)

	path := make([]string, len(rev))
	for i, name := range rev {
		path[len(rev)-1-i] = name
	}
	return path
}
