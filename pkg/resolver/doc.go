/*
Package resolver answers "what is frame B's pose expressed in frame A?" over a
merged edge view.

FindPath runs a breadth-first search that treats every stored parent->child edge
as traversable in both directions. Compose walks the path pair by pair, using the
stored edge when it points along the walk and its inverse when it points against
it. Each edge is converted to the renderer's axis convention before composition.

Neither step caches anything: the graph mutates faster than a cache would pay off,
and a stale cached path would be a correctness bug. Callers must not reuse a path
or a resolved transform across graph mutations.
*/
package resolver
