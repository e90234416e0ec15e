package domain

// Hooks defines optional callbacks for observing the graph.
// Hooks run synchronously on the calling goroutine and must not call back into the graph.
type Hooks struct {
	OnEdgeUpserted func(e Edge, created bool)
	OnEdgeRejected func(u EdgeUpdate, err error)
	OnReset        func()
	OnResolve      func(source, target string, err error)
	OnNotify       func()
}
