package observability

import (
	"log/slog"

	"github.com/aretw0/framegraph/pkg/domain"
)

// Combine fans every callback out to each non-nil handler of the given hook sets, in order.
func Combine(sets ...domain.Hooks) domain.Hooks {
	var out domain.Hooks
	for _, h := range sets {
		if fn := h.OnEdgeUpserted; fn != nil {
			prev := out.OnEdgeUpserted
			out.OnEdgeUpserted = func(e domain.Edge, created bool) {
				if prev != nil {
					prev(e, created)
				}
				fn(e, created)
			}
		}
		if fn := h.OnEdgeRejected; fn != nil {
			prev := out.OnEdgeRejected
			out.OnEdgeRejected = func(u domain.EdgeUpdate, err error) {
				if prev != nil {
					prev(u, err)
				}
				fn(u, err)
			}
		}
		if fn := h.OnReset; fn != nil {
			prev := out.OnReset
			out.OnReset = func() {
				if prev != nil {
					prev()
				}
				fn()
			}
		}
		if fn := h.OnResolve; fn != nil {
			prev := out.OnResolve
			out.OnResolve = func(source, target string, err error) {
				if prev != nil {
					prev(source, target, err)
				}
				fn(source, target, err)
			}
		}
		if fn := h.OnNotify; fn != nil {
			prev := out.OnNotify
			out.OnNotify = func() {
				if prev != nil {
					prev()
				}
				fn()
			}
		}
	}
	return out
}

// AuditHooks logs graph lifecycle events. New frames are logged at Info,
// refreshes of known edges stay silent.
func AuditHooks(logger *slog.Logger) domain.Hooks {
	return domain.Hooks{
		OnEdgeUpserted: func(e domain.Edge, created bool) {
			if created {
				logger.Info("edge_added",
					"parent", e.Parent,
					"child", e.Child,
					"classification", e.Classification,
				)
			}
		},
		OnReset: func() {
			logger.Info("graph_reset")
		},
	}
}
