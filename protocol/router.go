package protocol

import (
	"context"

	"go.uber.org/zap"
)

// Router dispatches commands to the first registered handler that matches
// their type.
type Router struct {
	logger   *zap.Logger
	handlers []Handler
}

// NewRouter creates a router over an ordered handler collection.
func NewRouter(logger *zap.Logger, handlers ...Handler) *Router {
	return &Router{logger: logger, handlers: handlers}
}

// Register appends a handler to the end of the dispatch order.
func (r *Router) Register(h Handler) {
	r.handlers = append(r.handlers, h)
}

// Dispatch routes cmd to the first matching handler and reports whether one
// was found. A matched handler sends exactly one response; for an unmatched
// command nothing is sent and the caller decides how to surface it.
func (r *Router) Dispatch(ctx context.Context, cmd Command) bool {
	for _, h := range r.handlers {
		if !h.Matches(cmd.Type) {
			continue
		}
		r.logger.Debug("dispatching command",
			zap.String("command_type", cmd.Type),
			zap.String("command_id", cmd.ID),
			zap.String("client_id", cmd.ClientID))
		h.Handle(ctx, cmd.ClientID, cmd.Params, cmd.ID)
		return true
	}

	r.logger.Warn("unhandled command",
		zap.String("command_type", cmd.Type),
		zap.String("command_id", cmd.ID))
	return false
}
