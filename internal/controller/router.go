package controller

import (
	"fmt"

	"go.uber.org/zap"
)

// Router dispatches actions over an ordered list of controllers. The list
// is small and fixed, so a linear scan per call is fine; order matters
// because the first claimant wins.
type Router struct {
	controllers []Controller
	log         *zap.Logger
}

// NewRouter builds a router over the given controllers, preserving order.
func NewRouter(log *zap.Logger, controllers ...Controller) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{controllers: controllers, log: log}
}

// Default returns the standard controller set in its canonical order.
func Default(log *zap.Logger, aliases *Aliases) *Router {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	return NewRouter(log,
		NewApplicationController(aliases),
		NewFileController(),
		NewSystemController(),
		NewAudioController(),
		NewDisplayController(),
		NewInputController(),
		NewWebController(),
		NewProcessController(),
		NewClipboardController(),
		NewNetworkController(),
		NewMediaController(),
	)
}

// Execute routes action to the first controller claiming it. Unknown
// actions and handler panics both come back as failure Results; callers
// never need error handling for "the command didn't work".
func (r *Router) Execute(action string, params map[string]any) (res Result) {
	if params == nil {
		params = map[string]any{}
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("controller panic", zap.String("action", action), zap.Any("panic", rec))
			res = failure("Action %s failed: %v", action, rec)
		}
	}()

	for _, c := range r.controllers {
		if claims(c, action) {
			r.log.Debug("routing action",
				zap.String("action", action),
				zap.String("controller", c.Name()))
			return c.Handle(action, params)
		}
	}

	return Result{Success: false, Message: fmt.Sprintf("No controller registered for action: %s", action)}
}

func claims(c Controller, action string) bool {
	for _, a := range c.Actions() {
		if a == action {
			return true
		}
	}
	return false
}
