package runner

import (
	"log/slog"

	"github.com/aretw0/abacus/pkg/ports"
)

// Option configures a Runner.
type Option func(*Runner)

// WithHandler selects the front-end (text, JSON-lines or a custom IOHandler).
func WithHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithPersistence saves the state to store under sessionID after every request
// that reached the engine.
func WithPersistence(store ports.StateStore, sessionID string) Option {
	return func(r *Runner) {
		r.Store = store
		r.SessionID = sessionID
	}
}

// WithLogger sets the debug logger. Nil keeps the no-op default.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.Logger = logger
		}
	}
}
