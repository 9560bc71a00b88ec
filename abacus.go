package abacus

import (
	"context"
	"io"
	"iter"
	"log/slog"

	"github.com/aretw0/abacus/internal/runtime"
	"github.com/aretw0/abacus/pkg/domain"
)

// Engine is the high-level entry point for the Abacus library.
// It wraps the internal runtime and provides a simplified API for renderers.
type Engine struct {
	runtime *runtime.Engine
	hooks   domain.LifecycleHooks
	policy  domain.TokenPolicy
	guard   domain.ZeroGuard
	logger  *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTokenPolicy selects whether appends are checked against their slot.
func WithTokenPolicy(p domain.TokenPolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithZeroGuard selects how the division guard detects a zero denominator.
func WithZeroGuard(g domain.ZeroGuard) Option {
	return func(e *Engine) {
		e.guard = g
	}
}

// New initializes a new Abacus Engine.
func New(opts ...Option) *Engine {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	// Ensure logger is initialized (so we don't pass nil to runtime)
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	eng.runtime = runtime.NewEngine(
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
		runtime.WithTokenPolicy(eng.policy),
		runtime.WithZeroGuard(eng.guard),
	)
	return eng
}

// Start creates the empty state for a new session.
func (e *Engine) Start(sessionID string) *domain.State {
	e.logger.Debug("session started", "session_id", sessionID)
	return domain.NewState(sessionID)
}

// Apply forwards one input event to the engine, mutating state in place.
func (e *Engine) Apply(ctx context.Context, state *domain.State, ev domain.Event) error {
	return e.runtime.Apply(ctx, state, ev)
}

// ApplyAll forwards events in order and stops at the first error that is not a rejection.
// Rejected appends are no-ops and do not interrupt the stream.
func (e *Engine) ApplyAll(ctx context.Context, state *domain.State, events ...domain.Event) error {
	for _, ev := range events {
		if err := e.runtime.Apply(ctx, state, ev); err != nil && !domain.IsRejection(err) {
			return err
		}
	}
	return nil
}

// Display returns the current display string.
func (e *Engine) Display(state *domain.State) string {
	return e.runtime.Display(state)
}

// History returns the rendered history, oldest first.
func (e *Engine) History(state *domain.State) iter.Seq[string] {
	return e.runtime.HistoryView(state)
}

// View renders the state into the read model consumed by renderers.
// A non-nil err from Apply is folded into the view as a rejection reason.
func (e *Engine) View(state *domain.State, err error) domain.View {
	v := domain.NewView(state)
	if err != nil && domain.IsRejection(err) {
		v.Rejected = err.Error()
	}
	return v
}

// Runtime exposes the underlying expression engine.
func (e *Engine) Runtime() *runtime.Engine {
	return e.runtime
}
