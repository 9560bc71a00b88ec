package runtime

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"time"

	"github.com/aretw0/abacus/pkg/domain"
)

// Engine is the expression engine. It holds no session data: every operation
// mutates the *domain.State it is given, in place.
type Engine struct {
	policy domain.TokenPolicy
	guard  domain.ZeroGuard
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithTokenPolicy selects how appends are validated.
func WithTokenPolicy(p domain.TokenPolicy) EngineOption {
	return func(e *Engine) {
		if p != "" {
			e.policy = p
		}
	}
}

// WithZeroGuard selects how the division guard detects zero.
func WithZeroGuard(g domain.ZeroGuard) EngineOption {
	return func(e *Engine) {
		if g != "" {
			e.guard = g
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine with the default policies
// (permissive tokens, literal zero guard).
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		policy: domain.PolicyPermissive,
		guard:  domain.ZeroGuardLiteral,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the active token policy.
func (e *Engine) Policy() domain.TokenPolicy { return e.policy }

// Guard returns the active zero guard.
func (e *Engine) Guard() domain.ZeroGuard { return e.guard }

// AppendOperand appends a numeric literal. The text is not validated here;
// malformed literals are reported by Evaluate.
func (e *Engine) AppendOperand(ctx context.Context, state *domain.State, text string) error {
	return e.push(ctx, state, domain.Operand(text))
}

// AppendOperator appends an operator token. Unknown symbols are rejected
// without touching the sequence.
func (e *Engine) AppendOperator(ctx context.Context, state *domain.State, symbol string) error {
	op, err := domain.ParseOperator(symbol)
	if err != nil {
		return fmt.Errorf("%w: %q is not an operator", domain.ErrUnexpectedToken, symbol)
	}
	return e.push(ctx, state, domain.OperatorToken(op))
}

func (e *Engine) push(ctx context.Context, state *domain.State, tok domain.Token) error {
	pos := len(state.Sequence)
	if pos >= domain.MaxSequenceLength {
		return domain.ErrSequenceFull
	}
	if e.policy == domain.PolicyPositional && tok.Kind != domain.ExpectedKind(pos) {
		return domain.ErrUnexpectedToken
	}
	state.Sequence = append(state.Sequence, tok)
	return nil
}

// Evaluate computes the pending expression. It is a no-op unless the
// sequence holds exactly three tokens.
//
// On success the entry is appended to History, the sequence is reset to the
// result and LastError is cleared. On failure LastError is set and the
// sequence is left as-is so it can be corrected with DeleteLast.
func (e *Engine) Evaluate(ctx context.Context, state *domain.State) error {
	if len(state.Sequence) != domain.MaxSequenceLength {
		return nil
	}

	start := e.now()
	entry, err := e.compute(state.Sequence)
	evt := &domain.EvaluationEvent{
		EventBase:  domain.EventBase{Timestamp: start, SessionID: state.SessionID},
		Expression: state.Display(),
		Operator:   domain.Operator(state.Sequence[1].Text),
	}

	if err != nil {
		state.LastError = domain.KindOf(err)
		evt.Error = state.LastError
		evt.Duration = e.now().Sub(start)
		e.logger.Debug("evaluation failed",
			"session_id", state.SessionID,
			"expression", evt.Expression,
			"err", err,
		)
		if e.hooks.OnError != nil {
			e.hooks.OnError(ctx, evt)
		}
		return err
	}

	state.History = append(state.History, entry)
	state.Sequence = append(state.Sequence[:0], domain.Operand(domain.FormatNumber(entry.Result)))
	state.LastError = domain.KindNone

	evt.Result = entry.Result
	evt.Duration = e.now().Sub(start)
	e.logger.Debug("evaluated",
		"session_id", state.SessionID,
		"expression", evt.Expression,
		"result", entry.Result,
	)
	if e.hooks.OnEvaluate != nil {
		e.hooks.OnEvaluate(ctx, evt)
	}
	return nil
}

// DeleteLast removes the last token. No-op on an empty sequence.
func (e *Engine) DeleteLast(ctx context.Context, state *domain.State) {
	if n := len(state.Sequence); n > 0 {
		state.Sequence = state.Sequence[:n-1]
	}
}

// Clear empties the sequence and clears LastError. History is kept.
func (e *Engine) Clear(ctx context.Context, state *domain.State) {
	state.Sequence = state.Sequence[:0]
	state.LastError = domain.KindNone
}

// Display renders the sequence, e.g. "3 + 4".
func (e *Engine) Display(state *domain.State) string {
	return state.Display()
}

// HistoryView yields the rendered history, oldest first. The sequence can be
// ranged over any number of times; each pass reads the history as it is then.
func (e *Engine) HistoryView(state *domain.State) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, h := range state.History {
			if !yield(h.String()) {
				return
			}
		}
	}
}
