package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/ports"
)

// Runner handles the read-apply-render loop of the engine using provided IO.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	// Handler is the strategy for IO. Defaults to a TextHandler on stdin/stdout.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Store persists the state after every request.
	// If nil, sessions are ephemeral.
	Store     ports.StateStore
	SessionID string
}

// NewRunner creates a new Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads requests until EOF, quit or ctx cancellation, applying each to state.
// The final state is returned; cancellation and EOF are not errors.
func (r *Runner) Run(ctx context.Context, engine ports.Engine, state *domain.State) (*domain.State, error) {
	handler := r.resolveHandler()

	for {
		req, err := handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return state, nil
			}
			if isRecoverable(err) {
				r.Logger.Debug("input rejected", "err", err)
				if err := handler.SystemOutput(ctx, err.Error()); err != nil {
					return state, fmt.Errorf("output error: %w", err)
				}
				continue
			}
			return state, fmt.Errorf("input error: %w", err)
		}

		switch req.Command {
		case CommandQuit:
			return state, nil
		case CommandHelp:
			if err := handler.SystemOutput(ctx, KeyHelp); err != nil {
				return state, fmt.Errorf("output error: %w", err)
			}
			continue
		case CommandHistory:
			if err := handler.History(ctx, engine.View(state, nil)); err != nil {
				return state, fmt.Errorf("output error: %w", err)
			}
			continue
		case CommandNone:
		default:
			if err := handler.SystemOutput(ctx, fmt.Sprintf("unknown command %q", req.Command)); err != nil {
				return state, fmt.Errorf("output error: %w", err)
			}
			continue
		}

		if len(req.Events) == 0 {
			continue
		}

		rejected, err := r.apply(ctx, engine, state, req.Events, handler)
		if err != nil {
			return state, fmt.Errorf("output error: %w", err)
		}

		if err := r.saveState(ctx, state); err != nil {
			return state, fmt.Errorf("critical persistence error: %w", err)
		}

		if err := handler.Output(ctx, engine.View(state, rejected)); err != nil {
			return state, fmt.Errorf("output error: %w", err)
		}
	}
}

// apply forwards events in order and returns the last rejection, if any.
// Evaluation failures are already recorded on the state. The error result is
// reserved for a handler that could not report an unexpected engine error.
func (r *Runner) apply(ctx context.Context, engine ports.Engine, state *domain.State, events []domain.Event, handler IOHandler) (rejected error, err error) {
	for _, ev := range events {
		applyErr := engine.Apply(ctx, state, ev)
		switch {
		case applyErr == nil:
		case domain.IsRejection(applyErr):
			rejected = applyErr
		case domain.KindOf(applyErr) != domain.KindNone:
			r.Logger.Debug("evaluation failed", "session_id", state.SessionID, "err", applyErr)
		default:
			if err := handler.SystemOutput(ctx, applyErr.Error()); err != nil {
				return rejected, err
			}
		}
	}
	return rejected, nil
}

func (r *Runner) saveState(ctx context.Context, state *domain.State) error {
	if r.Store == nil || r.SessionID == "" {
		return nil
	}
	if err := r.Store.Save(ctx, r.SessionID, state); err != nil {
		return err
	}
	r.Logger.Debug("state saved", "session_id", r.SessionID, "phase", state.Phase())
	return nil
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler == nil {
		// Memoize to prevent creating new Pumps on subsequent Run() calls
		r.Handler = NewTextHandler(nil, nil)
	}
	return r.Handler
}

func isRecoverable(err error) bool {
	return errors.Is(err, ErrUnknownKey) ||
		errors.Is(err, ErrMalformedInput) ||
		errors.Is(err, ErrInputTooLarge) ||
		errors.Is(err, ErrInvalidUTF8)
}
