package keypad

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/ports"
	"github.com/aretw0/abacus/pkg/runner"
	"github.com/gdamore/tcell/v2"
)

// SaveFunc persists the state after every applied key.
type SaveFunc func(ctx context.Context, state *domain.State) error

// Keypad is a full-screen calculator front-end drawn on a tcell screen.
// The caller owns the screen lifecycle (Init and Fini).
type Keypad struct {
	screen tcell.Screen
	engine ports.Engine
	state  *domain.State
	save   SaveFunc
	logger *slog.Logger

	rejected string
}

// Option configures a Keypad.
type Option func(*Keypad)

// WithSave persists the state after every key that reached the engine.
func WithSave(fn SaveFunc) Option {
	return func(k *Keypad) {
		k.save = fn
	}
}

// WithLogger sets the logger. Log output must not target the terminal the keypad draws on.
func WithLogger(logger *slog.Logger) Option {
	return func(k *Keypad) {
		k.logger = logger
	}
}

// New creates a keypad over an initialized screen.
func New(screen tcell.Screen, engine ports.Engine, state *domain.State, opts ...Option) *Keypad {
	k := &Keypad{
		screen: screen,
		engine: engine,
		state:  state,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// State returns the session state driven by the keypad.
func (k *Keypad) State() *domain.State {
	return k.state
}

// Run draws the keypad and processes keys until q, Ctrl+C or ctx cancellation.
func (k *Keypad) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = k.screen.PostEvent(tcell.NewEventInterrupt(nil))
		case <-done:
		}
	}()

	k.draw()
	for {
		ev := k.screen.PollEvent()
		switch e := ev.(type) {
		case nil:
			return nil
		case *tcell.EventInterrupt:
			if ctx.Err() != nil {
				return nil
			}
		case *tcell.EventResize:
			k.screen.Sync()
			k.draw()
		case *tcell.EventKey:
			quit, err := k.handleKey(ctx, e)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
			k.draw()
		}
	}
}

func (k *Keypad) handleKey(ctx context.Context, e *tcell.EventKey) (bool, error) {
	ev, ok, quit := mapKey(e)
	if quit {
		return true, nil
	}
	if !ok {
		return false, nil
	}

	k.rejected = ""
	err := k.engine.Apply(ctx, k.state, ev)
	switch {
	case err == nil:
	case domain.IsRejection(err):
		k.rejected = err.Error()
	case domain.KindOf(err) != domain.KindNone:
		k.logger.Debug("evaluation failed", "session_id", k.state.SessionID, "err", err)
	default:
		k.rejected = err.Error()
	}

	if k.save != nil {
		if err := k.save(ctx, k.state); err != nil {
			return false, fmt.Errorf("save session: %w", err)
		}
	}
	return false, nil
}

// mapKey translates a key press into an engine event.
// ok is false for keys the keypad ignores.
func mapKey(e *tcell.EventKey) (ev domain.Event, ok bool, quit bool) {
	switch e.Key() {
	case tcell.KeyCtrlC:
		return domain.Event{}, false, true
	case tcell.KeyEnter:
		return domain.Equals, true, false
	case tcell.KeyBackspace, tcell.KeyBackspace2, tcell.KeyDelete:
		return domain.Delete, true, false
	case tcell.KeyEscape:
		return domain.Clear, true, false
	case tcell.KeyRune:
		r := e.Rune()
		if r == 'q' || r == 'Q' {
			return domain.Event{}, false, true
		}
		parsed, err := runner.ParseKey(string(r))
		if err != nil {
			return domain.Event{}, false, false
		}
		return parsed, true, false
	}
	return domain.Event{}, false, false
}
