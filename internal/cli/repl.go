package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/internal/config"
	"github.com/aretw0/abacus/internal/presentation/keypad"
	"github.com/aretw0/abacus/internal/presentation/tui"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/runner"
	"github.com/aretw0/abacus/pkg/session"
	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"
)

// RunOptions contains the configuration for the repl command.
type RunOptions struct {
	SessionID string
	JSON      bool
	Keypad    bool
	Debug     bool

	// In and Out default to the process stdin and stdout.
	In  io.Reader
	Out io.Writer
}

// RunREPL resumes or starts the session and drives it from the chosen front-end
// until EOF, quit or ctx cancellation.
func RunREPL(ctx context.Context, cfg *config.Config, opts RunOptions) error {
	if opts.JSON && opts.Keypad {
		return fmt.Errorf("--json and --keypad cannot be used together")
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	logger := createLogger(opts.Debug)
	sessions, closeStore, err := OpenSessions(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	engine := NewEngine(cfg, logger)
	state, err := sessions.LoadOrStart(ctx, opts.SessionID)
	if err != nil {
		return fmt.Errorf("failed to init session: %w", err)
	}
	resumed := state.Phase() != domain.PhaseEmpty || len(state.History) > 0
	if resumed {
		logger.Info("Session Resumed", "session_id", opts.SessionID, "phase", state.Phase())
	} else {
		logger.Info("Session Created", "session_id", opts.SessionID)
	}

	if opts.Keypad {
		return runKeypad(ctx, engine, sessions, state)
	}

	var handler runner.IOHandler
	if opts.JSON {
		jh := runner.NewJSONHandler(opts.In, opts.Out)
		jh.MaxInputSize = cfg.Input.MaxSize
		handler = jh
	} else {
		handler = newTextHandler(cfg, opts.In, opts.Out)
		if isTerminal(opts.Out) {
			tui.PrintBanner(opts.Out, strings.TrimSpace(abacus.Version))
		}
		if resumed {
			printSystemMessage(opts.Out, "Resuming session '%s' at [ %s ].", opts.SessionID, state.Display())
		} else {
			printSystemMessage(opts.Out, "Session '%s' active.", opts.SessionID)
		}
	}

	r := runner.NewRunner(
		runner.WithLogger(logger),
		runner.WithHandler(handler),
		runner.WithPersistence(sessions, opts.SessionID),
	)
	_, err = r.Run(ctx, engine, state)
	return err
}

// newTextHandler styles the REPL only when writing to a terminal.
func newTextHandler(cfg *config.Config, in io.Reader, out io.Writer) *runner.TextHandler {
	opts := []runner.TextHandlerOption{runner.WithTextHandlerMaxInputSize(cfg.Input.MaxSize)}
	if isTerminal(out) {
		if render, err := tui.NewRenderer(0); err == nil {
			opts = append(opts, runner.WithTextHandlerRenderer(render))
		}
	}
	return runner.NewTextHandler(in, out, opts...)
}

func runKeypad(ctx context.Context, engine *abacus.Engine, sessions *session.Manager, state *domain.State) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to init terminal: %w", err)
	}
	defer screen.Fini()

	kp := keypad.New(screen, engine, state, keypad.WithSave(func(ctx context.Context, s *domain.State) error {
		return sessions.Save(ctx, s.SessionID, s)
	}))
	return kp.Run(ctx)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
