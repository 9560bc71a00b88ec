package runner

import (
	"context"

	"github.com/aretw0/abacus/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (REPL) and JSON (Structured) modes.
type IOHandler interface {
	// Input reads and parses the next request. Recoverable problems with a
	// single line (unknown key, oversized input) are returned as errors the
	// Runner reports through SystemOutput before reading again.
	Input(ctx context.Context) (Request, error)

	// Output presents the view after a request was applied.
	Output(ctx context.Context, view domain.View) error

	// History presents the session history.
	History(ctx context.Context, view domain.View) error

	// SystemOutput presents a meta-message to the user (help, input errors).
	// This is distinct from content rendering.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)
