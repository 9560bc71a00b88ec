package cli

import (
	"log/slog"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/internal/config"
	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/observability"
)

// NewLogger builds the process logger from the configured level.
// debug forces the debug level.
func NewLogger(cfg *config.Config, debug bool) (*slog.Logger, error) {
	if debug {
		return logging.New(slog.LevelDebug), nil
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

// createLogger is the logger for interactive front-ends.
// Logs would interleave with the prompt, so they are only written in debug mode.
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// NewEngine builds an engine with the configured policies.
// Engine events are logged through logger; extra hooks run after logging.
func NewEngine(cfg *config.Config, logger *slog.Logger, hooks ...domain.LifecycleHooks) *abacus.Engine {
	all := observability.LogHooks(logger)
	for _, h := range hooks {
		all = all.Merge(h)
	}

	return abacus.New(
		abacus.WithLogger(logger),
		abacus.WithLifecycleHooks(all),
		abacus.WithTokenPolicy(cfg.TokenPolicy()),
		abacus.WithZeroGuard(cfg.ZeroGuard()),
	)
}
