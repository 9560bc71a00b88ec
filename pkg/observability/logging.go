package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/abacus/pkg/domain"
)

// LogHooks returns lifecycle hooks that write one structured record per event.
// Accepted inputs log at debug; evaluations at info; failures at warn.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnInput: func(ctx context.Context, e *domain.InputEvent) {
			logger.DebugContext(ctx, "input",
				"session_id", e.SessionID,
				"type", e.Input.Type,
				"value", e.Input.Value,
				"phase", e.Phase,
			)
		},
		OnReject: func(ctx context.Context, e *domain.InputEvent) {
			logger.DebugContext(ctx, "input_rejected",
				"session_id", e.SessionID,
				"type", e.Input.Type,
				"value", e.Input.Value,
				"reason", e.Reason,
			)
		},
		OnEvaluate: func(ctx context.Context, e *domain.EvaluationEvent) {
			logger.InfoContext(ctx, "evaluate",
				"session_id", e.SessionID,
				"expression", e.Expression,
				"result", domain.FormatNumber(e.Result),
				"duration", e.Duration,
			)
		},
		OnError: func(ctx context.Context, e *domain.EvaluationEvent) {
			logger.WarnContext(ctx, "evaluate_failed",
				"session_id", e.SessionID,
				"expression", e.Expression,
				"kind", e.Error,
			)
		},
	}
}
