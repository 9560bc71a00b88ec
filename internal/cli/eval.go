package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/ports"
	"github.com/aretw0/abacus/pkg/runner"
)

// EvalSessionID names the throwaway session used by Eval.
const EvalSessionID = "eval"

// Eval applies one line of keys to a fresh session and returns the final view.
// Rejected keys are folded into the view; evaluation failures show up as view.Error.
func Eval(ctx context.Context, engine ports.Engine, line string) (domain.View, error) {
	clean, err := runner.SanitizeInput(line)
	if err != nil {
		return domain.View{}, err
	}
	req, err := runner.ParseLine(clean)
	if err != nil {
		return domain.View{}, err
	}
	if req.Command != runner.CommandNone {
		return domain.View{}, fmt.Errorf("%w: %q is a command, not a key", runner.ErrUnknownKey, req.Command)
	}

	state := engine.Start(EvalSessionID)
	var rejected error
	for _, ev := range req.Events {
		if err := engine.Apply(ctx, state, ev); err != nil && domain.IsRejection(err) {
			rejected = err
		}
	}
	return engine.View(state, rejected), nil
}
