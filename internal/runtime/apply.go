package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/abacus/pkg/domain"
)

// Apply maps one inbound event onto the matching engine operation.
//
// Rejected appends (full sequence, wrong slot, bad digit or symbol) leave the
// state untouched and are reported through OnReject. Evaluation failures are
// returned as errors and recorded in state.LastError.
func (e *Engine) Apply(ctx context.Context, state *domain.State, ev domain.Event) error {
	var err error
	switch ev.Type {
	case domain.EventDigit:
		if !isDigit(ev.Value) {
			err = fmt.Errorf("%w: %q", domain.ErrInvalidDigit, ev.Value)
			break
		}
		err = e.AppendOperand(ctx, state, ev.Value)
	case domain.EventDecimalPoint:
		err = e.AppendOperand(ctx, state, ".")
	case domain.EventOperator:
		err = e.AppendOperator(ctx, state, ev.Value)
	case domain.EventEquals:
		// Evaluation reports through its own hooks.
		return e.Evaluate(ctx, state)
	case domain.EventDelete:
		e.DeleteLast(ctx, state)
	case domain.EventClear:
		e.Clear(ctx, state)
	default:
		err = fmt.Errorf("%w: %q", domain.ErrUnknownEvent, ev.Type)
	}

	evt := &domain.InputEvent{
		EventBase: domain.EventBase{Timestamp: e.now(), SessionID: state.SessionID},
		Input:     ev,
		Phase:     state.Phase(),
	}
	if err != nil {
		evt.Reason = err.Error()
		e.logger.Debug("input rejected",
			"session_id", state.SessionID,
			"event", ev.Type,
			"value", ev.Value,
			"err", err,
		)
		if e.hooks.OnReject != nil {
			e.hooks.OnReject(ctx, evt)
		}
		return err
	}

	if e.hooks.OnInput != nil {
		e.hooks.OnInput(ctx, evt)
	}
	return nil
}

func isDigit(s string) bool {
	return len(s) == 1 && s[0] >= '0' && s[0] <= '9'
}
