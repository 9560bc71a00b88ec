package cli

import (
	"context"
	"testing"

	"github.com/aretw0/abacus/internal/config"
	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEval(t *testing.T) {
	eng := NewEngine(config.Default(), logging.NewNop())
	ctx := context.Background()

	t.Run("chained keys", func(t *testing.T) {
		view, err := Eval(ctx, eng, "7+8=")
		require.NoError(t, err)
		assert.Equal(t, "15", view.Display)
		assert.Equal(t, []string{"7 + 8 = 15"}, view.History)
	})

	t.Run("spaced keys", func(t *testing.T) {
		view, err := Eval(ctx, eng, "9 / 2 =")
		require.NoError(t, err)
		assert.Equal(t, "4.5", view.Display)
	})

	t.Run("division by zero", func(t *testing.T) {
		view, err := Eval(ctx, eng, "8/0=")
		require.NoError(t, err)
		assert.Equal(t, domain.KindDivisionByZero, view.Error)
		assert.Equal(t, "Division by zero", view.Message)
	})

	t.Run("rejected key", func(t *testing.T) {
		view, err := Eval(ctx, eng, "1+23")
		require.NoError(t, err)
		assert.Equal(t, "1 + 2", view.Display)
		assert.Equal(t, domain.ErrSequenceFull.Error(), view.Rejected)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := Eval(ctx, eng, "7x")
		assert.ErrorIs(t, err, runner.ErrUnknownKey)
	})

	t.Run("command", func(t *testing.T) {
		_, err := Eval(ctx, eng, "history")
		assert.ErrorIs(t, err, runner.ErrUnknownKey)
	})
}
