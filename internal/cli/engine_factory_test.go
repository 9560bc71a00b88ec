package cli

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/aretw0/abacus/internal/config"
	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine_Policies(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.TokenPolicy = string(domain.PolicyPositional)
	cfg.Engine.ZeroGuard = string(domain.ZeroGuardNumeric)

	eng := NewEngine(cfg, logging.NewNop())
	ctx := context.Background()

	state := eng.Start("policy")
	assert.ErrorIs(t, eng.Apply(ctx, state, domain.Op(domain.OpAdd)), domain.ErrUnexpectedToken)

	// The numeric guard catches "0.0" as a zero denominator.
	require.NoError(t, eng.ApplyAll(ctx, state, domain.Digit('5'), domain.Op(domain.OpDivide)))
	require.NoError(t, eng.Runtime().AppendOperand(ctx, state, "0.0"))
	err := eng.Apply(ctx, state, domain.Equals)
	assert.ErrorIs(t, err, domain.ErrDivisionByZero)
	assert.Equal(t, domain.KindDivisionByZero, state.LastError)
}

func TestNewEngine_LogsEvaluations(t *testing.T) {
	var buf bytes.Buffer
	eng := NewEngine(config.Default(), logging.NewWithWriter(&buf, slog.LevelInfo))

	state := eng.Start("logged")
	require.NoError(t, eng.ApplyAll(context.Background(), state,
		domain.Digit('2'), domain.Op(domain.OpMultiply), domain.Digit('3'), domain.Equals,
	))

	assert.Contains(t, buf.String(), "evaluate")
	assert.Contains(t, buf.String(), "session_id=logged")
}

func TestNewLogger(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "warn"

	logger, err := NewLogger(cfg, false)
	require.NoError(t, err)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))

	logger, err = NewLogger(cfg, true)
	require.NoError(t, err)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))

	cfg.Log.Level = "loud"
	_, err = NewLogger(cfg, false)
	assert.Error(t, err)
}
