package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/abacus/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		// 1. Create a state mid-computation with history and an error
		state := domain.NewState(sessionID)
		state.Sequence = append(state.Sequence,
			domain.Operand("5"),
			domain.OperatorToken(domain.OpDivide),
			domain.Operand("0"),
		)
		state.History = append(state.History, domain.HistoryEntry{
			OperandA: "7", Operator: domain.OpAdd, OperandB: "8", Result: 15,
		})
		state.LastError = domain.KindDivisionByZero

		// 2. Save
		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		// 3. Load
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sessionID, loaded.SessionID)
		assert.Equal(t, state.Sequence, loaded.Sequence)
		assert.Equal(t, state.History, loaded.History)
		assert.Equal(t, domain.KindDivisionByZero, loaded.LastError)
		assert.Equal(t, "5 / 0", loaded.Display())
	})

	t.Run("Isolation", func(t *testing.T) {
		state := domain.NewState(sessionID)
		state.Sequence = append(state.Sequence, domain.Operand("1"))
		require.NoError(t, store.Save(ctx, sessionID, state))

		// Mutating the caller's value after Save must not leak into the store.
		state.Sequence[0] = domain.Operand("9")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "1", loaded.Display())

		// Mutating a loaded value must not leak either.
		loaded.Sequence = append(loaded.Sequence, domain.OperatorToken(domain.OpAdd))
		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "1", again.Display())
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		// Setup
		err := store.Save(ctx, sessionID, domain.NewState(sessionID))
		require.NoError(t, err)

		// Delete
		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		// Verify gone
		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		// Setup: Create 2 sessions
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewState(id1))
		_ = store.Save(ctx, id2, domain.NewState(id2))

		// Ensure cleanup
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		// List
		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
