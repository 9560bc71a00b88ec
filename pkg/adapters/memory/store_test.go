package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/abacus/pkg/adapters/memory"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunStateStoreContract(t, store)
}

func TestMemoryStore_ListSorted(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, store.Save(ctx, id, domain.NewState(id)))
	}

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestMemoryStore_TTL(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store := memory.NewStore(
		memory.WithTTL(time.Minute),
		memory.WithClock(func() time.Time { return now }),
	)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "idle", domain.NewState("idle")))
	require.NoError(t, store.Save(ctx, "busy", domain.NewState("busy")))

	now = now.Add(45 * time.Second)
	// Saving restarts the idle timer.
	require.NoError(t, store.Save(ctx, "busy", domain.NewState("busy")))

	now = now.Add(30 * time.Second)
	_, err := store.Load(ctx, "idle")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"busy"}, ids)

	now = now.Add(time.Minute)
	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestMemoryStore_NoTTLKeepsSessions(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "s", domain.NewState("s")))

	_, err := store.Load(ctx, "s")
	assert.NoError(t, err)
}
