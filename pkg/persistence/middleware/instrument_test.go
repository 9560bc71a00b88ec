package middleware_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/persistence/middleware"
	"github.com/aretw0/abacus/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	op  string
	err error
}

func TestInstrumentMiddleware(t *testing.T) {
	var seen []observation
	store := middleware.Chain(NewMockStore(), middleware.NewInstrumentMiddleware(
		middleware.ObserverFunc(func(op string, d time.Duration, err error) {
			assert.GreaterOrEqual(t, d, time.Duration(0))
			seen = append(seen, observation{op, err})
		}),
	))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", domain.NewState("s1")))
	_, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	_, err = store.Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = store.List(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "s1"))

	require.Len(t, seen, 5)
	assert.Equal(t, []string{"save", "load", "load", "list", "delete"},
		[]string{seen[0].op, seen[1].op, seen[2].op, seen[3].op, seen[4].op})
	assert.ErrorIs(t, seen[2].err, domain.ErrSessionNotFound)
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	mock := NewMockStore()
	store := middleware.Chain(mock, middleware.NewLoggingMiddleware(logger))
	ctx := context.Background()

	_, err := store.Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Contains(t, buf.String(), "level=DEBUG msg=\"store operation\" op=load")
	assert.NotContains(t, buf.String(), "WARN")

	mock.broken = true
	assert.ErrorIs(t, store.Save(ctx, "s1", domain.NewState("s1")), errBroken)
	assert.Contains(t, buf.String(), "level=WARN msg=\"store operation failed\" op=save")
}

func TestChain_Order(t *testing.T) {
	var order []string
	tag := func(name string) middleware.Middleware {
		return middleware.NewInstrumentMiddleware(middleware.ObserverFunc(func(op string, d time.Duration, err error) {
			order = append(order, name)
		}))
	}

	store := middleware.Chain(NewMockStore(), tag("outer"), tag("inner"))
	_, _ = store.List(context.Background())

	// The inner decorator finishes first.
	assert.Equal(t, []string{"inner", "outer"}, order)
}

func TestChain_ContractHolds(t *testing.T) {
	store := middleware.Chain(NewMockStore(), middleware.NewLoggingMiddleware(slog.New(slog.DiscardHandler)))
	ports.RunStateStoreContract(t, store)
}
