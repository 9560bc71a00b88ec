package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/ports"
)

// Store operation names reported to observers and logs.
const (
	OpSave   = "save"
	OpLoad   = "load"
	OpDelete = "delete"
	OpList   = "list"
)

// StoreObserver receives the outcome of every store operation.
type StoreObserver interface {
	ObserveStore(op string, d time.Duration, err error)
}

// ObserverFunc adapts a function to StoreObserver.
type ObserverFunc func(op string, d time.Duration, err error)

func (f ObserverFunc) ObserveStore(op string, d time.Duration, err error) { f(op, d, err) }

type instrumented struct {
	next     ports.StateStore
	observer StoreObserver
	now      func() time.Time
}

// NewInstrumentMiddleware reports the duration and error of each operation to observer.
func NewInstrumentMiddleware(observer StoreObserver) Middleware {
	return func(next ports.StateStore) ports.StateStore {
		return &instrumented{next: next, observer: observer, now: time.Now}
	}
}

func (m *instrumented) observe(op string, start time.Time, err error) {
	m.observer.ObserveStore(op, m.now().Sub(start), err)
}

func (m *instrumented) Save(ctx context.Context, sessionID string, state *domain.State) error {
	start := m.now()
	err := m.next.Save(ctx, sessionID, state)
	m.observe(OpSave, start, err)
	return err
}

func (m *instrumented) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	start := m.now()
	state, err := m.next.Load(ctx, sessionID)
	m.observe(OpLoad, start, err)
	return state, err
}

func (m *instrumented) Delete(ctx context.Context, sessionID string) error {
	start := m.now()
	err := m.next.Delete(ctx, sessionID)
	m.observe(OpDelete, start, err)
	return err
}

func (m *instrumented) List(ctx context.Context) ([]string, error) {
	start := m.now()
	ids, err := m.next.List(ctx)
	m.observe(OpList, start, err)
	return ids, err
}

// NewLoggingMiddleware logs every operation at debug level and failures at warn.
// A missing session is an expected outcome and is not logged as a failure.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return NewInstrumentMiddleware(ObserverFunc(func(op string, d time.Duration, err error) {
		if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			logger.Warn("store operation failed", "op", op, "duration", d, "err", err)
			return
		}
		logger.Debug("store operation", "op", op, "duration", d)
	}))
}
