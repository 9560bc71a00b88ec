package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/abacus/internal/config"
	"github.com/aretw0/abacus/pkg/adapters/memory"
	"github.com/aretw0/abacus/pkg/adapters/redis"
	"github.com/aretw0/abacus/pkg/persistence/middleware"
	"github.com/aretw0/abacus/pkg/ports"
	"github.com/aretw0/abacus/pkg/session"
)

// OpenSessions builds the session manager for the configured store driver.
// Store operations are logged and then passed through mws.
// The returned close function releases the store connection.
func OpenSessions(ctx context.Context, cfg *config.Config, logger *slog.Logger, mws ...middleware.Middleware) (*session.Manager, func() error, error) {
	wrap := func(store ports.StateStore) ports.StateStore {
		return middleware.Chain(store, append([]middleware.Middleware{middleware.NewLoggingMiddleware(logger)}, mws...)...)
	}

	if cfg.Store.Driver != config.DriverRedis {
		store := memory.NewStore(memory.WithTTL(cfg.Store.Memory.TTL))
		mgr := session.NewManager(wrap(store), session.WithLogger(logger))
		return mgr, func() error { return nil }, nil
	}

	rc := cfg.Store.Redis
	opts := []redis.Option{redis.WithTTL(rc.TTL)}
	if rc.Prefix != "" {
		opts = append(opts, redis.WithPrefix(rc.Prefix))
	}
	store := redis.New(rc.Addr, rc.Password, rc.DB, opts...)
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", rc.Addr, err)
	}

	locker := redis.NewLocker(store.Client(), store.Prefix())
	mgr := session.NewManager(wrap(store),
		session.WithLocker(locker),
		session.WithLogger(logger),
	)
	logger.Debug("redis session store ready", "addr", rc.Addr, "prefix", store.Prefix(), "ttl", rc.TTL)
	return mgr, store.Close, nil
}
