package ports

import (
	"context"

	"github.com/aretw0/abacus/pkg/domain"
)

// StateStore keeps calculator sessions between requests.
// Saved and loaded states never alias the caller's value.
type StateStore interface {
	// Save replaces whatever is stored under sessionID.
	Save(ctx context.Context, sessionID string, state *domain.State) error

	// Load fails with domain.ErrSessionNotFound for unknown or expired ids.
	Load(ctx context.Context, sessionID string) (*domain.State, error)

	// Delete is a no-op for unknown ids.
	Delete(ctx context.Context, sessionID string) error

	// List returns the ids currently held, in no guaranteed order.
	List(ctx context.Context) ([]string, error)
}
