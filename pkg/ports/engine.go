package ports

import (
	"context"

	"github.com/aretw0/abacus/pkg/domain"
)

// Engine is the calculator core as seen by adapters (HTTP, MCP, runners).
// Adapters own the state lifecycle and hand it to the engine per event.
type Engine interface {
	// Start creates the empty state for a new session.
	Start(sessionID string) *domain.State

	// Apply forwards one input event, mutating state in place.
	Apply(ctx context.Context, state *domain.State, ev domain.Event) error

	// View renders the state for presentation, folding in a rejection from Apply.
	View(state *domain.State, err error) domain.View
}
