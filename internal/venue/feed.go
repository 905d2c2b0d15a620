// Package venue holds the contract and shared plumbing for the per-venue
// WebSocket feed clients: the Feed interface, the lock-guarded quote book,
// and the reconnect backoff state.
package venue

import (
	"context"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

// Feed is the shared contract of a venue feed client. Run owns the
// connection for the life of the context: it connects, subscribes, listens,
// and reconnects with capped exponential backoff on any transport failure.
// Markets materializes the current snapshot; it returns
// domain.ErrNoMarketData while no instrument has a valid quote yet, which
// callers must treat as retryable.
type Feed interface {
	Name() domain.Venue
	Run(ctx context.Context) error
	Markets() ([]domain.VenueMarket, error)
}
