package driven

import (
	"context"

	"github.com/custodia-labs/chatstore/internal/core/domain"
)

// Storage is the persistence backend consumed by the application server.
type Storage interface {
	ChatStore
	MessageStore
	ConfirmedStepStore
	FileStore

	// Open connects to the backing store and prepares it for use.
	// Calling Open on an open store is a no-op.
	Open(ctx context.Context) error

	// Stats returns row counts per entity kind.
	Stats(ctx context.Context) (*domain.Stats, error)

	// Close releases the backing store. Calling Close on a closed store is a no-op.
	// Every other operation fails with domain.ErrNotOpen until Open is called again.
	Close() error
}
