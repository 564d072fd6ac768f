package driving

import (
	"context"

	"github.com/custodia-labs/chatstore/internal/core/domain"
)

// StatsService reports how many records the store holds.
type StatsService interface {
	Stats(ctx context.Context) (*domain.Stats, error)
}
