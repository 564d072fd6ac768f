package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/chatstore/internal/core/domain"
)

// RetentionService purges records older than their configured maximum age.
type RetentionService interface {
	// RunOnce purges everything older than the configured ages relative to now.
	RunOnce(ctx context.Context) (*domain.PurgeReport, error)

	// PurgeBefore purges every entity kind created strictly before cutoff,
	// ignoring the configured ages.
	PurgeBefore(ctx context.Context, cutoff time.Time) (*domain.PurgeReport, error)

	// Start runs RunOnce on the configured interval until ctx is cancelled
	// or Stop is called.
	Start(ctx context.Context) error

	// Stop ends a running Start loop and waits for an in-flight run.
	Stop() error
}
