package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/chatstore/internal/core/domain"
)

// ConfirmedStepStore persists the append-only workflow step audit trail.
type ConfirmedStepStore interface {
	// AddConfirmedStep appends a record.
	AddConfirmedStep(ctx context.Context, step *domain.ConfirmedStep) error

	// GetConfirmedStepsByThreadID returns all records of a thread, most recent first.
	GetConfirmedStepsByThreadID(ctx context.Context, threadID string) ([]domain.ConfirmedStep, error)

	// DeleteOldConfirmedSteps removes records created strictly before maxDate.
	DeleteOldConfirmedSteps(ctx context.Context, maxDate time.Time) (int64, error)
}
