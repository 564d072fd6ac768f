package sqlite

import (
	"context"
	"time"

	"github.com/custodia-labs/chatstore/internal/core/domain"
	"github.com/custodia-labs/chatstore/internal/logger"
)

// ==================== Confirmed Step Store ====================

// AddConfirmedStep appends a confirmed step record.
func (s *Store) AddConfirmedStep(ctx context.Context, step *domain.ConfirmedStep) error {
	if step == nil || step.ID == "" {
		return domain.ErrInvalidInput
	}

	c, release, err := s.acquire()
	if err != nil {
		return err
	}
	defer release()

	if _, err := c.stmts.insertStep.ExecContext(ctx,
		step.ID, step.ThreadID, step.MessageID, step.Scene, step.Step,
		millis(step.CreatedAt)); err != nil {
		return wrapErr("adding confirmed step", err)
	}
	return nil
}

// GetConfirmedStepsByThreadID returns every record of a thread, most recent first.
func (s *Store) GetConfirmedStepsByThreadID(ctx context.Context, threadID string) ([]domain.ConfirmedStep, error) {
	c, release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := c.stmts.listStepsByThread.QueryContext(ctx, threadID)
	if err != nil {
		return nil, wrapErr("querying confirmed steps", err)
	}
	steps, err := scanAll(rows, scanConfirmedStep)
	if err != nil {
		return nil, wrapErr("scanning confirmed steps", err)
	}
	return steps, nil
}

// DeleteOldConfirmedSteps removes records created strictly before maxDate.
func (s *Store) DeleteOldConfirmedSteps(ctx context.Context, maxDate time.Time) (int64, error) {
	c, release, err := s.acquire()
	if err != nil {
		return 0, err
	}
	defer release()

	n, err := execCount(ctx, c.stmts.deleteOldSteps, millis(maxDate))
	if err != nil {
		return 0, wrapErr("deleting old confirmed steps", err)
	}
	logger.Debug("deleted %d confirmed steps older than %s", n, maxDate.Format(time.RFC3339))
	return n, nil
}
