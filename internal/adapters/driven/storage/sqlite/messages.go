package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/chatstore/internal/core/domain"
	"github.com/custodia-labs/chatstore/internal/logger"
)

// ==================== Message Store ====================

// AddMessage inserts a new message. Body and ReplyRestriction are stored as JSON.
func (s *Store) AddMessage(ctx context.Context, msg *domain.Message) error {
	if msg == nil {
		return domain.ErrInvalidInput
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	body, err := encodeJSON(msg.Body)
	if err != nil {
		return fmt.Errorf("encoding message body: %w", err)
	}
	restriction, err := encodeJSON(msg.ReplyRestriction)
	if err != nil {
		return fmt.Errorf("encoding reply restriction: %w", err)
	}

	c, release, err := s.acquire()
	if err != nil {
		return err
	}
	defer release()

	if _, err := c.stmts.insertMessage.ExecContext(ctx,
		msg.ID, msg.ChatID, msg.SenderID,
		nullString(msg.ReplyTo), nullString(msg.ThreadID),
		nullString(msg.Scene), nullString(msg.Step),
		body, restriction, millis(msg.CreatedAt)); err != nil {
		return wrapErr("adding message", err)
	}
	return nil
}

// GetMessageByID retrieves a message by ID.
// Returns nil and no error if the message does not exist.
func (s *Store) GetMessageByID(ctx context.Context, id string) (*domain.Message, error) {
	c, release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	msg, err := scanMessage(c.stmts.getMessage.QueryRowContext(ctx, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("scanning message", err)
	}
	return msg, nil
}

// GetMessagesByIDs retrieves the messages that exist among ids, in no particular order.
// An empty ids list returns immediately without touching the database.
func (s *Store) GetMessagesByIDs(ctx context.Context, ids []string) ([]domain.Message, error) {
	if len(ids) == 0 {
		return []domain.Message{}, nil
	}

	idsJSON, err := encodeIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("encoding message ids: %w", err)
	}

	c, release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := c.stmts.getMessagesByIDs.QueryContext(ctx, idsJSON)
	if err != nil {
		return nil, wrapErr("querying messages", err)
	}
	msgs, err := scanAll(rows, scanMessage)
	if err != nil {
		return nil, wrapErr("scanning messages", err)
	}
	return msgs, nil
}

// GetMessagesByChatID returns a chat's messages ordered by creation time
// descending, then ID descending.
func (s *Store) GetMessagesByChatID(ctx context.Context, chatID string, page domain.Page) ([]domain.Message, error) {
	page = page.Normalise(domain.DefaultMessagePageLimit)

	c, release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := c.stmts.listMessagesByChat.QueryContext(ctx, chatID, page.Limit, page.Offset)
	if err != nil {
		return nil, wrapErr("querying messages", err)
	}
	msgs, err := scanAll(rows, scanMessage)
	if err != nil {
		return nil, wrapErr("scanning messages", err)
	}
	return msgs, nil
}

// DeleteOldMessages removes messages created strictly before maxDate.
func (s *Store) DeleteOldMessages(ctx context.Context, maxDate time.Time) (int64, error) {
	c, release, err := s.acquire()
	if err != nil {
		return 0, err
	}
	defer release()

	n, err := execCount(ctx, c.stmts.deleteOldMessages, millis(maxDate))
	if err != nil {
		return 0, wrapErr("deleting old messages", err)
	}
	logger.Debug("deleted %d messages older than %s", n, maxDate.Format(time.RFC3339))
	return n, nil
}

// DeleteMessagesByChatID removes every message of a chat.
func (s *Store) DeleteMessagesByChatID(ctx context.Context, chatID string) (int64, error) {
	c, release, err := s.acquire()
	if err != nil {
		return 0, err
	}
	defer release()

	n, err := execCount(ctx, c.stmts.deleteMessagesByChat, chatID)
	if err != nil {
		return 0, wrapErr("deleting chat messages", err)
	}
	return n, nil
}

// execCount runs a statement and returns the number of affected rows.
func execCount(ctx context.Context, stmt *sql.Stmt, args ...any) (int64, error) {
	res, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
