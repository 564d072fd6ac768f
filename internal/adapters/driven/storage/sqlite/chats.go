package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/custodia-labs/chatstore/internal/core/domain"
)

// ==================== Chat Store ====================

// AddChat inserts a new chat.
func (s *Store) AddChat(ctx context.Context, chat *domain.Chat) error {
	if chat == nil || chat.ID == "" {
		return domain.ErrInvalidInput
	}

	c, release, err := s.acquire()
	if err != nil {
		return err
	}
	defer release()

	if _, err := c.stmts.insertChat.ExecContext(ctx,
		chat.ID, chat.Name, chat.CreatorID, millis(chat.CreatedAt)); err != nil {
		return wrapErr("adding chat", err)
	}
	return nil
}

// GetChatByID retrieves a chat by ID.
// Returns nil and no error if the chat does not exist.
func (s *Store) GetChatByID(ctx context.Context, id string) (*domain.Chat, error) {
	c, release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	return getChat(ctx, c.stmts.getChat, id)
}

// GetChatsByCreatorID returns a creator's chats ordered by creation time descending.
func (s *Store) GetChatsByCreatorID(ctx context.Context, creatorID string, page domain.Page) ([]domain.Chat, error) {
	page = page.Normalise(domain.DefaultChatPageLimit)

	c, release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := c.stmts.listChatsByCreator.QueryContext(ctx, creatorID, page.Limit, page.Offset)
	if err != nil {
		return nil, wrapErr("querying chats", err)
	}
	chats, err := scanAll(rows, scanChat)
	if err != nil {
		return nil, wrapErr("scanning chats", err)
	}
	return chats, nil
}

// CountChatsByCreatorID returns how many chats a creator owns.
func (s *Store) CountChatsByCreatorID(ctx context.Context, creatorID string) (int64, error) {
	c, release, err := s.acquire()
	if err != nil {
		return 0, err
	}
	defer release()

	var count int64
	if err := c.stmts.countChatsByCreator.QueryRowContext(ctx, creatorID).Scan(&count); err != nil {
		return 0, wrapErr("counting chats", err)
	}
	return count, nil
}

// EditChatByID updates the fields set in update and returns the result.
// Returns nil and no error if the chat does not exist.
func (s *Store) EditChatByID(ctx context.Context, id string, update domain.ChatUpdate) (*domain.Chat, error) {
	c, release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	args := []any{nullString(update.Name), nullString(update.CreatorID), nullMillis(update.CreatedAt), id}

	if c.returning {
		chat, err := scanChat(c.stmts.updateChatReturning.QueryRowContext(ctx, args...))
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, wrapErr("editing chat", err)
		}
		return chat, nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrapErr("beginning transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.StmtContext(ctx, c.stmts.updateChat).ExecContext(ctx, args...); err != nil {
		return nil, wrapErr("editing chat", err)
	}
	chat, err := getChat(ctx, tx.StmtContext(ctx, c.stmts.getChat), id)
	if err != nil || chat == nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, wrapErr("committing transaction", err)
	}
	return chat, nil
}

// DeleteChatByID removes a chat and returns it as it was.
// Returns nil and no error if the chat does not exist.
func (s *Store) DeleteChatByID(ctx context.Context, id string) (*domain.Chat, error) {
	c, release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	if c.returning {
		chat, err := scanChat(c.stmts.deleteChatReturning.QueryRowContext(ctx, id))
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, wrapErr("deleting chat", err)
		}
		return chat, nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrapErr("beginning transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	chat, err := getChat(ctx, tx.StmtContext(ctx, c.stmts.getChat), id)
	if err != nil || chat == nil {
		return nil, err
	}
	if _, err := tx.StmtContext(ctx, c.stmts.deleteChat).ExecContext(ctx, id); err != nil {
		return nil, wrapErr("deleting chat", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, wrapErr("committing transaction", err)
	}
	return chat, nil
}

func getChat(ctx context.Context, stmt *sql.Stmt, id string) (*domain.Chat, error) {
	chat, err := scanChat(stmt.QueryRowContext(ctx, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("scanning chat", err)
	}
	return chat, nil
}
