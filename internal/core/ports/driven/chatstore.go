package driven

import (
	"context"

	"github.com/custodia-labs/chatstore/internal/core/domain"
)

// ChatStore persists chats.
type ChatStore interface {
	// AddChat inserts a chat. Fails with domain.ErrConstraint if the ID exists.
	AddChat(ctx context.Context, chat *domain.Chat) error

	// GetChatByID retrieves a chat by ID.
	// Returns nil and no error if the chat does not exist.
	GetChatByID(ctx context.Context, id string) (*domain.Chat, error)

	// GetChatsByCreatorID returns a creator's chats, most recent first.
	GetChatsByCreatorID(ctx context.Context, creatorID string, page domain.Page) ([]domain.Chat, error)

	// CountChatsByCreatorID returns the number of chats a creator owns.
	CountChatsByCreatorID(ctx context.Context, creatorID string) (int64, error)

	// EditChatByID applies a partial update and returns the updated chat.
	// Returns nil and no error if the chat does not exist.
	EditChatByID(ctx context.Context, id string, update domain.ChatUpdate) (*domain.Chat, error)

	// DeleteChatByID removes a chat and returns it as it was before deletion.
	// Returns nil and no error if the chat does not exist.
	DeleteChatByID(ctx context.Context, id string) (*domain.Chat, error)
}
