package driving

import (
	"context"

	"github.com/custodia-labs/chatstore/internal/core/domain"
)

// ChatPage is one page of a creator's chats with the creator's total.
type ChatPage struct {
	Chats []domain.Chat
	Total int64
}

// ChatService manages chats and their messages.
type ChatService interface {
	// Create stores a new chat with a generated ID.
	Create(ctx context.Context, name, creatorID string) (*domain.Chat, error)

	// Get retrieves a chat. Returns nil and no error if it does not exist.
	Get(ctx context.Context, id string) (*domain.Chat, error)

	// ListByCreator returns one page of a creator's chats, most recent first.
	ListByCreator(ctx context.Context, creatorID string, page domain.Page) (*ChatPage, error)

	// Rename changes a chat's name. Returns nil and no error if it does not exist.
	Rename(ctx context.Context, id, name string) (*domain.Chat, error)

	// Delete removes a chat together with its messages.
	// Returns the removed chat, or nil if it did not exist, and the number
	// of messages removed.
	Delete(ctx context.Context, id string) (*domain.Chat, int64, error)

	// Messages returns one page of a chat's messages, most recent first.
	Messages(ctx context.Context, chatID string, page domain.Page) ([]domain.Message, error)
}
