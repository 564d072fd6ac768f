package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/chatstore/internal/core/domain"
	"github.com/custodia-labs/chatstore/internal/core/ports/driven"
	"github.com/custodia-labs/chatstore/internal/core/ports/driving"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// ChatService manages chats and their messages.
type ChatService struct {
	chats    driven.ChatStore
	messages driven.MessageStore
	now      func() time.Time
}

// NewChatService creates a new chat service.
func NewChatService(chats driven.ChatStore, messages driven.MessageStore) *ChatService {
	return &ChatService{
		chats:    chats,
		messages: messages,
		now:      time.Now,
	}
}

// Create stores a new chat with a generated ID.
func (s *ChatService) Create(ctx context.Context, name, creatorID string) (*domain.Chat, error) {
	if strings.TrimSpace(creatorID) == "" {
		return nil, fmt.Errorf("%w: creator ID is required", domain.ErrInvalidInput)
	}

	chat := &domain.Chat{
		ID:        uuid.New().String(),
		Name:      name,
		CreatorID: creatorID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.chats.AddChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("creating chat: %w", err)
	}
	return chat, nil
}

// Get retrieves a chat by ID.
func (s *ChatService) Get(ctx context.Context, id string) (*domain.Chat, error) {
	return s.chats.GetChatByID(ctx, id)
}

// ListByCreator returns one page of a creator's chats with the creator's total.
func (s *ChatService) ListByCreator(ctx context.Context, creatorID string, page domain.Page) (*driving.ChatPage, error) {
	chats, err := s.chats.GetChatsByCreatorID(ctx, creatorID, page)
	if err != nil {
		return nil, fmt.Errorf("listing chats: %w", err)
	}
	total, err := s.chats.CountChatsByCreatorID(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("counting chats: %w", err)
	}
	return &driving.ChatPage{Chats: chats, Total: total}, nil
}

// Rename changes a chat's name.
func (s *ChatService) Rename(ctx context.Context, id, name string) (*domain.Chat, error) {
	return s.chats.EditChatByID(ctx, id, domain.ChatUpdate{Name: &name})
}

// Delete removes a chat and then its messages.
// Messages are removed even when the chat row is already gone.
func (s *ChatService) Delete(ctx context.Context, id string) (*domain.Chat, int64, error) {
	chat, err := s.chats.DeleteChatByID(ctx, id)
	if err != nil {
		return nil, 0, fmt.Errorf("deleting chat: %w", err)
	}
	n, err := s.messages.DeleteMessagesByChatID(ctx, id)
	if err != nil {
		return chat, 0, fmt.Errorf("deleting messages of chat %s: %w", id, err)
	}
	return chat, n, nil
}

// Messages returns one page of a chat's messages, most recent first.
func (s *ChatService) Messages(ctx context.Context, chatID string, page domain.Page) ([]domain.Message, error) {
	return s.messages.GetMessagesByChatID(ctx, chatID, page)
}
