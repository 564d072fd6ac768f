package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/chatstore/internal/core/domain"
)

// MessageStore persists chat messages.
type MessageStore interface {
	// AddMessage inserts a message. Fails with domain.ErrConstraint if the ID exists.
	AddMessage(ctx context.Context, msg *domain.Message) error

	// GetMessageByID retrieves a message by ID.
	// Returns nil and no error if the message does not exist.
	GetMessageByID(ctx context.Context, id string) (*domain.Message, error)

	// GetMessagesByIDs retrieves the messages that exist among ids.
	// Result order is unspecified. An empty ids returns an empty slice
	// without touching storage, so it succeeds even on a closed store.
	GetMessagesByIDs(ctx context.Context, ids []string) ([]domain.Message, error)

	// GetMessagesByChatID returns a chat's messages, most recent first.
	// Messages sharing a timestamp are ordered by ID descending.
	GetMessagesByChatID(ctx context.Context, chatID string, page domain.Page) ([]domain.Message, error)

	// DeleteOldMessages removes messages created strictly before maxDate.
	DeleteOldMessages(ctx context.Context, maxDate time.Time) (int64, error)

	// DeleteMessagesByChatID removes every message of a chat.
	DeleteMessagesByChatID(ctx context.Context, chatID string) (int64, error)
}
