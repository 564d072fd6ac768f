package domain

import "time"

// Chat is a conversation. Its ID is unique and never changes after creation.
type Chat struct {
	// ID is the unique identifier for the chat.
	ID string

	// Name is the display name.
	Name string

	// CreatorID identifies the user who created the chat.
	CreatorID string

	// CreatedAt is when the chat was created.
	CreatedAt time.Time
}

// ChatUpdate is a partial update for a chat.
// Nil fields keep their stored value.
type ChatUpdate struct {
	Name      *string
	CreatorID *string
	CreatedAt *time.Time
}

// IsEmpty reports whether the update changes nothing.
func (u ChatUpdate) IsEmpty() bool {
	return u.Name == nil && u.CreatorID == nil && u.CreatedAt == nil
}
