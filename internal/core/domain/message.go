package domain

import "time"

// Message is a single chat message.
//
// Body is always present. ReplyRestriction is optional; nil means absent.
// Both are persisted as JSON text. On read, JSON numbers come back as
// json.Number so large integers are not rounded through float64.
type Message struct {
	// ID is the unique identifier for the message.
	ID string

	// ChatID links to the Chat the message belongs to. Not enforced.
	ChatID string

	// SenderID identifies the author.
	SenderID string

	// ReplyTo is the ID of the message being replied to, if any.
	ReplyTo *string

	// ThreadID groups messages of one workflow thread, if any.
	ThreadID *string

	// Scene and Step mark the workflow position the message was sent from.
	Scene *string
	Step  *string

	// Body is the structured message payload.
	Body map[string]any

	// ReplyRestriction limits how the message may be answered.
	ReplyRestriction map[string]any

	// CreatedAt is when the message was sent.
	CreatedAt time.Time
}

// Validate checks the invariants a message must satisfy before insert.
func (m *Message) Validate() error {
	if m.ID == "" || m.Body == nil {
		return ErrInvalidInput
	}
	return nil
}
