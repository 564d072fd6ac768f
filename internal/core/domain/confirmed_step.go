package domain

import "time"

// ConfirmedStep records that a workflow step was confirmed by a message.
// Records are append-only: inserted, never updated, purged by age.
type ConfirmedStep struct {
	ID        string
	ThreadID  string
	MessageID string
	Scene     string
	Step      string
	CreatedAt time.Time
}
