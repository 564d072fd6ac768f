package domain

import "time"

// PurgeReport summarises one retention run.
type PurgeReport struct {
	// StartedAt and EndedAt bound the run.
	StartedAt time.Time
	EndedAt   time.Time

	// MessagesDeleted is the number of purged messages.
	MessagesDeleted int64

	// StepsDeleted is the number of purged confirmed steps.
	StepsDeleted int64

	// FileIDs lists purged file metadata records.
	FileIDs []string

	// BlobErrors counts file contents that could not be removed.
	// Metadata for those files is already gone.
	BlobErrors int
}

// Total returns the number of records purged across all kinds.
func (r PurgeReport) Total() int64 {
	return r.MessagesDeleted + r.StepsDeleted + int64(len(r.FileIDs))
}

// Stats holds row counts per table.
type Stats struct {
	Chats          int64
	Messages       int64
	ConfirmedSteps int64
	Files          int64
}
