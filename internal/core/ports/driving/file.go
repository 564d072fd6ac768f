package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/chatstore/internal/core/domain"
)

// FileService manages file metadata and the content kept alongside it.
type FileService interface {
	// Register stores metadata for a new file with a generated ID.
	Register(ctx context.Context, name, mimeType string, size int64) (*domain.FileMeta, error)

	// Upload writes content under a generated ID and registers its metadata.
	// The size is taken from the bytes written.
	Upload(ctx context.Context, name, mimeType string, content io.Reader) (*domain.FileMeta, error)

	// Get retrieves file metadata. Returns nil and no error if it does not exist.
	Get(ctx context.Context, id string) (*domain.FileMeta, error)

	// Delete removes file metadata and its content.
	// Returns nil and no error if the file does not exist.
	Delete(ctx context.Context, id string) (*domain.FileMeta, error)
}
