package driven

import (
	"context"
	"io"
	"time"

	"github.com/custodia-labs/chatstore/internal/core/domain"
)

// FileStore persists file metadata. File content is handled by a BlobStore.
type FileStore interface {
	// AddFile inserts file metadata. Fails with domain.ErrConstraint if the ID exists.
	AddFile(ctx context.Context, file *domain.FileMeta) error

	// GetFileByID retrieves file metadata by ID.
	// Returns nil and no error if the file does not exist.
	GetFileByID(ctx context.Context, id string) (*domain.FileMeta, error)

	// GetFilesByIDs retrieves the files that exist among ids.
	// Result order is unspecified. An empty ids returns an empty slice
	// without touching storage, so it succeeds even on a closed store.
	GetFilesByIDs(ctx context.Context, ids []string) ([]domain.FileMeta, error)

	// DeleteFileByID removes file metadata and returns it as it was.
	// Returns nil and no error if the file does not exist.
	DeleteFileByID(ctx context.Context, id string) (*domain.FileMeta, error)

	// DeleteOldFiles removes files created strictly before maxDate and
	// returns their IDs so the caller can remove the content too.
	DeleteOldFiles(ctx context.Context, maxDate time.Time) ([]string, error)
}

// BlobStore removes stored file content.
type BlobStore interface {
	// Put writes the content for a file ID and returns the bytes written.
	// Existing content for the ID is replaced.
	Put(ctx context.Context, fileID string, r io.Reader) (int64, error)

	// Delete removes the content for a file ID.
	// Deleting content that does not exist is not an error.
	Delete(ctx context.Context, fileID string) error
}
