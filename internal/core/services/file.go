package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/chatstore/internal/core/domain"
	"github.com/custodia-labs/chatstore/internal/core/ports/driven"
	"github.com/custodia-labs/chatstore/internal/core/ports/driving"
	"github.com/custodia-labs/chatstore/internal/logger"
)

// Ensure FileService implements the interface.
var _ driving.FileService = (*FileService)(nil)

// FileService manages file metadata and content.
type FileService struct {
	files driven.FileStore
	blobs driven.BlobStore
	now   func() time.Time
}

// NewFileService creates a new file service. blobs may be nil when file
// content is not kept locally.
func NewFileService(files driven.FileStore, blobs driven.BlobStore) *FileService {
	return &FileService{
		files: files,
		blobs: blobs,
		now:   time.Now,
	}
}

// Register stores metadata for a new file with a generated ID.
func (s *FileService) Register(ctx context.Context, name, mimeType string, size int64) (*domain.FileMeta, error) {
	file := &domain.FileMeta{
		ID:        uuid.New().String(),
		Name:      name,
		Size:      size,
		MimeType:  mimeType,
		CreatedAt: s.now().UTC(),
	}
	if err := s.files.AddFile(ctx, file); err != nil {
		return nil, fmt.Errorf("registering file: %w", err)
	}
	return file, nil
}

// Upload writes content first and registers metadata once the size is
// known. Content is removed again if registration fails.
func (s *FileService) Upload(ctx context.Context, name, mimeType string, content io.Reader) (*domain.FileMeta, error) {
	if s.blobs == nil {
		return nil, fmt.Errorf("%w: no content store configured", domain.ErrInvalidInput)
	}

	id := uuid.New().String()
	size, err := s.blobs.Put(ctx, id, content)
	if err != nil {
		return nil, fmt.Errorf("writing content: %w", err)
	}

	file := &domain.FileMeta{
		ID:        id,
		Name:      name,
		Size:      size,
		MimeType:  mimeType,
		CreatedAt: s.now().UTC(),
	}
	if err := s.files.AddFile(ctx, file); err != nil {
		if delErr := s.blobs.Delete(ctx, id); delErr != nil {
			logger.Warn("files: removing orphaned content %s: %v", id, delErr)
		}
		return nil, fmt.Errorf("registering file: %w", err)
	}
	return file, nil
}

// Get retrieves file metadata by ID.
func (s *FileService) Get(ctx context.Context, id string) (*domain.FileMeta, error) {
	return s.files.GetFileByID(ctx, id)
}

// Delete removes metadata first, then content. A content failure is
// returned but the metadata stays deleted.
func (s *FileService) Delete(ctx context.Context, id string) (*domain.FileMeta, error) {
	file, err := s.files.DeleteFileByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("deleting file: %w", err)
	}
	if file == nil || s.blobs == nil {
		return file, nil
	}
	if err := s.blobs.Delete(ctx, id); err != nil {
		return file, fmt.Errorf("removing content of file %s: %w", id, err)
	}
	return file, nil
}
