package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/chatstore/internal/core/domain"
	"github.com/custodia-labs/chatstore/internal/core/ports/driven"
	"github.com/custodia-labs/chatstore/internal/logger"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

const defaultContentDir = "files"

// BlobStore stores content at <dir>/<fileID>.
type BlobStore struct {
	dir string
}

// NewBlobStore creates a blob store rooted at dir.
// If dir is empty, uses ~/.chatstore/files.
func NewBlobStore(dir string) (*BlobStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".chatstore", defaultContentDir)
	}
	return &BlobStore{dir: dir}, nil
}

// Dir returns the content directory.
func (s *BlobStore) Dir() string {
	return s.dir
}

// Put writes content to a temporary file and renames it into place.
func (s *BlobStore) Put(ctx context.Context, fileID string, r io.Reader) (int64, error) {
	path, err := s.path(fileID)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return 0, fmt.Errorf("creating content directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+fileID+".*")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	n, copyErr := io.Copy(tmp, r)
	closeErr := tmp.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(tmp.Name())
		return 0, fmt.Errorf("writing content %s: %w", fileID, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return 0, fmt.Errorf("moving content %s into place: %w", fileID, err)
	}

	logger.Debug("blob: wrote %d bytes for %s", n, fileID)
	return n, nil
}

// Delete removes the content for fileID. Missing content is not an error.
func (s *BlobStore) Delete(ctx context.Context, fileID string) error {
	path, err := s.path(fileID)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing content %s: %w", fileID, err)
	}
	return nil
}

// path maps an ID to its file, rejecting IDs that would escape dir.
func (s *BlobStore) path(fileID string) (string, error) {
	if fileID == "" || fileID == "." || fileID == ".." ||
		strings.ContainsAny(fileID, `/\`) || strings.ContainsRune(fileID, 0) {
		return "", fmt.Errorf("%w: file ID %q", domain.ErrInvalidInput, fileID)
	}
	return filepath.Join(s.dir, fileID), nil
}
