package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chatstore/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/chatstore/internal/core/domain"
)

func newFileTestService(t *testing.T, blobs *mockBlobStore) *FileService {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Open(context.Background()))
	svc := NewFileService(store, blobs)
	if blobs == nil {
		svc.blobs = nil
	}
	svc.now = func() time.Time { return retentionNow }
	return svc
}

func TestFileService_RegisterAndGet(t *testing.T) {
	svc := newFileTestService(t, nil)
	ctx := context.Background()

	file, err := svc.Register(ctx, "a.png", "image/png", 42)
	require.NoError(t, err)
	require.NotNil(t, file)
	assert.NotEmpty(t, file.ID)
	assert.Equal(t, retentionNow, file.CreatedAt)

	got, err := svc.Get(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, file, got)
}

func TestFileService_Register_NegativeSize(t *testing.T) {
	svc := newFileTestService(t, nil)

	_, err := svc.Register(context.Background(), "a.png", "image/png", -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFileService_DeleteRemovesContent(t *testing.T) {
	blobs := &mockBlobStore{}
	svc := newFileTestService(t, blobs)
	ctx := context.Background()

	file, err := svc.Register(ctx, "a.txt", "text/plain", 1)
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, file.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.Equal(t, []string{file.ID}, blobs.Deleted())

	deleted, err = svc.Delete(ctx, file.ID)
	require.NoError(t, err)
	assert.Nil(t, deleted)
	assert.Len(t, blobs.Deleted(), 1)
}

func TestFileService_DeleteContentFailure(t *testing.T) {
	blobs := &mockBlobStore{failFor: map[string]bool{}}
	svc := newFileTestService(t, blobs)
	ctx := context.Background()

	file, err := svc.Register(ctx, "a.txt", "text/plain", 1)
	require.NoError(t, err)
	blobs.failFor[file.ID] = true

	deleted, err := svc.Delete(ctx, file.ID)
	require.Error(t, err)
	assert.NotNil(t, deleted)

	got, err := svc.Get(ctx, file.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileService_Upload(t *testing.T) {
	blobs := &mockBlobStore{}
	svc := newFileTestService(t, blobs)
	ctx := context.Background()

	file, err := svc.Upload(ctx, "notes.txt", "text/plain", strings.NewReader("hello"))
	require.NoError(t, err)
	require.NotNil(t, file)
	assert.Equal(t, int64(5), file.Size)
	assert.Equal(t, []byte("hello"), blobs.content[file.ID])

	got, err := svc.Get(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, file, got)
}

func TestFileService_Upload_Errors(t *testing.T) {
	ctx := context.Background()

	noBlobs := newFileTestService(t, nil)
	_, err := noBlobs.Upload(ctx, "a", "text/plain", strings.NewReader("x"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	failing := newFileTestService(t, &mockBlobStore{putErr: domain.ErrBusy})
	_, err = failing.Upload(ctx, "a", "text/plain", strings.NewReader("x"))
	assert.ErrorIs(t, err, domain.ErrBusy)
}

func TestFileService_Upload_ClosedStoreRemovesContent(t *testing.T) {
	blobs := &mockBlobStore{}
	svc := NewFileService(memory.NewStore(), blobs)

	_, err := svc.Upload(context.Background(), "a", "text/plain", strings.NewReader("x"))
	require.ErrorIs(t, err, domain.ErrNotOpen)
	assert.Len(t, blobs.Deleted(), 1)
}
