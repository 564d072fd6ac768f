package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chatstore/internal/core/domain"
)

func TestChatStore_AddAndGet(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t, Config{})

	chat := &domain.Chat{ID: "c1", Name: "General", CreatorID: "u1", CreatedAt: baseTime}
	require.NoError(t, store.AddChat(ctx, chat))

	got, err := store.GetChatByID(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *chat, *got)
}

func TestChatStore_AddTruncatesToMillis(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t, Config{})

	created := baseTime.Add(123 * time.Microsecond)
	require.NoError(t, store.AddChat(ctx, &domain.Chat{ID: "c1", CreatedAt: created}))

	got, err := store.GetChatByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, created.Truncate(time.Millisecond), got.CreatedAt)
}

func TestChatStore_AddDuplicate(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t, Config{})

	require.NoError(t, store.AddChat(ctx, &domain.Chat{ID: "c1", Name: "first"}))
	err := store.AddChat(ctx, &domain.Chat{ID: "c1", Name: "second"})
	assert.ErrorIs(t, err, domain.ErrConstraint)

	got, err := store.GetChatByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Name)
}

func TestChatStore_AddInvalid(t *testing.T) {
	store := setupTestStore(t, Config{})

	assert.ErrorIs(t, store.AddChat(context.Background(), nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.AddChat(context.Background(), &domain.Chat{}), domain.ErrInvalidInput)
}

func TestChatStore_GetNotFound(t *testing.T) {
	store := setupTestStore(t, Config{})

	got, err := store.GetChatByID(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestChatStore_PaginationAndCount(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t, Config{})

	for i := 0; i < 3; i++ {
		require.NoError(t, store.AddChat(ctx, &domain.Chat{
			ID:        fmt.Sprintf("c%d", i),
			Name:      fmt.Sprintf("chat %d", i),
			CreatorID: "u1",
			CreatedAt: baseTime.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, store.AddChat(ctx, &domain.Chat{ID: "other", CreatorID: "u2", CreatedAt: baseTime}))

	chats, err := store.GetChatsByCreatorID(ctx, "u1", domain.Page{Offset: 0, Limit: 2})
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, "c2", chats[0].ID)
	assert.Equal(t, "c1", chats[1].ID)

	rest, err := store.GetChatsByCreatorID(ctx, "u1", domain.Page{Offset: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "c0", rest[0].ID)

	count, err := store.CountChatsByCreatorID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestChatStore_DefaultPageLimit(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t, Config{})

	for i := 0; i < domain.DefaultChatPageLimit+5; i++ {
		require.NoError(t, store.AddChat(ctx, &domain.Chat{
			ID:        fmt.Sprintf("c%03d", i),
			CreatorID: "u1",
			CreatedAt: baseTime.Add(time.Duration(i) * time.Second),
		}))
	}

	chats, err := store.GetChatsByCreatorID(ctx, "u1", domain.Page{})
	require.NoError(t, err)
	assert.Len(t, chats, domain.DefaultChatPageLimit)
}

func TestChatStore_GetByCreatorEmpty(t *testing.T) {
	store := setupTestStore(t, Config{})

	chats, err := store.GetChatsByCreatorID(context.Background(), "nobody", domain.Page{})
	require.NoError(t, err)
	assert.NotNil(t, chats)
	assert.Empty(t, chats)
}

func TestChatStore_EditPartial(t *testing.T) {
	forEachMode(t, func(t *testing.T, store *Store) {
		ctx := context.Background()
		require.NoError(t, store.AddChat(ctx, &domain.Chat{ID: "c1", Name: "old", CreatorID: "u1", CreatedAt: baseTime}))

		got, err := store.EditChatByID(ctx, "c1", domain.ChatUpdate{Name: strPtr("new")})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, domain.Chat{ID: "c1", Name: "new", CreatorID: "u1", CreatedAt: baseTime}, *got)

		stored, err := store.GetChatByID(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, *got, *stored)
	})
}

func TestChatStore_EditAllFields(t *testing.T) {
	forEachMode(t, func(t *testing.T, store *Store) {
		ctx := context.Background()
		require.NoError(t, store.AddChat(ctx, &domain.Chat{ID: "c1", Name: "old", CreatorID: "u1", CreatedAt: baseTime}))

		later := baseTime.Add(time.Hour)
		got, err := store.EditChatByID(ctx, "c1", domain.ChatUpdate{
			Name:      strPtr("new"),
			CreatorID: strPtr("u2"),
			CreatedAt: &later,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.Chat{ID: "c1", Name: "new", CreatorID: "u2", CreatedAt: later}, *got)
	})
}

func TestChatStore_EditEmptyUpdate(t *testing.T) {
	forEachMode(t, func(t *testing.T, store *Store) {
		ctx := context.Background()
		chat := domain.Chat{ID: "c1", Name: "same", CreatorID: "u1", CreatedAt: baseTime}
		require.NoError(t, store.AddChat(ctx, &chat))

		got, err := store.EditChatByID(ctx, "c1", domain.ChatUpdate{})
		require.NoError(t, err)
		assert.Equal(t, chat, *got)
	})
}

func TestChatStore_EditNotFound(t *testing.T) {
	forEachMode(t, func(t *testing.T, store *Store) {
		got, err := store.EditChatByID(context.Background(), "missing", domain.ChatUpdate{Name: strPtr("x")})
		assert.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestChatStore_Delete(t *testing.T) {
	forEachMode(t, func(t *testing.T, store *Store) {
		ctx := context.Background()
		chat := domain.Chat{ID: "c1", Name: "General", CreatorID: "u1", CreatedAt: baseTime}
		require.NoError(t, store.AddChat(ctx, &chat))

		deleted, err := store.DeleteChatByID(ctx, "c1")
		require.NoError(t, err)
		require.NotNil(t, deleted)
		assert.Equal(t, chat, *deleted)

		got, err := store.GetChatByID(ctx, "c1")
		require.NoError(t, err)
		assert.Nil(t, got)

		again, err := store.DeleteChatByID(ctx, "c1")
		assert.NoError(t, err)
		assert.Nil(t, again)
	})
}

func TestChatStore_DeleteNotFound(t *testing.T) {
	forEachMode(t, func(t *testing.T, store *Store) {
		deleted, err := store.DeleteChatByID(context.Background(), "missing")
		assert.NoError(t, err)
		assert.Nil(t, deleted)
	})
}
