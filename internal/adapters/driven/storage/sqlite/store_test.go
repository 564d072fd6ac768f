package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chatstore/internal/core/domain"
)

var baseTime = time.Date(2025, 3, 14, 9, 26, 53, 589_000_000, time.UTC)

// setupTestStore creates and opens a store in a temporary directory.
func setupTestStore(t *testing.T, cfg Config) *Store {
	t.Helper()

	if cfg.Path == "" {
		cfg.Path = filepath.Join(t.TempDir(), "chat.db")
	}
	store, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, store.Open(context.Background()))

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

// forEachMode runs fn against a store using DELETE ... RETURNING and
// against one forced onto the read-then-delete path.
func forEachMode(t *testing.T, fn func(t *testing.T, store *Store)) {
	t.Helper()
	t.Run("returning", func(t *testing.T) {
		store := setupTestStore(t, Config{})
		require.True(t, store.SupportsReturning())
		fn(t, store)
	})
	t.Run("fallback", func(t *testing.T) {
		store := setupTestStore(t, Config{DisableReturning: true})
		require.False(t, store.SupportsReturning())
		fn(t, store)
	})
}

func strPtr(s string) *string { return &s }

// ==================== Lifecycle Tests ====================

func TestNew_DefaultPath(t *testing.T) {
	store, err := New(Config{})
	require.NoError(t, err)

	assert.Contains(t, store.Path(), ".chatstore")
	assert.Equal(t, "chat.db", filepath.Base(store.Path()))
	assert.Equal(t, domain.DefaultPragmas, store.cfg.Pragmas)
}

func TestOpen_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "chat.db")

	store := setupTestStore(t, Config{Path: path})

	assert.Equal(t, path, store.Path())
	assert.FileExists(t, path)
	assert.NoError(t, store.conn.db.Ping())
}

func TestOpen_Idempotent(t *testing.T) {
	store := setupTestStore(t, Config{})
	first := store.conn

	require.NoError(t, store.Open(context.Background()))
	assert.Same(t, first, store.conn)
}

func TestOpen_AppliesDefaultPragmas(t *testing.T) {
	store := setupTestStore(t, Config{})

	var journalMode string
	require.NoError(t, store.conn.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	var busyTimeout int
	require.NoError(t, store.conn.db.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout))
	assert.Equal(t, 5000, busyTimeout)

	var synchronous int
	require.NoError(t, store.conn.db.QueryRow("PRAGMA synchronous").Scan(&synchronous))
	assert.Equal(t, 1, synchronous) // NORMAL

	var cacheSize int
	require.NoError(t, store.conn.db.QueryRow("PRAGMA cache_size").Scan(&cacheSize))
	assert.Equal(t, -2000, cacheSize)
}

func TestOpen_CustomPragmas(t *testing.T) {
	store := setupTestStore(t, Config{Pragmas: []string{"journal_mode = DELETE", "busy_timeout = 250"}})

	var journalMode string
	require.NoError(t, store.conn.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "delete", journalMode)

	var busyTimeout int
	require.NoError(t, store.conn.db.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout))
	assert.Equal(t, 250, busyTimeout)
}

func TestOpen_InvalidPragma(t *testing.T) {
	store, err := New(Config{
		Path:    filepath.Join(t.TempDir(), "chat.db"),
		Pragmas: []string{"journal_mode = WAL; DROP TABLE chats"},
	})
	require.NoError(t, err)

	err = store.Open(context.Background())
	assert.ErrorIs(t, err, domain.ErrOpen)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, store.conn)
}

func TestOpen_UnwritableLocation(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	store, err := New(Config{Path: filepath.Join(blocker, "sub", "chat.db")})
	require.NoError(t, err)

	err = store.Open(context.Background())
	assert.ErrorIs(t, err, domain.ErrOpen)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestOpen_ReopenKeepsDataAndSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "chat.db")

	store, err := New(Config{Path: path})
	require.NoError(t, err)
	require.NoError(t, store.Open(ctx))
	require.NoError(t, store.AddChat(ctx, &domain.Chat{ID: "c1", Name: "General", CreatorID: "u1", CreatedAt: baseTime}))
	require.NoError(t, store.Close())

	// Second open re-runs the schema against an existing file.
	require.NoError(t, store.Open(ctx))
	defer store.Close()

	chat, err := store.GetChatByID(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, chat)
	assert.Equal(t, "General", chat.Name)
}

func TestSchema_TablesAndIndexes(t *testing.T) {
	store := setupTestStore(t, Config{})

	rows, err := store.conn.db.Query(`SELECT type, name FROM sqlite_master
		WHERE name NOT LIKE 'sqlite_%' ORDER BY type, name`)
	require.NoError(t, err)
	defer rows.Close()

	var got []string
	for rows.Next() {
		var kind, name string
		require.NoError(t, rows.Scan(&kind, &name))
		got = append(got, kind+":"+name)
	}
	require.NoError(t, rows.Err())

	assert.Equal(t, []string{
		"index:idx_chats_creator",
		"index:idx_confirmed_steps_thread",
		"index:idx_files_created",
		"index:idx_messages_chat",
		"table:chats",
		"table:confirmed_steps",
		"table:files",
		"table:messages",
	}, got)
}

func TestClose_Idempotent(t *testing.T) {
	store, err := New(Config{Path: filepath.Join(t.TempDir(), "chat.db")})
	require.NoError(t, err)

	assert.NoError(t, store.Close()) // never opened
	require.NoError(t, store.Open(context.Background()))
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
	assert.False(t, store.SupportsReturning())
}

func TestOperations_AfterClose(t *testing.T) {
	ctx := context.Background()
	store, err := New(Config{Path: filepath.Join(t.TempDir(), "chat.db")})
	require.NoError(t, err)
	require.NoError(t, store.Open(ctx))
	require.NoError(t, store.Close())

	ops := map[string]func() error{
		"AddChat": func() error {
			return store.AddChat(ctx, &domain.Chat{ID: "c1"})
		},
		"GetChatByID": func() error {
			_, err := store.GetChatByID(ctx, "c1")
			return err
		},
		"GetChatsByCreatorID": func() error {
			_, err := store.GetChatsByCreatorID(ctx, "u1", domain.Page{})
			return err
		},
		"CountChatsByCreatorID": func() error {
			_, err := store.CountChatsByCreatorID(ctx, "u1")
			return err
		},
		"EditChatByID": func() error {
			_, err := store.EditChatByID(ctx, "c1", domain.ChatUpdate{Name: strPtr("x")})
			return err
		},
		"DeleteChatByID": func() error {
			_, err := store.DeleteChatByID(ctx, "c1")
			return err
		},
		"AddMessage": func() error {
			return store.AddMessage(ctx, &domain.Message{ID: "m1", Body: map[string]any{}})
		},
		"GetMessageByID": func() error {
			_, err := store.GetMessageByID(ctx, "m1")
			return err
		},
		"GetMessagesByIDs": func() error {
			_, err := store.GetMessagesByIDs(ctx, []string{"m1"})
			return err
		},
		"GetMessagesByChatID": func() error {
			_, err := store.GetMessagesByChatID(ctx, "c1", domain.Page{})
			return err
		},
		"DeleteOldMessages": func() error {
			_, err := store.DeleteOldMessages(ctx, baseTime)
			return err
		},
		"DeleteMessagesByChatID": func() error {
			_, err := store.DeleteMessagesByChatID(ctx, "c1")
			return err
		},
		"AddConfirmedStep": func() error {
			return store.AddConfirmedStep(ctx, &domain.ConfirmedStep{ID: "s1"})
		},
		"GetConfirmedStepsByThreadID": func() error {
			_, err := store.GetConfirmedStepsByThreadID(ctx, "t1")
			return err
		},
		"DeleteOldConfirmedSteps": func() error {
			_, err := store.DeleteOldConfirmedSteps(ctx, baseTime)
			return err
		},
		"AddFile": func() error {
			return store.AddFile(ctx, &domain.FileMeta{ID: "f1"})
		},
		"GetFileByID": func() error {
			_, err := store.GetFileByID(ctx, "f1")
			return err
		},
		"GetFilesByIDs": func() error {
			_, err := store.GetFilesByIDs(ctx, []string{"f1"})
			return err
		},
		"DeleteFileByID": func() error {
			_, err := store.DeleteFileByID(ctx, "f1")
			return err
		},
		"DeleteOldFiles": func() error {
			_, err := store.DeleteOldFiles(ctx, baseTime)
			return err
		},
		"Stats": func() error {
			_, err := store.Stats(ctx)
			return err
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, op(), domain.ErrNotOpen)
		})
	}
}

func TestOpenClose_Concurrent(t *testing.T) {
	ctx := context.Background()
	store, err := New(Config{Path: filepath.Join(t.TempDir(), "chat.db")})
	require.NoError(t, err)
	defer store.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				assert.NoError(t, store.Open(ctx))
				return
			}
			assert.NoError(t, store.Close())
		}(i)
	}
	wg.Wait()

	require.NoError(t, store.Open(ctx))
	_, err = store.CountChatsByCreatorID(ctx, "u1")
	assert.NoError(t, err)
}

func TestLockContention_ReturnsBusy(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "chat.db")

	holder := setupTestStore(t, Config{Path: path})
	waiter := setupTestStore(t, Config{
		Path:    path,
		Pragmas: []string{"journal_mode = WAL", "busy_timeout = 100"},
	})

	tx, err := holder.conn.db.BeginTx(ctx, nil)
	require.NoError(t, err)
	_, err = tx.ExecContext(ctx, `INSERT INTO chats (id, name, creatorID, createdAt) VALUES ('held', '', 'u1', 0)`)
	require.NoError(t, err)

	start := time.Now()
	err = waiter.AddChat(ctx, &domain.Chat{ID: "c1", CreatorID: "u1", CreatedAt: baseTime})
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, domain.ErrBusy)
	assert.NotErrorIs(t, err, domain.ErrConstraint)
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	assert.Less(t, elapsed, 2*time.Second)

	require.NoError(t, tx.Rollback())
	assert.NoError(t, waiter.AddChat(ctx, &domain.Chat{ID: "c1", CreatorID: "u1", CreatedAt: baseTime}))
}

func TestClassify(t *testing.T) {
	assert.Nil(t, classify(nil))
	assert.Nil(t, classify(errors.New("plain")))
}

func TestVersionAtLeast(t *testing.T) {
	tests := []struct {
		version string
		want    bool
	}{
		{"3.35.0", true},
		{"3.46.1", true},
		{"4.0.0", true},
		{"3.34.1", false},
		{"3.35", true},
		{"2.99.99", false},
		{"garbage", false},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			assert.Equal(t, tt.want, versionAtLeast(tt.version, returningMinVersion))
		})
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t, Config{})

	require.NoError(t, store.AddChat(ctx, &domain.Chat{ID: "c1", CreatedAt: baseTime}))
	require.NoError(t, store.AddMessage(ctx, &domain.Message{ID: "m1", Body: map[string]any{}}))
	require.NoError(t, store.AddMessage(ctx, &domain.Message{ID: "m2", Body: map[string]any{}}))
	require.NoError(t, store.AddFile(ctx, &domain.FileMeta{ID: "f1"}))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{Chats: 1, Messages: 2, ConfirmedSteps: 0, Files: 1}, *stats)
}
