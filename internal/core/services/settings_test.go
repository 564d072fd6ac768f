package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chatstore/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/chatstore/internal/core/domain"
)

func TestNewSettingsService(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	t.Setenv(DBPathEnv, "")
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()

	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.Equal(t, service.GetDefaults(), *settings)
	assert.False(t, settings.Retention.IsEnabled())
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	t.Setenv(DBPathEnv, "")
	store := memory.NewConfigStore()
	_ = store.Set(KeyStoragePath, "/var/lib/chat.db")
	_ = store.Set(KeyStoragePragmas, []any{"journal_mode = DELETE"})
	_ = store.Set(KeyMessagesMaxAge, "720h")
	_ = store.Set(KeyRetentionEvery, "10m")
	_ = store.Set(KeyFilesContentDir, "/var/lib/files")

	service := NewSettingsService(store)
	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "/var/lib/chat.db", settings.Storage.Path)
	assert.Equal(t, []string{"journal_mode = DELETE"}, settings.Storage.Pragmas)
	assert.Equal(t, 720*time.Hour, settings.Retention.MessagesMaxAge)
	assert.Equal(t, 10*time.Minute, settings.Retention.Interval)
	assert.Equal(t, "/var/lib/files", settings.Files.ContentDir)
	assert.True(t, settings.Retention.IsEnabled())
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyStoragePragmas, []string{"journal_mode = WAL; DROP TABLE chats"})
	_ = store.Set(KeyRetentionEvery, "-5m")

	service := NewSettingsService(store)
	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPragmas, settings.Storage.Pragmas)
	assert.Equal(t, time.Hour, settings.Retention.Interval)
}

func TestSettingsService_Get_EnvOverridesPath(t *testing.T) {
	t.Setenv(DBPathEnv, "/tmp/override.db")
	store := memory.NewConfigStore()
	_ = store.Set(KeyStoragePath, "/var/lib/chat.db")

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Equal(t, "/tmp/override.db", settings.Storage.Path)
}

func TestSettingsService_Save_RoundTrip(t *testing.T) {
	t.Setenv(DBPathEnv, "")
	service := NewSettingsService(memory.NewConfigStore())

	in := domain.DefaultAppSettings()
	in.Storage.Path = "/data/chat.db"
	in.Retention.StepsMaxAge = 48 * time.Hour
	in.Files.ContentDir = "/data/files"

	require.NoError(t, service.Save(&in))

	out, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, in, *out)
}

func TestSettingsService_Save_Errors(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	assert.ErrorIs(t, service.Save(nil), domain.ErrInvalidInput)

	bad := domain.DefaultAppSettings()
	bad.Storage.Pragmas = []string{""}
	assert.ErrorIs(t, service.Save(&bad), domain.ErrInvalidInput)
}

func TestSettingsService_Set(t *testing.T) {
	t.Setenv(DBPathEnv, "")
	service := NewSettingsService(memory.NewConfigStore())

	require.NoError(t, service.Set(KeyFilesMaxAge, "24h"))
	require.NoError(t, service.Set(KeyStoragePragmas, "journal_mode = WAL, busy_timeout = 100"))
	require.NoError(t, service.Set(KeyStoragePath, "/x/chat.db"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, settings.Retention.FilesMaxAge)
	assert.Equal(t, []string{"journal_mode = WAL", "busy_timeout = 100"}, settings.Storage.Pragmas)
	assert.Equal(t, "/x/chat.db", settings.Storage.Path)
}

func TestSettingsService_Set_Rejects(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "search.mode", "hybrid"},
		{"bad duration", KeyMessagesMaxAge, "a week"},
		{"negative duration", KeyStepsMaxAge, "-1h"},
		{"pragma with semicolon", KeyStoragePragmas, "cache_size = 1; VACUUM"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.Set(tt.key, tt.value)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()
	assert.Len(t, keys, 7)
	assert.Contains(t, keys, KeyStoragePath)
	assert.Contains(t, keys, KeyFilesContentDir)
}
