package services

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/custodia-labs/chatstore/internal/core/domain"
	"github.com/custodia-labs/chatstore/internal/core/ports/driven"
	"github.com/custodia-labs/chatstore/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeyStoragePath     = "storage.path"
	KeyStoragePragmas  = "storage.pragmas"
	KeyRetentionEvery  = "retention.interval"
	KeyMessagesMaxAge  = "retention.messages_max_age"
	KeyStepsMaxAge     = "retention.steps_max_age"
	KeyFilesMaxAge     = "retention.files_max_age"
	KeyFilesContentDir = "files.content_dir"
)

// DBPathEnv overrides storage.path when set.
const DBPathEnv = "CHATSTORE_DB_PATH"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
	}
}

// Keys returns every configuration key the service understands.
func Keys() []string {
	return []string{
		KeyStoragePath,
		KeyStoragePragmas,
		KeyRetentionEvery,
		KeyMessagesMaxAge,
		KeyStepsMaxAge,
		KeyFilesMaxAge,
		KeyFilesContentDir,
	}
}

// Get retrieves current application settings.
// Missing or malformed values fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Storage: domain.StorageSettings{
			Path:    s.getString(KeyStoragePath, defaults.Storage.Path),
			Pragmas: s.getPragmas(defaults.Storage.Pragmas),
		},
		Retention: domain.RetentionSettings{
			Interval:       s.getDuration(KeyRetentionEvery, defaults.Retention.Interval),
			MessagesMaxAge: s.getDuration(KeyMessagesMaxAge, defaults.Retention.MessagesMaxAge),
			StepsMaxAge:    s.getDuration(KeyStepsMaxAge, defaults.Retention.StepsMaxAge),
			FilesMaxAge:    s.getDuration(KeyFilesMaxAge, defaults.Retention.FilesMaxAge),
		},
		Files: domain.FileSettings{
			ContentDir: s.getString(KeyFilesContentDir, defaults.Files.ContentDir),
		},
	}

	if path := os.Getenv(DBPathEnv); path != "" {
		settings.Storage.Path = path
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if settings == nil {
		return domain.ErrInvalidInput
	}
	for _, p := range settings.Storage.Pragmas {
		if err := validatePragma(p); err != nil {
			return err
		}
	}

	if err := s.configStore.Set(KeyStoragePath, settings.Storage.Path); err != nil {
		return fmt.Errorf("save storage path: %w", err)
	}
	if err := s.configStore.Set(KeyStoragePragmas, settings.Storage.Pragmas); err != nil {
		return fmt.Errorf("save storage pragmas: %w", err)
	}

	durations := []struct {
		key string
		val time.Duration
	}{
		{KeyRetentionEvery, settings.Retention.Interval},
		{KeyMessagesMaxAge, settings.Retention.MessagesMaxAge},
		{KeyStepsMaxAge, settings.Retention.StepsMaxAge},
		{KeyFilesMaxAge, settings.Retention.FilesMaxAge},
	}
	for _, d := range durations {
		if err := s.configStore.Set(d.key, d.val.String()); err != nil {
			return fmt.Errorf("save %s: %w", d.key, err)
		}
	}

	if err := s.configStore.Set(KeyFilesContentDir, settings.Files.ContentDir); err != nil {
		return fmt.Errorf("save files content_dir: %w", err)
	}

	return nil
}

// Set updates a single setting from its string form.
// Pragmas are given comma separated.
func (s *SettingsService) Set(key, value string) error {
	var stored any
	switch key {
	case KeyStoragePath, KeyFilesContentDir:
		stored = value
	case KeyStoragePragmas:
		pragmas := splitList(value)
		for _, p := range pragmas {
			if err := validatePragma(p); err != nil {
				return err
			}
		}
		stored = pragmas
	case KeyRetentionEvery, KeyMessagesMaxAge, KeyStepsMaxAge, KeyFilesMaxAge:
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			return fmt.Errorf("%w: %s must be a non-negative duration, got %q", domain.ErrInvalidInput, key, value)
		}
		stored = d.String()
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	val := s.configStore.GetDuration(key)
	if val < 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getPragmas(defaultVal []string) []string {
	val := s.configStore.GetStringSlice(KeyStoragePragmas)
	if len(val) == 0 {
		return defaultVal
	}
	for _, p := range val {
		if validatePragma(p) != nil {
			return defaultVal
		}
	}
	return val
}

func validatePragma(p string) error {
	if strings.TrimSpace(p) == "" || strings.Contains(p, ";") {
		return fmt.Errorf("%w: pragma %q", domain.ErrInvalidInput, p)
	}
	return nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
