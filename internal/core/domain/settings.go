package domain

import "time"

// DefaultPragmas are the engine tuning directives applied at open time
// when none are configured. Each is executed verbatim as "PRAGMA <directive>".
var DefaultPragmas = []string{
	"journal_mode = WAL",
	"synchronous = NORMAL",
	"cache_size = -2000",
	"busy_timeout = 5000",
}

// StorageSettings configures the embedded database.
type StorageSettings struct {
	// Path is the database file. Empty means the default data directory.
	Path string

	// Pragmas overrides DefaultPragmas when non-empty.
	Pragmas []string
}

// RetentionSettings configures age-based purging.
// A zero MaxAge disables purging for that entity kind.
type RetentionSettings struct {
	// Interval is how often the retention task runs. Zero disables scheduling.
	Interval time.Duration

	MessagesMaxAge time.Duration
	StepsMaxAge    time.Duration
	FilesMaxAge    time.Duration
}

// IsEnabled returns true if at least one entity kind is purged.
func (r RetentionSettings) IsEnabled() bool {
	return r.MessagesMaxAge > 0 || r.StepsMaxAge > 0 || r.FilesMaxAge > 0
}

// FileSettings configures where file content is kept.
type FileSettings struct {
	// ContentDir holds one content file per FileMeta ID.
	ContentDir string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Storage   StorageSettings
	Retention RetentionSettings
	Files     FileSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// Retention is left disabled; nothing is purged unless configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Storage: StorageSettings{
			Pragmas: append([]string(nil), DefaultPragmas...),
		},
		Retention: RetentionSettings{
			Interval: time.Hour,
		},
	}
}
