// Package cli implements the chatstore command line.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chatstore/internal/core/ports/driving"
	"github.com/custodia-labs/chatstore/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

// annotationStorage marks commands that need an open store.
const annotationStorage = "storage"

// Services holds the storage-backed services a command runs against.
type Services struct {
	Chats     driving.ChatService
	Files     driving.FileService
	Retention driving.RetentionService
	Stats     driving.StatsService

	// Path is the database location, for display.
	Path string

	// Close releases the store. May be nil.
	Close func() error
}

// Opener connects storage once flags are parsed. dbPath overrides the
// configured location when non-empty.
type Opener func(ctx context.Context, dbPath string) (*Services, error)

// Global flags.
var (
	verbose bool
	dbPath  string
)

// Injected dependencies.
var (
	settingsService driving.SettingsService
	opener          Opener
)

// Set while a storage command runs.
var (
	chatService      driving.ChatService
	fileService      driving.FileService
	retentionService driving.RetentionService
	statsService     driving.StatsService
	storagePath      string
	closeStorage     func() error
)

var rootCmd = &cobra.Command{
	Use:   "chatstore",
	Short: "Inspect and maintain the chat database",
	Long: `chatstore manages the embedded SQLite database that holds chats,
messages, confirmed workflow steps and file metadata.`,
	SilenceUsage:       true,
	PersistentPreRunE:  openStorage,
	PersistentPostRunE: closeStorageServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database file (overrides storage.path)")
}

// SetSettingsService injects the settings service.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetOpener injects the storage opener used by storage commands.
func SetOpener(o Opener) {
	opener = o
}

// Execute runs the root command with ctx. Storage is closed even when
// the command fails, since cobra skips post-run hooks on error.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	return errors.Join(err, closeStorageServices(rootCmd, nil))
}

func needsStorage(cmd *cobra.Command) bool {
	return cmd.Annotations[annotationStorage] == "true"
}

func storageAnnotation() map[string]string {
	return map[string]string{annotationStorage: "true"}
}

func openStorage(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if !needsStorage(cmd) {
		return nil
	}
	if opener == nil {
		return errors.New("storage not configured")
	}

	svc, err := opener(cmd.Context(), dbPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}

	chatService = svc.Chats
	fileService = svc.Files
	retentionService = svc.Retention
	statsService = svc.Stats
	storagePath = svc.Path
	closeStorage = svc.Close
	logger.Debug("storage opened at %s", svc.Path)
	return nil
}

func closeStorageServices(_ *cobra.Command, _ []string) error {
	closeFn := closeStorage
	chatService, fileService, retentionService, statsService = nil, nil, nil, nil
	storagePath, closeStorage = "", nil

	if closeFn == nil {
		return nil
	}
	if err := closeFn(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}
	return nil
}
