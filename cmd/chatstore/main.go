package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/chatstore/internal/adapters/driven/blob/filesystem"
	"github.com/custodia-labs/chatstore/internal/adapters/driven/config/file"
	"github.com/custodia-labs/chatstore/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/chatstore/internal/adapters/driving/cli"
	"github.com/custodia-labs/chatstore/internal/core/services"
	"github.com/custodia-labs/chatstore/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file; a missing file is normal.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Error("failed to load .env file: %v", err)
	}

	configStore, err := file.NewConfigStore("")
	if err != nil {
		logger.Error("failed to load configuration: %v", err)
		os.Exit(1)
	}
	settingsService := services.NewSettingsService(configStore)

	cli.SetSettingsService(settingsService)
	cli.SetOpener(func(ctx context.Context, dbPath string) (*cli.Services, error) {
		settings, err := settingsService.Get()
		if err != nil {
			return nil, err
		}
		if dbPath != "" {
			settings.Storage.Path = dbPath
		}

		store, err := sqlite.New(sqlite.Config{
			Path:    settings.Storage.Path,
			Pragmas: settings.Storage.Pragmas,
		})
		if err != nil {
			return nil, err
		}
		blobs, err := filesystem.NewBlobStore(settings.Files.ContentDir)
		if err != nil {
			return nil, err
		}
		if err := store.Open(ctx); err != nil {
			return nil, err
		}

		return &cli.Services{
			Chats:     services.NewChatService(store, store),
			Files:     services.NewFileService(store, blobs),
			Retention: services.NewRetention(settings.Retention, store, blobs),
			Stats:     store,
			Path:      store.Path(),
			Close:     store.Close,
		}, nil
	})

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
