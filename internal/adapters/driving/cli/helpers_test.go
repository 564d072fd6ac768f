package cli

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chatstore/internal/adapters/driven/blob/filesystem"
	"github.com/custodia-labs/chatstore/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/chatstore/internal/core/domain"
	"github.com/custodia-labs/chatstore/internal/core/services"
)

// testEnv is the storage behind the services injected by setupTestServices.
type testEnv struct {
	store    *memory.Store
	blobs    *filesystem.BlobStore
	settings *services.SettingsService
	opened   int
	lastDB   string
}

// setupTestServices injects memory-backed services and resets flags.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()

	blobs, err := filesystem.NewBlobStore(t.TempDir())
	require.NoError(t, err)

	env := &testEnv{
		store:    memory.NewStore(),
		blobs:    blobs,
		settings: services.NewSettingsService(memory.NewConfigStore()),
	}

	prevSettings, prevOpener, prevTerminal := settingsService, opener, stdinIsTerminal
	SetSettingsService(env.settings)
	SetOpener(func(ctx context.Context, path string) (*Services, error) {
		env.opened++
		env.lastDB = path
		if err := env.store.Open(ctx); err != nil {
			return nil, err
		}
		retention := services.NewRetention(domain.RetentionSettings{}, env.store, env.blobs)
		return &Services{
			Chats:     services.NewChatService(env.store, env.store),
			Files:     services.NewFileService(env.store, env.blobs),
			Retention: retention,
			Stats:     env.store,
			Path:      ":memory:",
			Close:     env.store.Close,
		}, nil
	})
	stdinIsTerminal = func() bool { return false }
	resetFlags(rootCmd)

	t.Cleanup(func() {
		settingsService, opener, stdinIsTerminal = prevSettings, prevOpener, prevTerminal
		resetFlags(rootCmd)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	return env
}

// openForSeeding opens the memory store so tests can insert fixtures.
func (e *testEnv) openForSeeding(t *testing.T) *memory.Store {
	t.Helper()
	require.NoError(t, e.store.Open(context.Background()))
	return e.store
}

// resetFlags restores every flag of cmd and its children to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// executeCommand runs the CLI with args and returns combined output.
func executeCommand(args ...string) (string, error) {
	return executeCommandWithInput(nil, args...)
}

func executeCommandWithInput(in io.Reader, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	if in != nil {
		rootCmd.SetIn(in)
	}
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := Execute(context.Background())
	return buf.String(), err
}
