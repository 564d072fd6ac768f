package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/chatstore/internal/core/services"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application settings",
	Long: `View and change storage, retention and file settings.

Settings are kept in config.toml under the chatstore config directory.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Change a single setting.

Available keys:
  storage.path                 - Database file
  storage.pragmas              - Comma separated PRAGMA directives
  retention.interval           - How often retention runs (e.g. 1h)
  retention.messages_max_age   - Purge messages older than this (0s disables)
  retention.steps_max_age      - Purge confirmed steps older than this
  retention.files_max_age      - Purge files older than this
  files.content_dir            - Directory holding file content`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Path: %s\n", orDefault(settings.Storage.Path))
	cmd.Println("  Pragmas:")
	for _, p := range settings.Storage.Pragmas {
		cmd.Printf("    %s\n", p)
	}
	cmd.Println()

	cmd.Println("[Retention]")
	if settings.Retention.IsEnabled() {
		cmd.Printf("  Interval: %s\n", settings.Retention.Interval)
	} else {
		cmd.Println("  Status: disabled")
	}
	cmd.Printf("  Messages max age: %s\n", formatMaxAge(settings.Retention.MessagesMaxAge))
	cmd.Printf("  Steps max age: %s\n", formatMaxAge(settings.Retention.StepsMaxAge))
	cmd.Printf("  Files max age: %s\n", formatMaxAge(settings.Retention.FilesMaxAge))
	cmd.Println()

	cmd.Println("[Files]")
	cmd.Printf("  Content dir: %s\n", orDefault(settings.Files.ContentDir))

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w\nvalid keys: %s",
			key, err, strings.Join(services.Keys(), ", "))
	}

	cmd.Printf("%s = %s\n", key, value)
	return nil
}

func orDefault(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}

func formatMaxAge(d time.Duration) string {
	if d <= 0 {
		return "keep forever"
	}
	return d.String()
}

// stdinIsTerminal is replaced in tests.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// confirm asks a yes/no question on the command's input.
// Only an explicit "y" or "yes" counts as agreement.
func confirm(cmd *cobra.Command, prompt string) bool {
	cmd.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(input))
	return answer == "y" || answer == "yes"
}
