package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:         "stats",
	Short:       "Show record counts",
	Annotations: storageAnnotation(),
	RunE:        runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if statsService == nil {
		return errors.New("stats service not configured")
	}

	stats, err := statsService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	cmd.Printf("Database: %s\n\n", storagePath)
	cmd.Printf("  Chats:           %d\n", stats.Chats)
	cmd.Printf("  Messages:        %d\n", stats.Messages)
	cmd.Printf("  Confirmed steps: %d\n", stats.ConfirmedSteps)
	cmd.Printf("  Files:           %d\n", stats.Files)
	return nil
}
