package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chatstore/internal/core/domain"
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete old records",
	Long: `Deletes messages, confirmed steps and files older than a cutoff.

Without flags the configured retention ages are used. --before and
--older-than apply one cutoff to every kind. File content is removed
along with its metadata.`,
	Annotations: storageAnnotation(),
	Args:        cobra.NoArgs,
	RunE:        runPurge,
}

// Flags for the purge command.
var (
	purgeBefore    string
	purgeOlderThan time.Duration
	purgeYes       bool
)

func init() {
	purgeCmd.Flags().StringVar(&purgeBefore, "before", "", "Delete records created before this time (RFC 3339 or YYYY-MM-DD)")
	purgeCmd.Flags().DurationVar(&purgeOlderThan, "older-than", 0, "Delete records older than this duration (e.g. 720h)")
	purgeCmd.Flags().BoolVarP(&purgeYes, "yes", "y", false, "Do not ask for confirmation")
	purgeCmd.MarkFlagsMutuallyExclusive("before", "older-than")
	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, _ []string) error {
	if retentionService == nil {
		return errors.New("retention service not configured")
	}

	cutoff, err := purgeCutoff(time.Now())
	if err != nil {
		return err
	}

	prompt := "Delete records older than the configured retention ages?"
	if !cutoff.IsZero() {
		prompt = fmt.Sprintf("Delete every record created before %s?", cutoff.Format(time.RFC3339))
	}
	if !purgeYes {
		if !stdinIsTerminal() {
			return errors.New("refusing to purge without --yes when stdin is not a terminal")
		}
		if !confirm(cmd, prompt) {
			cmd.Println("Aborted.")
			return nil
		}
	}

	var report *domain.PurgeReport
	if cutoff.IsZero() {
		report, err = retentionService.RunOnce(cmd.Context())
	} else {
		report, err = retentionService.PurgeBefore(cmd.Context(), cutoff)
	}
	if report != nil {
		printPurgeReport(cmd, report)
	}
	if err != nil {
		return fmt.Errorf("purge incomplete: %w", err)
	}
	return nil
}

// purgeCutoff resolves the flags to a cutoff. A zero time means the
// configured ages apply.
func purgeCutoff(now time.Time) (time.Time, error) {
	switch {
	case purgeBefore != "":
		return parseTime(purgeBefore)
	case purgeOlderThan < 0:
		return time.Time{}, errors.New("--older-than must not be negative")
	case purgeOlderThan > 0:
		return now.Add(-purgeOlderThan), nil
	default:
		return time.Time{}, nil
	}
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q: use RFC 3339 or YYYY-MM-DD", s)
}

func printPurgeReport(cmd *cobra.Command, report *domain.PurgeReport) {
	cmd.Printf("Purged %d records:\n", report.Total())
	cmd.Printf("  Messages:        %d\n", report.MessagesDeleted)
	cmd.Printf("  Confirmed steps: %d\n", report.StepsDeleted)
	cmd.Printf("  Files:           %d\n", len(report.FileIDs))
	if report.BlobErrors > 0 {
		cmd.Printf("  File content left behind: %d (see --verbose output)\n", report.BlobErrors)
	}
}
