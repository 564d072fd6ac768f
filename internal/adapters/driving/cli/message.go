package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chatstore/internal/core/domain"
)

var messageCmd = &cobra.Command{
	Use:   "message",
	Short: "Inspect messages",
}

var messageListCmd = &cobra.Command{
	Use:         "list [chat-id]",
	Short:       "List a chat's messages, most recent first",
	Args:        cobra.ExactArgs(1),
	Annotations: storageAnnotation(),
	RunE:        runMessageList,
}

// Flags for message commands.
var (
	messageOffset int
	messageLimit  int
)

func init() {
	messageListCmd.Flags().IntVar(&messageOffset, "offset", 0, "Number of messages to skip")
	messageListCmd.Flags().IntVar(&messageLimit, "limit", domain.DefaultMessagePageLimit, "Maximum number of messages")

	messageCmd.AddCommand(messageListCmd)
	rootCmd.AddCommand(messageCmd)
}

func runMessageList(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	chatID := args[0]
	msgs, err := chatService.Messages(cmd.Context(), chatID, domain.Page{Offset: messageOffset, Limit: messageLimit})
	if err != nil {
		return fmt.Errorf("failed to list messages: %w", err)
	}

	if len(msgs) == 0 {
		cmd.Printf("No messages found for chat: %s\n", chatID)
		return nil
	}

	for i := range msgs {
		printMessage(cmd, &msgs[i])
	}
	cmd.Printf("Total: %d messages\n", len(msgs))
	return nil
}

func printMessage(cmd *cobra.Command, msg *domain.Message) {
	cmd.Printf("%s  %s  from %s\n", msg.ID, msg.CreatedAt.Local().Format(timeLayout), msg.SenderID)
	if msg.ReplyTo != nil {
		cmd.Printf("  Reply to: %s\n", *msg.ReplyTo)
	}
	if msg.ThreadID != nil {
		cmd.Printf("  Thread:   %s\n", *msg.ThreadID)
	}
	if msg.Scene != nil || msg.Step != nil {
		cmd.Printf("  Step:     %s/%s\n", deref(msg.Scene), deref(msg.Step))
	}
	cmd.Printf("  Body:     %s\n", compactJSON(msg.Body))
	if msg.ReplyRestriction != nil {
		cmd.Printf("  Restrict: %s\n", compactJSON(msg.ReplyRestriction))
	}
	cmd.Println()
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func compactJSON(v map[string]any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
