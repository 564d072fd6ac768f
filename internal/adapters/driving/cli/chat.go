package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chatstore/internal/core/domain"
)

const timeLayout = "2006-01-02 15:04:05"

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Manage chats",
	Long:  `Create, view, list, rename or delete chats.`,
}

var chatAddCmd = &cobra.Command{
	Use:         "add [name]",
	Short:       "Create a chat",
	Args:        cobra.ExactArgs(1),
	Annotations: storageAnnotation(),
	RunE:        runChatAdd,
}

var chatGetCmd = &cobra.Command{
	Use:         "get [chat-id]",
	Short:       "Show a chat",
	Args:        cobra.ExactArgs(1),
	Annotations: storageAnnotation(),
	RunE:        runChatGet,
}

var chatListCmd = &cobra.Command{
	Use:         "list [creator-id]",
	Short:       "List a creator's chats, most recent first",
	Args:        cobra.ExactArgs(1),
	Annotations: storageAnnotation(),
	RunE:        runChatList,
}

var chatRenameCmd = &cobra.Command{
	Use:         "rename [chat-id] [name]",
	Short:       "Rename a chat",
	Args:        cobra.ExactArgs(2),
	Annotations: storageAnnotation(),
	RunE:        runChatRename,
}

var chatDeleteCmd = &cobra.Command{
	Use:         "delete [chat-id]",
	Short:       "Delete a chat and its messages",
	Args:        cobra.ExactArgs(1),
	Annotations: storageAnnotation(),
	RunE:        runChatDelete,
}

// Flags for chat commands.
var (
	chatCreator string
	chatOffset  int
	chatLimit   int
)

func init() {
	chatAddCmd.Flags().StringVarP(&chatCreator, "creator", "c", "", "Creator user ID")
	_ = chatAddCmd.MarkFlagRequired("creator")
	chatListCmd.Flags().IntVar(&chatOffset, "offset", 0, "Number of chats to skip")
	chatListCmd.Flags().IntVar(&chatLimit, "limit", domain.DefaultChatPageLimit, "Maximum number of chats")

	chatCmd.AddCommand(chatAddCmd)
	chatCmd.AddCommand(chatGetCmd)
	chatCmd.AddCommand(chatListCmd)
	chatCmd.AddCommand(chatRenameCmd)
	chatCmd.AddCommand(chatDeleteCmd)
	rootCmd.AddCommand(chatCmd)
}

func runChatAdd(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	chat, err := chatService.Create(cmd.Context(), args[0], chatCreator)
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}

	cmd.Printf("Created chat: %s\n", chat.ID)
	return nil
}

func runChatGet(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	chat, err := chatService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get chat: %w", err)
	}
	if chat == nil {
		return fmt.Errorf("chat not found: %s", args[0])
	}

	printChat(cmd, chat)
	return nil
}

func runChatList(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	creatorID := args[0]
	page, err := chatService.ListByCreator(cmd.Context(), creatorID, domain.Page{Offset: chatOffset, Limit: chatLimit})
	if err != nil {
		return fmt.Errorf("failed to list chats: %w", err)
	}

	if len(page.Chats) == 0 {
		cmd.Printf("No chats found for creator: %s\n", creatorID)
		return nil
	}

	cmd.Printf("Chats for creator %s:\n\n", creatorID)
	for i := range page.Chats {
		c := &page.Chats[i]
		cmd.Printf("  %s  %s  %s\n", c.ID, c.CreatedAt.Local().Format(timeLayout), c.Name)
	}
	cmd.Println()
	cmd.Printf("Showing %d of %d chats\n", len(page.Chats), page.Total)
	return nil
}

func runChatRename(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	chat, err := chatService.Rename(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to rename chat: %w", err)
	}
	if chat == nil {
		return fmt.Errorf("chat not found: %s", args[0])
	}

	cmd.Printf("Renamed chat %s to %q\n", chat.ID, chat.Name)
	return nil
}

func runChatDelete(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	chat, n, err := chatService.Delete(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	if chat == nil {
		cmd.Printf("Chat not found: %s (removed %d orphaned messages)\n", args[0], n)
		return nil
	}

	cmd.Printf("Deleted chat %s and %d messages\n", chat.ID, n)
	return nil
}

func printChat(cmd *cobra.Command, chat *domain.Chat) {
	cmd.Printf("Chat: %s\n\n", chat.ID)
	cmd.Printf("  Name:     %s\n", chat.Name)
	cmd.Printf("  Creator:  %s\n", chat.CreatorID)
	cmd.Printf("  Created:  %s\n", chat.CreatedAt.Local().Format(timeLayout))
}
