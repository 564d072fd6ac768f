package cli

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chatstore/internal/core/domain"
)

const defaultMimeType = "application/octet-stream"

var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "Manage stored files",
}

var fileAddCmd = &cobra.Command{
	Use:         "add [path]",
	Short:       "Store a file and record its metadata",
	Args:        cobra.ExactArgs(1),
	Annotations: storageAnnotation(),
	RunE:        runFileAdd,
}

var fileGetCmd = &cobra.Command{
	Use:         "get [file-id]",
	Short:       "Show file metadata",
	Args:        cobra.ExactArgs(1),
	Annotations: storageAnnotation(),
	RunE:        runFileGet,
}

var fileDeleteCmd = &cobra.Command{
	Use:         "delete [file-id]",
	Short:       "Delete a file and its metadata",
	Args:        cobra.ExactArgs(1),
	Annotations: storageAnnotation(),
	RunE:        runFileDelete,
}

// fileMime is a flag for the add command.
var fileMime string

func init() {
	fileAddCmd.Flags().StringVar(&fileMime, "mime", "", "Content type (detected from the extension if empty)")

	fileCmd.AddCommand(fileAddCmd)
	fileCmd.AddCommand(fileGetCmd)
	fileCmd.AddCommand(fileDeleteCmd)
	rootCmd.AddCommand(fileCmd)
}

func runFileAdd(cmd *cobra.Command, args []string) error {
	if fileService == nil {
		return errors.New("file service not configured")
	}

	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	mimeType := fileMime
	if mimeType == "" {
		mimeType = detectMime(path)
	}

	file, err := fileService.Upload(cmd.Context(), filepath.Base(path), mimeType, f)
	if err != nil {
		return fmt.Errorf("failed to add file: %w", err)
	}

	cmd.Printf("Added file: %s (%d bytes, %s)\n", file.ID, file.Size, file.MimeType)
	return nil
}

func runFileGet(cmd *cobra.Command, args []string) error {
	if fileService == nil {
		return errors.New("file service not configured")
	}

	file, err := fileService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get file: %w", err)
	}
	if file == nil {
		return fmt.Errorf("file not found: %s", args[0])
	}

	printFile(cmd, file)
	return nil
}

func runFileDelete(cmd *cobra.Command, args []string) error {
	if fileService == nil {
		return errors.New("file service not configured")
	}

	file, err := fileService.Delete(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if file == nil {
		cmd.Printf("File not found: %s\n", args[0])
		return nil
	}

	cmd.Printf("Deleted file: %s\n", file.ID)
	return nil
}

func detectMime(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return defaultMimeType
}

func printFile(cmd *cobra.Command, file *domain.FileMeta) {
	cmd.Printf("File: %s\n\n", file.ID)
	cmd.Printf("  Name:     %s\n", file.Name)
	cmd.Printf("  Size:     %d bytes\n", file.Size)
	cmd.Printf("  Type:     %s\n", file.MimeType)
	cmd.Printf("  Created:  %s\n", file.CreatedAt.Local().Format(timeLayout))
}
