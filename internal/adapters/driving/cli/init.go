package cli

import (
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database and schema",
	Long: `Opens the database, creating the file, tables and indexes if they
do not exist yet. Running it against an existing database is safe.`,
	Annotations: storageAnnotation(),
	RunE:        runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	// Opening the store already applied the schema.
	cmd.Printf("Database ready: %s\n", storagePath)
	return nil
}
