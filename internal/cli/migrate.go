package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"learnlog/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [version]",
	Short: "Run database migrations",
	Long: `Run database migrations.

Without arguments, runs all pending migrations (up).
With a version number, migrates to that specific version (up or down as needed).

Examples:
  learnlog migrate      # Run all pending migrations
  learnlog migrate 1    # Migrate to version 1
  learnlog migrate 0    # Rollback all migrations`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	target := -1
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 0 {
			return fmt.Errorf("invalid version %q", args[0])
		}
		target = v
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrate.To(ctx, db, target); err != nil {
		return err
	}

	version, _, err := migrate.CurrentVersion(ctx, db)
	if err != nil {
		return err
	}
	fmt.Printf("Database at version %d\n", version)
	return nil
}
