package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <csv-file>",
	Short: "Bulk-import log entries from a CSV export",
	Long: `Import historical study logs from a CSV file.

The header row names the columns; date and duration are required. Durations
accept "1.5h", "45min" or plain minutes. Rows are attached to the stage
whose lifetime contains their date, and every touched stage is rebuilt.

Example:
  learnlog import --user 4f6c... history.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var importUserID string

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVarP(&importUserID, "user", "u", "", "Owner user id")
	_ = importCmd.MarkFlagRequired("user")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open csv file: %w", err)
	}
	defer file.Close()

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	exporter := newExporter(ctx)
	defer func() { _ = exporter.Close(context.Background()) }()

	a := buildApp(db, exporter)
	result, err := a.importer.ImportCSV(ctx, importUserID, file)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d rows; rebuilt %d stage(s)\n", result.Rows, len(result.Stages))
	return nil
}
