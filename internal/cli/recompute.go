package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute <stage-id>",
	Short: "Rebuild a stage's derived scores from its log entries",
	Long: `Drop and recompute every daily and weekly score of one stage.

The derived tables are a materialized view of the log entries; this command
re-syncs them after manual database surgery or a suspected inconsistency.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecompute,
}

func init() {
	rootCmd.AddCommand(recomputeCmd)
}

func runRecompute(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	exporter := newExporter(ctx)
	defer func() { _ = exporter.Close(context.Background()) }()

	a := buildApp(db, exporter)
	if err := a.records.RecomputeStage(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("Stage %s recomputed\n", args[0])
	return nil
}
