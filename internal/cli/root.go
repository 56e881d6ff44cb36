// Package cli wires the learnlog commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "learnlog",
	Short: "Stage-anchored study tracking and scoring",
	Long: `learnlog tracks study sessions across learning stages, derives daily and
weekly efficiency scores, and serves the trend data behind the charts.

Weeks are counted from each stage's own start date rather than the calendar,
so a stage that begins on a Wednesday still gets clean 7-day buckets.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
