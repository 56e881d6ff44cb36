package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"learnlog/internal/config"
	"learnlog/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON API server",
	Long: `Start the HTTP server exposing the trend, category and record APIs.

Examples:
  learnlog serve                      # Listen per ~/.learnlog/config.toml
  learnlog serve --config ./dev.toml  # Use an explicit config file`,
	RunE: runServe,
}

var serveConfigPath string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "", "Path to config.toml")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadServe(serveConfigPath)
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		cancel()
	}()

	exporter := newExporter(ctx)
	defer func() { _ = exporter.Close(context.Background()) }()

	a := buildApp(db, exporter)
	server := web.NewServer(a.store, a.records, a.trends, a.importer)
	server.SetTimeout(cfg.Server.Timeout())
	if cfg.Metrics.Enabled {
		server.EnableMetrics()
	}

	return server.Start(ctx, cfg.Server.Addr())
}
