package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"learnlog/internal/adapters/otel"
	"learnlog/internal/adapters/turso"
	"learnlog/internal/config"
	"learnlog/internal/importer"
	"learnlog/internal/ports"
	"learnlog/internal/recalc"
	"learnlog/internal/records"
	"learnlog/internal/trends"
)

func openDB() (*sql.DB, error) {
	cfg, err := config.LoadDatabase()
	if err != nil {
		return nil, fmt.Errorf("load database config: %w", err)
	}
	db, err := turso.NewDB(cfg.URL, cfg.AuthToken)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

// newExporter builds the OTLP metrics exporter, degrading to a no-op when
// the collector is disabled or unreachable.
func newExporter(ctx context.Context) ports.MetricsExporter {
	exporter, err := otel.NewExporter(ctx, otel.LoadConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: OTEL metrics disabled: %v\n", err)
		return otel.NewNoOpExporter()
	}
	return exporter
}

type app struct {
	store    *turso.Store
	records  *records.Service
	trends   *trends.Builder
	importer *importer.Importer
}

func buildApp(db *sql.DB, exporter ports.MetricsExporter) *app {
	store := turso.NewStore(db)
	engine := recalc.New(recalc.WithExporter(exporter))
	svc := records.NewService(store, engine)
	return &app{
		store:    store,
		records:  svc,
		trends:   trends.NewBuilder(store),
		importer: importer.New(store, svc),
	}
}
