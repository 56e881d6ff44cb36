// Package otel ships recomputation metrics to an OTEL Collector over gRPC.
package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"learnlog/internal/ports"
)

const (
	serviceName    = "learnlog"
	serviceVersion = "1.0.0"
)

// Exporter exports recomputation metrics to an OTEL Collector.
type Exporter struct {
	provider        *sdkmetric.MeterProvider
	meter           metric.Meter
	recomputesTotal metric.Int64Counter
	failuresTotal   metric.Int64Counter
	daysTotal       metric.Int64Counter
	weeksTotal      metric.Int64Counter
	durationHist    metric.Float64Histogram
}

// NewExporter creates a new OTEL metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	recomputesTotal, err := meter.Int64Counter(
		"learnlog_recomputes_total",
		metric.WithDescription("Total score recomputation runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating recomputes counter: %w", err)
	}

	failuresTotal, err := meter.Int64Counter(
		"learnlog_recompute_failures_total",
		metric.WithDescription("Recomputation runs that rolled back"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failures counter: %w", err)
	}

	daysTotal, err := meter.Int64Counter(
		"learnlog_recomputed_days_total",
		metric.WithDescription("Daily score rows recomputed"),
		metric.WithUnit("{day}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating days counter: %w", err)
	}

	weeksTotal, err := meter.Int64Counter(
		"learnlog_recomputed_weeks_total",
		metric.WithDescription("Weekly score rows recomputed"),
		metric.WithUnit("{week}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating weeks counter: %w", err)
	}

	durationHist, err := meter.Float64Histogram(
		"learnlog_recompute_duration_seconds",
		metric.WithDescription("Recomputation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	return &Exporter{
		provider:        provider,
		meter:           meter,
		recomputesTotal: recomputesTotal,
		failuresTotal:   failuresTotal,
		daysTotal:       daysTotal,
		weeksTotal:      weeksTotal,
		durationHist:    durationHist,
	}, nil
}

// ExportRecompute exports metrics for one completed recomputation.
func (e *Exporter) ExportRecompute(ctx context.Context, m *ports.RecomputeMetrics) error {
	opt := metric.WithAttributes(
		attribute.String("stage_id", m.StageID),
		attribute.String("kind", m.Kind),
	)

	e.recomputesTotal.Add(ctx, 1, opt)
	if m.Failed {
		e.failuresTotal.Add(ctx, 1, opt)
	}
	e.daysTotal.Add(ctx, m.DaysRecomputed, opt)
	e.weeksTotal.Add(ctx, m.WeeksRecomputed, opt)
	e.durationHist.Record(ctx, m.Duration.Seconds(), opt)

	return nil
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
