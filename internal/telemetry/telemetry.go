// Package telemetry sets up the OpenTelemetry SDK for mcp-demo: spans are
// exported as JSON to a writer (stderr in production) and metrics are kept
// in a manual reader that is drained on shutdown.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/felixgeelhaar/mcp-demo/middleware"
)

// Config describes the service being instrumented.
type Config struct {
	ServiceName    string
	ServiceVersion string

	// SpanWriter receives exported spans. Nil discards them.
	SpanWriter io.Writer
}

// Provider owns the tracer and meter providers.
type Provider struct {
	serviceName string
	traces      *sdktrace.TracerProvider
	metrics     *sdkmetric.MeterProvider
	reader      *sdkmetric.ManualReader
}

// New builds the providers. Spans are exported synchronously so nothing is
// lost when the process exits on EOF.
func New(cfg Config) (*Provider, error) {
	w := cfg.SpanWriter
	if w == nil {
		w = io.Discard
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("telemetry: span exporter: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	)

	reader := sdkmetric.NewManualReader()

	return &Provider{
		serviceName: cfg.ServiceName,
		traces: sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithSyncer(exporter),
		),
		metrics: sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(reader),
		),
		reader: reader,
	}, nil
}

// MiddlewareOptions wires the providers into middleware.OTel.
func (p *Provider) MiddlewareOptions() []middleware.OTelOption {
	return []middleware.OTelOption{
		middleware.WithTracerProvider(p.traces),
		middleware.WithMeterProvider(p.metrics),
		middleware.WithOTelServiceName(p.serviceName),
	}
}

// Counter is one aggregated counter series.
type Counter struct {
	Name   string
	Method string
	Value  int64
}

// Counters collects the current value of every int64 counter, keyed by
// metric name and mcp.method, sorted by name then method.
func (p *Provider) Counters(ctx context.Context) ([]Counter, error) {
	var rm metricdata.ResourceMetrics
	if err := p.reader.Collect(ctx, &rm); err != nil {
		return nil, fmt.Errorf("telemetry: collect metrics: %w", err)
	}

	totals := make(map[[2]string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				method, _ := dp.Attributes.Value("mcp.method")
				totals[[2]string{m.Name, method.AsString()}] += dp.Value
			}
		}
	}

	out := make([]Counter, 0, len(totals))
	for k, v := range totals {
		out = append(out, Counter{Name: k[0], Method: k[1], Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Method < out[j].Method
	})
	return out, nil
}

// Shutdown flushes and stops both providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	return errors.Join(
		p.traces.Shutdown(ctx),
		p.metrics.Shutdown(ctx),
	)
}
