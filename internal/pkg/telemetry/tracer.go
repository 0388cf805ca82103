// Package telemetry wires process-wide logging and OpenTelemetry tracing.
//
// Call SetupTracer once at the top of main(), defer the returned shutdown
// function, and every span created anywhere in the process is exported.
//
//	shutdown, err := telemetry.SetupTracer(ctx, telemetry.TracerConfig{ServiceName: "cart-api"})
//	if err != nil { ... }
//	defer shutdown(context.Background())
package telemetry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ShutdownFunc must be called before the process exits to flush any
// buffered spans and close the exporter connection cleanly.
type ShutdownFunc func(ctx context.Context) error

// TracerConfig selects where spans go.
type TracerConfig struct {
	ServiceName string
	// Endpoint is the OTLP gRPC collector, host:port; a scheme prefix is tolerated.
	Endpoint    string
	Environment string
}

// SetupTracer initialises the global OpenTelemetry TracerProvider and
// TextMapPropagator for cfg.ServiceName.
//
// The endpoint comes from config (OTEL_EXPORTER_OTLP_ENDPOINT overrides it),
// so the same binary exports to a local collector or to production without
// a code change. Empty falls back to "localhost:4317".
func SetupTracer(ctx context.Context, cfg TracerConfig) (ShutdownFunc, error) {
	// The gRPC dialer expects host:port, not a URL.
	endpoint := stripScheme(cfg.Endpoint)
	if endpoint == "" {
		endpoint = "localhost:4317"
	}

	// ── 1. Create the OTLP gRPC exporter ────────────────────────────────────
	conn, err := grpc.NewClient(
		endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: failed to dial OTel Collector at %s: %w", endpoint, err)
	}

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("telemetry: failed to create OTLP trace exporter: %w", err)
	}

	// ── 2. Build the resource (identifies this service in Tempo / Grafana) ───
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("telemetry: failed to build resource: %w", err)
	}

	// ── 3. Create the TracerProvider with a batching span processor ──────────
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(5*time.Second),
		),
		sdktrace.WithResource(res),
		// Sample every request. A busy deployment would use:
		//   sdktrace.WithSampler(sdktrace.TraceIDRatioBased(0.1))
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	// ── 4. Register as the global provider ───────────────────────────────────
	// otelhttp, otelgrpc and the cart service's tracer all read it from here.
	otel.SetTracerProvider(tp)

	// ── 5. Register the W3C TraceContext + Baggage propagators ───────────────
	// This is what carries trace_id across process boundaries. otelhttp
	// extracts the incoming traceparent header once these are registered.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, // W3C traceparent / tracestate headers
		propagation.Baggage{},      // W3C baggage header
	))

	shutdown := func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("telemetry: error shutting down TracerProvider: %w", err)
		}
		return conn.Close()
	}

	return shutdown, nil
}

// stripScheme removes "http://" or "https://" prefixes so the raw host:port
// string can be used directly with grpc.NewClient.
func stripScheme(endpoint string) string {
	for _, prefix := range []string{"http://", "https://"} {
		if rest, ok := strings.CutPrefix(endpoint, prefix); ok {
			return rest
		}
	}
	return endpoint
}
