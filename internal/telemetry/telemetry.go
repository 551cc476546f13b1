package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/cardio-risk/backend/internal/logging"
)

const instrumentationName = "github.com/cardio-risk/backend"

// Init installs OTLP trace and metric exporters when endpoint is set.
// With an empty endpoint the global no-op providers stay in place.
// The returned function flushes and stops the exporters.
func Init(ctx context.Context, service, endpoint string) (func(context.Context) error, error) {
	if endpoint == "" {
		logging.From(ctx).Debug("telemetry disabled")
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(semconv.ServiceName(service)),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build telemetry resource")
	}

	initCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	traceExp, err := otlptracegrpc.New(initCtx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create trace exporter", goerr.V("endpoint", endpoint))
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExp),
		sdktrace.WithResource(res),
	)

	metricExp, err := otlpmetricgrpc.New(initCtx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, goerr.Wrap(err, "failed to create metric exporter", goerr.V("endpoint", endpoint))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp, sdkmetric.WithInterval(10*time.Second))),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	logging.From(ctx).Info("telemetry initialized", "endpoint", endpoint)

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}

// Flush runs shutdown with a bounded timeout and logs failures.
func Flush(ctx context.Context, shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logging.From(ctx).Warn("telemetry shutdown failed", "error", err)
	}
}

func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// Instruments are the assessment metrics.
type Instruments struct {
	Assessments metric.Int64Counter
	Failures    metric.Int64Counter
	Probability metric.Float64Histogram
}

// NewInstruments creates instruments on the current global meter provider.
func NewInstruments() (*Instruments, error) {
	meter := otel.Meter(instrumentationName)

	assessments, err := meter.Int64Counter("cardio_assessments_total",
		metric.WithDescription("Completed risk assessments"))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create assessments counter")
	}
	failures, err := meter.Int64Counter("cardio_assessment_failures_total",
		metric.WithDescription("Assessments that failed at prediction"))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create failures counter")
	}
	probability, err := meter.Float64Histogram("cardio_assessment_probability",
		metric.WithDescription("Predicted probability of cardiovascular disease"),
		metric.WithExplicitBucketBoundaries(0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create probability histogram")
	}

	return &Instruments{
		Assessments: assessments,
		Failures:    failures,
		Probability: probability,
	}, nil
}
