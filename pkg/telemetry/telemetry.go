package telemetry

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/exporters/autoexport"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otlplog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/denysvitali/postlog-dashboard/pkg/config"
)

// ServiceName identifies the dashboard in traces and logs
const ServiceName = "postlog-dashboard"

// Initialize sets up OpenTelemetry tracing and logging using autoexport
func Initialize(cfg config.TelemetryConfig, version string, logger *logrus.Logger) (func(), error) {
	if cfg.Endpoint != "" {
		// autoexport reads the collector address from the environment
		if err := os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Endpoint); err != nil {
			return nil, err
		}
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(ServiceName),
			semconv.ServiceVersionKey.String(version),
		),
	)
	if err != nil {
		return nil, err
	}

	spanExporter, err := autoexport.NewSpanExporter(context.Background())
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)
	otel.SetTracerProvider(tp)

	logExporter, err := autoexport.NewLogExporter(context.Background())
	if err != nil {
		logger.Warnf("Failed to create log exporter: %v", err)
	}

	var logProvider *sdklog.LoggerProvider
	if logExporter != nil {
		logProvider = sdklog.NewLoggerProvider(
			sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
			sdklog.WithResource(res),
		)
		global.SetLoggerProvider(logProvider)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		}

		if logProvider != nil {
			if err := logProvider.Shutdown(ctx); err != nil {
				log.Printf("Error shutting down log provider: %v", err)
			}
		}
	}, nil
}

// ReportEvent attaches data as a JSON event to the span in ctx and emits it
// as a debug log record, both through logrus and the OpenTelemetry logger.
func ReportEvent(ctx context.Context, logger *logrus.Logger, name string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		logger.Errorf("Failed to marshal %s event: %v", name, err)
		return
	}

	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(
		attribute.String("json.data", string(payload)),
	))

	logger.WithFields(logrus.Fields{
		"event":     name,
		"json_data": string(payload),
	}).Debug("Event reported")

	var record otlplog.Record
	now := time.Now()
	record.SetTimestamp(now)
	record.SetObservedTimestamp(now)
	record.SetSeverity(otlplog.SeverityDebug)
	record.SetSeverityText("DEBUG")
	record.SetBody(otlplog.StringValue(string(payload)))
	record.AddAttributes(otlplog.String("event", name))
	global.GetLoggerProvider().Logger(ServiceName).Emit(ctx, record)
}
