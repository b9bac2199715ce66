package observability

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"

	"github.com/maatchaa/maatchaa-backend/internal/pkg/envutil"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

// OtelConfig names the service in exported spans.
type OtelConfig struct {
	ServiceName string
	Environment string
	Version     string
}

type exportSettings struct {
	Enabled     bool
	SampleRatio float64
	Endpoint    string
	Headers     map[string]string
	Insecure    bool
}

func loadExportSettings() exportSettings {
	ratio := envutil.GetEnvAsFloat("OTEL_SAMPLER_RATIO", 0.1, nil)
	switch {
	case ratio < 0:
		ratio = 0
	case ratio > 1:
		ratio = 1
	}
	return exportSettings{
		Enabled:     envutil.GetEnvAsBool("OTEL_ENABLED", false, nil),
		SampleRatio: ratio,
		Endpoint:    envutil.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "", nil),
		Headers:     parseHeaders(envutil.GetEnv("OTEL_EXPORTER_OTLP_HEADERS", "", nil)),
		Insecure:    envutil.GetEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", false, nil),
	}
}

// parseHeaders reads "k1=v1,k2=v2". Malformed pairs are skipped.
func parseHeaders(raw string) map[string]string {
	var headers map[string]string
	for _, part := range strings.Split(raw, ",") {
		key, val, ok := strings.Cut(part, "=")
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		if !ok || key == "" || val == "" {
			continue
		}
		if headers == nil {
			headers = map[string]string{}
		}
		headers[key] = val
	}
	return headers
}

var (
	otelOnce     sync.Once
	otelShutdown func(context.Context) error
)

// InitOTel installs the global tracer provider once. Tracing is off unless
// OTEL_ENABLED is set; the returned shutdown func is nil in that case.
func InitOTel(ctx context.Context, log *logger.Logger, cfg OtelConfig) func(context.Context) error {
	otelOnce.Do(func() {
		settings := loadExportSettings()
		if !settings.Enabled {
			return
		}
		serviceName := strings.TrimSpace(cfg.ServiceName)
		if serviceName == "" {
			serviceName = "maatchaa-api"
		}
		res, err := resource.New(ctx, resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(strings.TrimSpace(cfg.Version)),
			attribute.String("deployment.environment", strings.TrimSpace(cfg.Environment)),
		))
		if err != nil {
			log.Warn("otel resource init failed (continuing)", "error", err)
		}

		opts := []sdktrace.TracerProviderOption{
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(settings.SampleRatio))),
			sdktrace.WithResource(res),
		}
		if exporter, err := newSpanExporter(ctx, log, settings); err != nil {
			log.Warn("otel exporter init failed (continuing)", "error", err)
		} else {
			opts = append(opts, sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)))
		}

		tp := sdktrace.NewTracerProvider(opts...)
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		otelShutdown = tp.Shutdown
		log.Info("otel tracing initialized", "service", serviceName, "endpoint", settings.Endpoint, "ratio", settings.SampleRatio)
	})
	return otelShutdown
}

// newSpanExporter ships to OTLP/HTTP when an endpoint is configured and
// pretty-prints to stdout otherwise.
func newSpanExporter(ctx context.Context, log *logger.Logger, s exportSettings) (sdktrace.SpanExporter, error) {
	if s.Endpoint == "" {
		log.Warn("otel using stdout exporter (no OTLP endpoint configured)")
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(s.Endpoint)}
	if s.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(s.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(s.Headers))
	}
	return otlptracehttp.New(ctx, opts...)
}
