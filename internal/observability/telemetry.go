package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/annel0/channel-guard/internal/logging"
)

// Options — настройки подключения к OTLP коллектору.
type Options struct {
	// Endpoint — адрес коллектора вида host:port; пусто —
	// стандартный localhost:4318 (или ENV OTEL_EXPORTER_OTLP_ENDPOINT).
	Endpoint string
	// Insecure отключает TLS при подключении.
	Insecure bool
}

// InitTelemetry настраивает OTLP экспортер и устанавливает глобальный
// TracerProvider; пересканы ядра попадают в трейсы как спаны guard.rescan.
// Возвращает функцию shutdown для вызова при завершении приложения.
func InitTelemetry(ctx context.Context, serviceName string, opts Options) (func(context.Context) error, error) {
	var expOpts []otlptracehttp.Option
	if opts.Endpoint != "" {
		expOpts = append(expOpts, otlptracehttp.WithEndpoint(opts.Endpoint))
	}
	if opts.Insecure {
		expOpts = append(expOpts, otlptracehttp.WithInsecure())
	}

	exp, err := otlptracehttp.New(ctx, expOpts...)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, err
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exp),
		trace.WithResource(res),
	)

	otel.SetTracerProvider(tp)

	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = "localhost:4318"
	}
	logging.Info("OpenTelemetry инициализирован (OTLP -> %s, service=%s)", endpoint, serviceName)

	shutdown := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}
	return shutdown, nil
}
