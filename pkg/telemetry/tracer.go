package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sakinah-dev/sakinah/pkg/store"
)

const defaultTracerName = "sakinah/store"

// TracerOption configures the OpenTelemetry observer.
type TracerOption func(*tracerConfig)

type tracerConfig struct {
	name     string
	provider trace.TracerProvider
	skipNoop bool
}

// WithTracerName sets the instrumentation name (default: "sakinah/store").
func WithTracerName(name string) TracerOption {
	return func(c *tracerConfig) {
		c.name = name
	}
}

// WithTracerProvider uses provider instead of the global one.
func WithTracerProvider(provider trace.TracerProvider) TracerOption {
	return func(c *tracerConfig) {
		c.provider = provider
	}
}

// WithSkipNoop drops spans for commits that changed nothing.
func WithSkipNoop(skip bool) TracerOption {
	return func(c *tracerConfig) {
		c.skipNoop = skip
	}
}

// Tracer records one span per store commit.
type Tracer struct {
	tracer   trace.Tracer
	skipNoop bool
}

var _ store.Observer = (*Tracer)(nil)

// NewTracer creates a span observer. Without WithTracerProvider the tracer
// comes from the global provider, so configure it in main first:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func NewTracer(opts ...TracerOption) *Tracer {
	config := tracerConfig{name: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	var tracer trace.Tracer
	if config.provider != nil {
		tracer = config.provider.Tracer(config.name)
	} else {
		tracer = otel.Tracer(config.name)
	}
	return &Tracer{tracer: tracer, skipNoop: config.skipNoop}
}

// ObserveCommit implements store.Observer. The span covers the commit's
// own start and duration.
func (t *Tracer) ObserveCommit(ctx context.Context, c store.Commit) {
	if ctx == nil {
		ctx = context.Background()
	}
	if t.skipNoop && c.Err == nil && len(c.Changed) == 0 {
		return
	}

	_, span := t.tracer.Start(ctx,
		fmt.Sprintf("store.%s.%s", c.Store, c.Action),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(c.Start),
		trace.WithAttributes(
			attribute.String("store.name", c.Store),
			attribute.String("store.action", c.Action),
			attribute.StringSlice("store.changed", c.Changed),
			attribute.Int("store.notified", c.Notified),
		),
	)
	if c.Err != nil {
		span.RecordError(c.Err)
		span.SetStatus(codes.Error, c.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(c.Start.Add(c.Duration)))
}
