// Package otelresolve wires OpenTelemetry tracing onto the resolver's
// eventbus events: one span per Resolve call, with child spans for the
// patch and rehash passes. Adapted from the teacher's internal/otel, which
// subscribed the same tracer-provider bootstrap to HTTP/GraphQL/gRPC events
// instead.
package otelresolve

import (
	"context"
	"sync"

	"github.com/openbindings/graphresolve/internal/eventbus"
	"github.com/openbindings/graphresolve/internal/events"
	"github.com/openbindings/graphresolve/internal/reqid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
)

// Setup configures OpenTelemetry and attaches eventbus subscribers for
// resolve/patch/rehash spans. If endpoint is empty, no telemetry is
// configured and the returned shutdown func is a no-op.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithInsecure()))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	sub := &subscriber{tracer: otel.Tracer("graphresolve")}
	sub.register()

	return tp.Shutdown, nil
}

type subscriber struct {
	tracer      trace.Tracer
	resolveSpan sync.Map // call id -> trace.Span
}

func (s *subscriber) register() {
	eventbus.Subscribe(func(ctx context.Context, e events.ResolveStart) {
		rid, _ := reqid.FromContext(ctx)
		_, span := s.tracer.Start(ctx, "resolve.call")
		span.SetAttributes(attribute.String("resolve.declared_root_type", e.DeclaredRootType))
		s.resolveSpan.Store(rid, span)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.ResolveFinish) {
		rid, _ := reqid.FromContext(ctx)
		v, ok := s.resolveSpan.LoadAndDelete(rid)
		if !ok {
			return
		}
		span := v.(trace.Span)
		span.SetAttributes(attribute.Int64("resolve.duration_ns", e.Duration.Nanoseconds()))
		if e.Err != nil {
			span.RecordError(e.Err)
		}
		span.End()
	})

	eventbus.Subscribe(func(ctx context.Context, e events.PatchPass) {
		rid, _ := reqid.FromContext(ctx)
		parent := ctx
		if v, ok := s.resolveSpan.Load(rid); ok {
			parent = trace.ContextWithSpan(ctx, v.(trace.Span))
		}
		_, span := s.tracer.Start(parent, "resolve.patch")
		span.SetAttributes(attribute.Int("resolve.patched_references", e.Resolved))
		if e.Err != nil {
			span.RecordError(e.Err)
		}
		span.End()
	})

	eventbus.Subscribe(func(ctx context.Context, e events.RehashPass) {
		rid, _ := reqid.FromContext(ctx)
		parent := ctx
		if v, ok := s.resolveSpan.Load(rid); ok {
			parent = trace.ContextWithSpan(ctx, v.(trace.Span))
		}
		_, span := s.tracer.Start(parent, "resolve.rehash")
		span.SetAttributes(attribute.Int("resolve.rehashed_containers", e.Containers))
		if e.Err != nil {
			span.RecordError(e.Err)
		}
		span.End()
	})
}
