// Package otel turns schema and coercion events into OpenTelemetry spans.
package otel

import (
	"context"
	"sync"

	eventbus "github.com/hanpama/graphtype/internal/eventbus"
	events "github.com/hanpama/graphtype/internal/events"
	reqid "github.com/hanpama/graphtype/internal/reqid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const tracerName = "graphtype"

// Setup exports traces to an OTLP/gRPC collector at endpoint and attaches
// span subscribers to bus. With an empty endpoint nothing is configured.
func Setup(ctx context.Context, bus *eventbus.Bus, endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
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

	unsubscribe := Attach(bus, tp.Tracer(tracerName))
	return func(ctx context.Context) error {
		unsubscribe()
		return tp.Shutdown(ctx)
	}, nil
}

// Attach registers span subscribers on bus using tracer.
func Attach(bus *eventbus.Bus, tracer trace.Tracer) (unsubscribe func()) {
	s := &subscriber{tracer: tracer}
	return s.register(bus)
}

type subscriber struct {
	tracer      trace.Tracer
	buildSpans  sync.Map // rid -> trace.Span
	coerceSpans sync.Map // coerceKey -> trace.Span
}

type coerceKey struct {
	rid  uint64
	call uint64
}

func (s *subscriber) start(ctx context.Context, spans *sync.Map, key func(rid uint64) any, name string, attrs ...attribute.KeyValue) {
	rid, ok := reqid.FromContext(ctx)
	if !ok {
		return
	}
	_, span := s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	spans.Store(key(rid), span)
}

func (s *subscriber) finish(ctx context.Context, spans *sync.Map, key func(rid uint64) any, err error, attrs ...attribute.KeyValue) {
	rid, _ := reqid.FromContext(ctx)
	v, ok := spans.LoadAndDelete(key(rid))
	if !ok {
		return
	}
	span := v.(trace.Span)
	span.SetAttributes(attrs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func byRequest(rid uint64) any { return rid }

func byCall(call uint64) func(uint64) any {
	return func(rid uint64) any { return coerceKey{rid: rid, call: call} }
}

func (s *subscriber) register(bus *eventbus.Bus) func() {
	unsubscribers := []func(){
		eventbus.Subscribe(bus, func(ctx context.Context, e events.SchemaBuildStart) {
			s.start(ctx, &s.buildSpans, byRequest, "schema.build", attribute.String("graphtype.source", e.Source))
		}),
		eventbus.Subscribe(bus, func(ctx context.Context, e events.SchemaBuildFinish) {
			s.finish(ctx, &s.buildSpans, byRequest, e.Err, attribute.Int("graphtype.types", e.Types))
		}),
		eventbus.Subscribe(bus, func(ctx context.Context, e events.OverlayApplied) {
			_, span := s.tracer.Start(ctx, "schema.overlay", trace.WithAttributes(
				attribute.String("graphtype.coordinate", e.Coordinate),
				attribute.String("graphtype.target", e.Target),
			))
			span.End()
		}),
		eventbus.Subscribe(bus, func(ctx context.Context, e events.CoercionStart) {
			s.start(ctx, &s.coerceSpans, byCall(e.Call), "values.coerce", attribute.String("graphtype.type", e.Type))
		}),
		eventbus.Subscribe(bus, func(ctx context.Context, e events.CoercionFinish) {
			s.finish(ctx, &s.coerceSpans, byCall(e.Call), e.Err)
		}),
	}
	return func() {
		for _, u := range unsubscribers {
			u()
		}
	}
}
