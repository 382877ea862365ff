// Package otel exports pipeline events as OpenTelemetry spans.
package otel

import (
	"context"
	"sync"

	eventbus "github.com/hanpama/gqlopera/internal/eventbus"
	events "github.com/hanpama/gqlopera/internal/events"
	runid "github.com/hanpama/gqlopera/internal/runid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
)

// Setup configures OpenTelemetry and attaches eventbus subscribers.
// If endpoint is empty, no telemetry is configured.
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

	unsubscribe := Register(tp.Tracer("gqlopera"))

	return func(ctx context.Context) error {
		unsubscribe()
		return tp.Shutdown(ctx)
	}, nil
}

// Register subscribes a span recorder to the global bus using tracer.
func Register(tracer trace.Tracer) (unsubscribe func()) {
	s := &subscriber{tracer: tracer}
	return s.register()
}

type kindKey struct {
	run  string
	kind string
}

type subscriber struct {
	tracer    trace.Tracer
	runSpans  sync.Map // run id -> trace.Span
	fetches   sync.Map // run id -> trace.Span
	generates sync.Map // kindKey -> trace.Span
}

// parent returns ctx carrying the run span when one is open.
func (s *subscriber) parent(ctx context.Context, rid string) context.Context {
	if v, ok := s.runSpans.Load(rid); ok {
		return trace.ContextWithSpan(ctx, v.(trace.Span))
	}
	return ctx
}

func (s *subscriber) register() func() {
	unsubs := []func(){
		eventbus.Subscribe(func(ctx context.Context, e events.RunStart) {
			rid, _ := runid.FromContext(ctx)
			_, span := s.tracer.Start(ctx, "gqlopera.run")
			span.SetAttributes(
				attribute.String("gqlopera.run_id", rid),
				attribute.String("gqlopera.source", e.Source),
				attribute.String("gqlopera.output", e.Output),
			)
			s.runSpans.Store(rid, span)
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.RunFinish) {
			rid, _ := runid.FromContext(ctx)
			v, ok := s.runSpans.LoadAndDelete(rid)
			if !ok {
				return
			}
			span := v.(trace.Span)
			span.SetAttributes(attribute.Int("gqlopera.documents", e.Documents))
			if e.Err != nil {
				span.RecordError(e.Err)
				span.SetStatus(codes.Error, e.Err.Error())
			}
			span.End()
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.FetchStart) {
			rid, _ := runid.FromContext(ctx)
			_, span := s.tracer.Start(s.parent(ctx, rid), "schema.fetch")
			span.SetAttributes(attribute.String("gqlopera.source", e.Source))
			s.fetches.Store(rid, span)
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.FetchFinish) {
			rid, _ := runid.FromContext(ctx)
			v, ok := s.fetches.LoadAndDelete(rid)
			if !ok {
				return
			}
			span := v.(trace.Span)
			span.SetAttributes(attribute.Int("gqlopera.bytes", e.Bytes))
			if e.Status != 0 {
				span.SetAttributes(semconv.HTTPStatusCodeKey.Int(e.Status))
			}
			if e.Err != nil {
				span.RecordError(e.Err)
				span.SetStatus(codes.Error, e.Err.Error())
			}
			span.End()
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.GenerateStart) {
			rid, _ := runid.FromContext(ctx)
			_, span := s.tracer.Start(s.parent(ctx, rid), "operation.generate")
			span.SetAttributes(attribute.String("graphql.operation.type", e.Kind))
			s.generates.Store(kindKey{run: rid, kind: e.Kind}, span)
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.GenerateFinish) {
			rid, _ := runid.FromContext(ctx)
			v, ok := s.generates.LoadAndDelete(kindKey{run: rid, kind: e.Kind})
			if !ok {
				return
			}
			span := v.(trace.Span)
			span.SetAttributes(attribute.Int("gqlopera.documents", e.Documents))
			span.End()
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.OutputWritten) {
			rid, _ := runid.FromContext(ctx)
			if v, ok := s.runSpans.Load(rid); ok {
				v.(trace.Span).AddEvent("output.written", trace.WithAttributes(
					attribute.String("graphql.operation.type", e.Kind),
					attribute.String("gqlopera.dir", e.Dir),
					attribute.Int("gqlopera.files", e.Files),
				))
			}
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.SchemaChanged) {
			_, span := s.tracer.Start(ctx, "schema.changed")
			span.SetAttributes(
				attribute.String("gqlopera.hash", e.Hash),
				attribute.String("gqlopera.previous_hash", e.Previous),
			)
			span.End()
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
