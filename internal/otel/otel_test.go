package otel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	eventbus "github.com/hanpama/gqlopera/internal/eventbus"
	events "github.com/hanpama/gqlopera/internal/events"
	runid "github.com/hanpama/gqlopera/internal/runid"
)

func TestSetupWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := Setup("", "gqlopera")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestEventsBecomeSpans(t *testing.T) {
	b := eventbus.New()
	eventbus.Use(b)
	defer eventbus.Use(nil)

	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	unsubscribe := Register(tp.Tracer("test"))
	defer unsubscribe()

	ctx, rid := runid.NewContext(context.Background())
	eventbus.Publish(ctx, events.RunStart{Source: "http://localhost:4000/graphql", Output: "graphql"})
	eventbus.Publish(ctx, events.FetchStart{Source: "http://localhost:4000/graphql"})
	eventbus.Publish(ctx, events.FetchFinish{Source: "http://localhost:4000/graphql", Status: 200, Bytes: 42})
	eventbus.Publish(ctx, events.GenerateStart{Kind: "query"})
	eventbus.Publish(ctx, events.GenerateStart{Kind: "mutation"})
	eventbus.Publish(ctx, events.GenerateFinish{Kind: "mutation", Documents: 1})
	eventbus.Publish(ctx, events.GenerateFinish{Kind: "query", Documents: 3})
	eventbus.Publish(ctx, events.OutputWritten{Kind: "query", Dir: "graphql/query", Files: 3})
	eventbus.Publish(ctx, events.RunFinish{Documents: 4, Err: errors.New("partial write")})

	ended := rec.Ended()
	var names []string
	for _, s := range ended {
		names = append(names, s.Name())
	}
	require.Equal(t, []string{"schema.fetch", "operation.generate", "operation.generate", "gqlopera.run"}, names)

	run := ended[3]
	for _, child := range ended[:3] {
		require.Equal(t, run.SpanContext().SpanID(), child.Parent().SpanID(), child.Name())
	}
	require.Equal(t, codes.Error, run.Status().Code)
	require.Len(t, run.Events(), 2, "output event and recorded error")

	var runAttr string
	for _, kv := range run.Attributes() {
		if kv.Key == "gqlopera.run_id" {
			runAttr = kv.Value.AsString()
		}
	}
	require.Equal(t, rid, runAttr)
}

func TestFinishWithoutStartIsIgnored(t *testing.T) {
	b := eventbus.New()
	eventbus.Use(b)
	defer eventbus.Use(nil)

	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer Register(tp.Tracer("test"))()

	eventbus.Publish(context.Background(), events.FetchFinish{Source: "x"})
	eventbus.Publish(context.Background(), events.GenerateFinish{Kind: "query"})
	require.Empty(t, rec.Ended())
}
