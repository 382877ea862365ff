package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	eventbus "github.com/hanpama/gqlopera/internal/eventbus"
	events "github.com/hanpama/gqlopera/internal/events"
)

func TestSuccessIsShownAtInfoLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false)

	l.Debug("hidden")
	Success(l, "Configuration file created", "path", "gqlopera.config.json")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "SUCCESS")
	require.Contains(t, out, "Configuration file created")
	require.Contains(t, out, "path=gqlopera.config.json")
}

func TestVerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, true).Debug("visible")
	require.Contains(t, buf.String(), "visible")
}

func TestSubscribeLogsPipelineEvents(t *testing.T) {
	b := eventbus.New()
	eventbus.Use(b)
	defer eventbus.Use(nil)

	var buf bytes.Buffer
	unsubscribe := Subscribe(New(&buf, false))

	ctx := context.Background()
	eventbus.Publish(ctx, events.OutputWritten{Kind: "query", Dir: "graphql/query", Files: 3})
	eventbus.Publish(ctx, events.SchemaChanged{Hash: "b", Previous: "a"})
	eventbus.Publish(ctx, events.WatchError{Err: errors.New("connection refused")})
	eventbus.Publish(ctx, events.DocumentWritten{Kind: "query", Field: "user", Path: "graphql/query/user.graphql"})

	out := buf.String()
	require.Contains(t, out, "Generated 3 query files")
	require.Contains(t, out, "Schema change detected, regenerating...")
	require.Contains(t, out, "Error during watch")
	require.Contains(t, out, "connection refused")
	require.NotContains(t, out, "user.graphql", "per-file lines are debug only")

	unsubscribe()
	buf.Reset()
	eventbus.Publish(ctx, events.OutputWritten{Kind: "query", Files: 1})
	require.Empty(t, buf.String())
}
