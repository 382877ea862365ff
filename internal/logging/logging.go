// Package logging builds the CLI logger and turns pipeline events into log
// lines.
package logging

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	eventbus "github.com/hanpama/gqlopera/internal/eventbus"
	events "github.com/hanpama/gqlopera/internal/events"
)

// SuccessLevel sits between info and warn so it is shown whenever info is.
const SuccessLevel = log.InfoLevel + 2

// New returns a logger writing to w. verbose enables debug output.
func New(w io.Writer, verbose bool) *log.Logger {
	l := log.NewWithOptions(w, log.Options{Level: log.InfoLevel})
	if verbose {
		l.SetLevel(log.DebugLevel)
	}
	styles := log.DefaultStyles()
	styles.Levels[SuccessLevel] = lipgloss.NewStyle().
		SetString("SUCCESS").
		Bold(true).
		Foreground(lipgloss.Color("42"))
	styles.Keys["err"] = lipgloss.NewStyle().Foreground(lipgloss.Color("204"))
	l.SetStyles(styles)
	return l
}

// Success logs msg at SuccessLevel.
func Success(l *log.Logger, msg string, keyvals ...any) {
	l.Log(SuccessLevel, msg, keyvals...)
}

// Subscribe logs pipeline events from the global bus with l.
func Subscribe(l *log.Logger) (unsubscribe func()) {
	unsubs := []func(){
		eventbus.Subscribe(func(_ context.Context, e events.FetchStart) {
			l.Debug("Fetching GraphQL schema", "source", e.Source)
		}),
		eventbus.Subscribe(func(_ context.Context, e events.FetchFinish) {
			if e.Err != nil {
				l.Debug("Schema fetch failed", "source", e.Source, "status", e.Status, "err", e.Err)
				return
			}
			l.Debug("Schema fetched", "source", e.Source, "bytes", e.Bytes, "took", e.Duration)
		}),
		eventbus.Subscribe(func(_ context.Context, e events.GenerateFinish) {
			l.Debug("Rendered operations", "kind", e.Kind, "documents", e.Documents, "took", e.Duration)
		}),
		eventbus.Subscribe(func(_ context.Context, e events.DocumentWritten) {
			l.Debug("Wrote operation", "path", e.Path)
		}),
		eventbus.Subscribe(func(_ context.Context, e events.OutputWritten) {
			l.Info(fmt.Sprintf("Generated %d %s files", e.Files, e.Kind))
		}),
		eventbus.Subscribe(func(_ context.Context, e events.SchemaChanged) {
			l.Info("Schema change detected, regenerating...")
		}),
		eventbus.Subscribe(func(_ context.Context, e events.WatchError) {
			l.Error("Error during watch", "err", e.Err)
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
