// Package watch polls a schema source and re-runs generation when the schema
// payload changes.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"golang.org/x/time/rate"

	eventbus "github.com/hanpama/gqlopera/internal/eventbus"
	events "github.com/hanpama/gqlopera/internal/events"
	"github.com/hanpama/gqlopera/internal/introspection"
	schema "github.com/hanpama/gqlopera/internal/schema"
)

// DefaultInterval is the polling period used when none is configured.
const DefaultInterval = 5 * time.Second

// ChangeFunc is called with the decoded schema after a change is detected.
type ChangeFunc func(ctx context.Context, sch *schema.Schema) error

// Watcher compares successive payloads from a source by hash. It is not safe
// for concurrent use.
type Watcher struct {
	src      introspection.Source
	interval time.Duration
	onChange ChangeFunc
	last     string
	stale    bool
}

// New returns a Watcher polling src every interval, or every DefaultInterval
// when interval is not positive.
func New(src introspection.Source, interval time.Duration, onChange ChangeFunc) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{src: src, interval: interval, onChange: onChange}
}

// Seed records data as the last seen payload, so the first poll only reports
// a change if the schema moved since data was fetched.
func (w *Watcher) Seed(data []byte) { w.last = hash(data) }

// Invalidate makes the next successful poll run the change func whatever the
// payload, for when the last generation did not complete.
func (w *Watcher) Invalidate() { w.stale = true }

// Poll fetches the source once. The first poll without a seed only records
// the hash, unless the watcher was invalidated. A differing hash decodes the payload and calls the change func.
func (w *Watcher) Poll(ctx context.Context) (changed bool, err error) {
	data, err := w.src.Fetch(ctx)
	if err != nil {
		return false, err
	}
	current := hash(data)
	previous := w.last
	if !w.stale && (previous == "" || previous == current) {
		w.last = current
		return false, nil
	}

	eventbus.Publish(ctx, events.SchemaChanged{Hash: current, Previous: previous})
	sch, err := w.src.Decode(data)
	if err != nil {
		return true, err
	}
	if w.onChange != nil {
		if err := w.onChange(ctx, sch); err != nil {
			return true, err
		}
	}
	w.last = current
	w.stale = false
	return true, nil
}

// Run polls until ctx is done. Failed polls are published as WatchError
// events and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	limiter := rate.NewLimiter(rate.Every(w.interval), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return nil
		}
		if _, err := w.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			eventbus.Publish(ctx, events.WatchError{Err: err})
		}
	}
}

func hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
