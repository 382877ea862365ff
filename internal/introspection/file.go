package introspection

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	eventbus "github.com/hanpama/gqlopera/internal/eventbus"
	events "github.com/hanpama/gqlopera/internal/events"
	schema "github.com/hanpama/gqlopera/internal/schema"
)

// File reads a schema from disk: a saved introspection result (.json) or
// SDL (.graphql, .graphqls, .gql).
type File struct {
	Path string
}

var _ Source = File{}

func (f File) String() string { return f.Path }

func (f File) Fetch(ctx context.Context) (data []byte, err error) {
	start := time.Now()
	eventbus.Publish(ctx, events.FetchStart{Source: f.Path})
	defer func() {
		eventbus.Publish(ctx, events.FetchFinish{Source: f.Path, Bytes: len(data), Err: err, Duration: time.Since(start)})
	}()

	if !isJSON(f.Path) && !isSDL(f.Path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSchemaFile, f.Path)
	}
	data, err = os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	return data, nil
}

func (f File) Decode(data []byte) (*schema.Schema, error) {
	switch {
	case isJSON(f.Path):
		return schema.ParseIntrospection(data)
	case isSDL(f.Path):
		return schema.BuildFromSDL(filepath.Base(f.Path), string(data))
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedSchemaFile, f.Path)
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func isSDL(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".graphql", ".graphqls", ".gql":
		return true
	}
	return false
}
