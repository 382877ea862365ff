// Package output writes generated operation documents to disk, one file per
// root field under a directory per operation kind.
package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"golang.org/x/sync/errgroup"

	eventbus "github.com/hanpama/gqlopera/internal/eventbus"
	events "github.com/hanpama/gqlopera/internal/events"
	"github.com/hanpama/gqlopera/internal/operation"
	schema "github.com/hanpama/gqlopera/internal/schema"
)

// SDLFileName is the name of the rendered schema written next to the
// operation directories.
const SDLFileName = "schema.graphql"

// Writer places documents under Dir as <Dir>/<kind>/<field>.graphql.
type Writer struct {
	Dir string
}

// New returns a Writer rooted at dir.
func New(dir string) *Writer { return &Writer{Dir: dir} }

var fieldName = regexp.MustCompile(`^[_A-Za-z][_0-9A-Za-z]*$`)

// Path returns the file a document is written to.
func (w *Writer) Path(doc operation.Document) string {
	return filepath.Join(w.Dir, string(doc.Kind), doc.FieldName+".graphql")
}

// Prepare creates the output directory and one subdirectory per operation
// kind, including kinds the schema does not define.
func (w *Writer) Prepare() error {
	for _, kind := range schema.OperationKinds {
		if err := os.MkdirAll(filepath.Join(w.Dir, string(kind)), 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	return nil
}

// Write stores docs and returns how many files were written per kind. Each
// kind is written by its own goroutine; within a kind files are written in
// document order. Nothing is written when a document's field name is not a
// GraphQL name.
func (w *Writer) Write(ctx context.Context, docs []operation.Document) (map[schema.OperationKind]int, error) {
	for _, d := range docs {
		if !fieldName.MatchString(d.FieldName) {
			return nil, fmt.Errorf("write %s: invalid field name %q", d.Kind, d.FieldName)
		}
	}
	if err := w.Prepare(); err != nil {
		return nil, err
	}

	byKind := make(map[schema.OperationKind][]operation.Document, len(schema.OperationKinds))
	for _, d := range docs {
		byKind[d.Kind] = append(byKind[d.Kind], d)
	}

	counts := make([]int, len(schema.OperationKinds))
	g, ctx := errgroup.WithContext(ctx)
	for i, kind := range schema.OperationKinds {
		batch := byKind[kind]
		if len(batch) == 0 {
			continue
		}
		g.Go(func() error {
			for _, doc := range batch {
				if err := ctx.Err(); err != nil {
					return err
				}
				path := w.Path(doc)
				if err := os.WriteFile(path, []byte(doc.Content), 0644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				counts[i]++
				eventbus.Publish(ctx, events.DocumentWritten{Kind: string(kind), Field: doc.FieldName, Path: path})
			}
			eventbus.Publish(ctx, events.OutputWritten{
				Kind:  string(kind),
				Dir:   filepath.Join(w.Dir, string(kind)),
				Files: counts[i],
			})
			return nil
		})
	}
	err := g.Wait()

	out := make(map[schema.OperationKind]int, len(counts))
	for i, kind := range schema.OperationKinds {
		out[kind] = counts[i]
	}
	return out, err
}

// WriteSDL renders sch as SDL into <Dir>/schema.graphql.
func (w *Writer) WriteSDL(sch *schema.Schema) (string, error) {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(w.Dir, SDLFileName)
	if err := os.WriteFile(path, []byte(schema.Render(sch)), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
