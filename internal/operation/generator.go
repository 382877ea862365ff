package operation

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	eventbus "github.com/hanpama/gqlopera/internal/eventbus"
	events "github.com/hanpama/gqlopera/internal/events"
	schema "github.com/hanpama/gqlopera/internal/schema"
	"github.com/hanpama/gqlopera/internal/selection"
)

// Options configures a Generator.
type Options struct {
	Selection selection.Options

	// IncludeFields, when non-empty, restricts generation to these root
	// field names.
	IncludeFields []string
	// ExcludeFields lists root field names that are never generated.
	ExcludeFields []string
	// FieldDepth overrides Selection.MaxDepth for individual root fields.
	FieldDepth map[string]int
}

// Generator produces operation documents for the root fields of a schema.
// Each root field starts from a fresh traversal, so the three operation kinds
// never share cycle state.
type Generator struct {
	schema     *schema.Schema
	syn        *selection.Synthesizer
	include    map[string]struct{}
	exclude    map[string]struct{}
	fieldDepth map[string]int
}

// NewGenerator returns a Generator for sch configured by opts.
func NewGenerator(sch *schema.Schema, opts Options) *Generator {
	return &Generator{
		schema:     sch,
		syn:        selection.New(sch, opts.Selection),
		include:    toSet(opts.IncludeFields),
		exclude:    toSet(opts.ExcludeFields),
		fieldDepth: opts.FieldDepth,
	}
}

// WithLogger forwards l to the synthesizer for cycle diagnostics.
func (g *Generator) WithLogger(l *log.Logger) *Generator {
	c := *g
	c.syn = g.syn.WithLogger(l)
	return &c
}

// Generate renders one document per selected root field of kind, in the
// root type's declaration order. A schema without that root type yields nil.
func (g *Generator) Generate(ctx context.Context, kind schema.OperationKind) []Document {
	root := g.schema.RootType(kind)
	if root == nil {
		return nil
	}

	start := time.Now()
	eventbus.Publish(ctx, events.GenerateStart{Kind: string(kind)})

	var docs []Document
	for _, f := range root.Fields {
		if !g.selected(f.Name) {
			continue
		}
		syn := g.syn
		if depth, ok := g.fieldDepth[f.Name]; ok {
			syn = syn.WithMaxDepth(depth)
		}
		docs = append(docs, Document{
			Kind:      kind,
			Name:      OperationName(f.Name),
			FieldName: f.Name,
			Content:   Render(f, kind, syn),
		})
	}

	eventbus.Publish(ctx, events.GenerateFinish{
		Kind:      string(kind),
		Documents: len(docs),
		Duration:  time.Since(start),
	})
	return docs
}

// GenerateAll runs Generate for query, mutation and subscription in that
// order and concatenates the results.
func (g *Generator) GenerateAll(ctx context.Context) []Document {
	var docs []Document
	for _, kind := range schema.OperationKinds {
		docs = append(docs, g.Generate(ctx, kind)...)
	}
	return docs
}

// GenerateAll is a shorthand for NewGenerator(sch, opts).GenerateAll.
func GenerateAll(ctx context.Context, sch *schema.Schema, opts Options) []Document {
	return NewGenerator(sch, opts).GenerateAll(ctx)
}

func (g *Generator) selected(name string) bool {
	if schema.IsReserved(name) {
		return false
	}
	if len(g.include) > 0 {
		if _, ok := g.include[name]; !ok {
			return false
		}
	}
	_, excluded := g.exclude[name]
	return !excluded
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
