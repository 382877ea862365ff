// Package selection synthesizes GraphQL selection sets from a schema's type
// graph.
//
// Traversal is depth-first in field declaration order. Every recursive call
// receives its own copy of the traversal path; the visited set inside it is
// persistent, so expanding one field never changes what a sibling field sees.
// The walk is bounded by Options.MaxDepth and Options.MaxFields and always
// terminates, whatever cycles the schema contains.
package selection

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	schema "github.com/hanpama/gqlopera/internal/schema"
)

const indentUnit = "  "

// Synthesizer renders selection sets for one schema under fixed options.
// It holds no mutable state and is safe for concurrent use.
type Synthesizer struct {
	schema  *schema.Schema
	opts    Options
	tracker tracker
	exclude map[string]struct{}
	logger  *log.Logger
}

// New returns a Synthesizer. Out-of-range options are clamped.
func New(sch *schema.Schema, opts Options) *Synthesizer {
	opts = opts.normalized()
	exclude := make(map[string]struct{}, len(opts.ExcludeTypes))
	for _, name := range opts.ExcludeTypes {
		exclude[name] = struct{}{}
	}
	return &Synthesizer{
		schema:  sch,
		opts:    opts,
		tracker: newTracker(opts),
		exclude: exclude,
	}
}

// WithLogger returns a copy that reports cycle decisions at debug level.
func (s *Synthesizer) WithLogger(l *log.Logger) *Synthesizer {
	c := *s
	c.logger = l
	return &c
}

// WithMaxDepth returns a copy using a different depth limit.
func (s *Synthesizer) WithMaxDepth(depth int) *Synthesizer {
	c := *s
	c.opts.MaxDepth = depth
	c.opts = c.opts.normalized()
	return &c
}

// Options returns the effective options.
func (s *Synthesizer) Options() Options { return s.opts }

// Synthesize returns the selection block for a field of type ref, starting a
// fresh traversal at depth 0. The result is empty when the type needs no
// selection; otherwise it starts with a space so it can follow the field name
// directly.
func (s *Synthesizer) Synthesize(ref *schema.TypeRef) string {
	return s.synthesize(ref, path{})
}

func (s *Synthesizer) synthesize(ref *schema.TypeRef, p path) string {
	if p.depth >= s.opts.MaxDepth {
		return fmt.Sprintf(" # Max depth (%d) reached", s.opts.MaxDepth)
	}

	typ := s.schema.Resolve(ref)
	if typ == nil || schema.IsLeaf(typ.Name) {
		return ""
	}

	if p.visited.has(typ.Name) {
		switch d := s.tracker.decide(p, typ.Name); d {
		case BoundedReenter:
			s.trace(p, typ.Name, d)
			return s.restricted(typ, p)
		case SkipWithMark:
			s.trace(p, typ.Name, d)
			return fmt.Sprintf(" # Circular reference to %s skipped", typ.Name)
		default:
			s.trace(p, typ.Name, d)
			return ""
		}
	}

	if !typ.HasFields() {
		return ""
	}

	inner := p.enter(typ.Name)
	fields, omitted := s.selectable(typ)

	lines := make([]string, 0, len(fields)+1)
	nextIndent := strings.Repeat(indentUnit, p.depth+2)
	for _, f := range fields {
		fieldType := f.Type.GetNamedType()
		if s.opts.CircularRefs != CircularAllow && inner.visited.has(fieldType) {
			d := s.tracker.decide(inner, fieldType)
			s.trace(inner.descend(f.Name), fieldType, d)
			if d == SkipWithMark {
				lines = append(lines, nextIndent+f.Name+" # Circular reference to "+fieldType)
			}
			continue
		}
		nested := s.synthesize(f.Type, inner.descend(f.Name))
		if strings.TrimSpace(nested) != "" {
			lines = append(lines, nextIndent+f.Name+nested)
		} else {
			lines = append(lines, nextIndent+f.Name)
		}
	}
	return s.block(lines, omitted, p.depth)
}

// restricted expands typ once more after a cycle: leaf fields are selected
// bare and composite fields get a comment instead of a nested selection.
// It never consults the tracker again, so it cannot recurse.
func (s *Synthesizer) restricted(typ *schema.Type, p path) string {
	if !typ.HasFields() {
		return ""
	}
	fields, omitted := s.selectable(typ)
	lines := make([]string, 0, len(fields)+1)
	nextIndent := strings.Repeat(indentUnit, p.depth+2)
	for _, f := range fields {
		if s.isLeafField(f) {
			lines = append(lines, nextIndent+f.Name)
		} else {
			lines = append(lines, nextIndent+f.Name+" # Circular ref depth limit")
		}
	}
	return s.block(lines, omitted, p.depth)
}

// selectable returns the fields of typ that may be selected, capped at
// MaxFields in declaration order, and how many were cut by the cap.
func (s *Synthesizer) selectable(typ *schema.Type) ([]*schema.Field, int) {
	all := make([]*schema.Field, 0, len(typ.Fields))
	for _, f := range typ.Fields {
		if schema.IsReserved(f.Name) {
			continue
		}
		if _, ok := s.exclude[f.Type.GetNamedType()]; ok {
			continue
		}
		all = append(all, f)
	}
	if len(all) <= s.opts.MaxFields {
		return all, 0
	}
	return all[:s.opts.MaxFields], len(all) - s.opts.MaxFields
}

func (s *Synthesizer) isLeafField(f *schema.Field) bool {
	name := f.Type.GetNamedType()
	if schema.IsLeaf(name) {
		return true
	}
	return !s.schema.Resolve(f.Type).HasFields()
}

// block wraps field lines in braces indented for depth. The truncation note is
// appended once, after the last field. Without field lines the result is
// empty and the caller renders the field bare.
func (s *Synthesizer) block(lines []string, omitted, depth int) string {
	if len(lines) == 0 {
		return ""
	}
	if omitted > 0 {
		lines = append(lines, fmt.Sprintf("%s# ... %d more fields (limited by maxFields: %d)",
			strings.Repeat(indentUnit, depth+2), omitted, s.opts.MaxFields))
	}
	var b strings.Builder
	b.WriteString(" {\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat(indentUnit, depth+1))
	b.WriteString("}")
	return b.String()
}

func (s *Synthesizer) trace(p path, typeName string, d Decision) {
	if s.logger == nil {
		return
	}
	s.logger.Debug("circular reference", "path", p.fieldPath, "type", typeName, "decision", d.String(), "depth", p.depth)
}
