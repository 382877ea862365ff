// Package operation renders one GraphQL operation document per root field.
package operation

import (
	"strings"

	schema "github.com/hanpama/gqlopera/internal/schema"
	"github.com/hanpama/gqlopera/internal/selection"
)

// Document is a generated operation for a single root field.
type Document struct {
	Kind      schema.OperationKind
	Name      string // operation name, e.g. "GetUser" for field getUser
	FieldName string
	Content   string
}

// Render returns the operation document for field under kind. The selection
// set is produced by syn starting from an empty traversal.
func Render(field *schema.Field, kind schema.OperationKind, syn *selection.Synthesizer) string {
	var b strings.Builder

	renderDescription(&b, field.Description)

	b.WriteString(string(kind))
	b.WriteString(" ")
	b.WriteString(OperationName(field.Name))
	renderVariables(&b, field.Arguments)
	b.WriteString(" {\n  ")
	b.WriteString(field.Name)
	renderBindings(&b, field.Arguments)
	b.WriteString(syn.Synthesize(field.Type))
	b.WriteString("\n}")

	if field.IsDeprecated && field.DeprecationReason != "" {
		b.WriteString("\n# @deprecated: ")
		b.WriteString(field.DeprecationReason)
	}
	b.WriteString("\n")
	return b.String()
}

// OperationName upper-cases the first character of a field name. The rest is
// kept as is.
func OperationName(field string) string {
	if field == "" {
		return ""
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

func renderDescription(b *strings.Builder, desc string) {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return
	}
	for _, line := range strings.Split(desc, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			b.WriteString("#\n")
			continue
		}
		b.WriteString("# ")
		b.WriteString(line)
		b.WriteString("\n")
	}
}

// renderVariables writes "($a: T, $b: U)"; nothing for zero arguments.
func renderVariables(b *strings.Builder, args []*schema.InputValue) {
	if len(args) == 0 {
		return
	}
	b.WriteString("(")
	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("$")
		b.WriteString(arg.Name)
		b.WriteString(": ")
		b.WriteString(arg.Type.String())
	}
	b.WriteString(")")
}

// renderBindings writes "(a: $a, b: $b)"; nothing for zero arguments.
func renderBindings(b *strings.Builder, args []*schema.InputValue) {
	if len(args) == 0 {
		return
	}
	b.WriteString("(")
	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(arg.Name)
		b.WriteString(": $")
		b.WriteString(arg.Name)
	}
	b.WriteString(")")
}
