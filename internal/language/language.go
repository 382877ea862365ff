// Package language wraps gqlparser for the documents this tool reads and
// writes: SDL schemas on the way in and generated operations on the way out.
package language

import (
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
)

func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadSchema parses SDL on top of the gqlparser prelude and validates it.
func LoadSchema(name, source string) (*Schema, error) {
	sch, err := gqlparser.LoadSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, err
	}
	return sch, nil
}

// Validate parses an operation document and checks it against sch. Comments
// are ignored. The returned error lists every violation found.
func Validate(sch *Schema, name, source string) error {
	doc, err := parser.ParseQuery(&ast.Source{Name: name, Input: source})
	if err != nil {
		return err
	}
	if errs := validator.Validate(sch, doc); len(errs) > 0 {
		return errs
	}
	return nil
}
