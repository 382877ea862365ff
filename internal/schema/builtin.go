package schema

import "strings"

// leafScalars are the type names treated as terminal without consulting the
// schema: the five built-in scalars plus the custom scalars most servers
// expose for dates and untyped payloads.
var leafScalars = map[string]struct{}{
	"String":   {},
	"Int":      {},
	"Float":    {},
	"Boolean":  {},
	"ID":       {},
	"DateTime": {},
	"Date":     {},
	"JSON":     {},
}

// IsLeaf reports whether name is a scalar that never takes a selection set.
func IsLeaf(name string) bool {
	_, ok := leafScalars[name]
	return ok
}

// IsBuiltinScalar reports whether name is one of the scalars every GraphQL
// server defines implicitly.
func IsBuiltinScalar(name string) bool {
	switch name {
	case "String", "Int", "Float", "Boolean", "ID":
		return true
	}
	return false
}

// IsBuiltinDirective reports whether name is a directive defined by the
// GraphQL specification itself.
func IsBuiltinDirective(name string) bool {
	switch name {
	case "include", "skip", "deprecated", "specifiedBy", "oneOf", "defer", "stream":
		return true
	}
	return false
}

// IsReserved reports whether name is an introspection meta name.
func IsReserved(name string) bool {
	return strings.HasPrefix(name, "__")
}

const defaultDeprecationReason = "No longer supported"
