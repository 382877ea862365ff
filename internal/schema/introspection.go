package schema

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoSchema is returned when an introspection payload carries no __schema.
var ErrNoSchema = errors.New("schema: introspection result has no __schema")

// IntrospectionResult is the standard shape of an introspection response,
// with or without the outer "data" envelope.
type IntrospectionResult struct {
	Data   *IntrospectionData   `json:"data,omitempty"`
	Schema *IntrospectionSchema `json:"__schema,omitempty"`
	Errors []IntrospectionError `json:"errors,omitempty"`
}

type IntrospectionData struct {
	Schema *IntrospectionSchema `json:"__schema"`
}

type IntrospectionError struct {
	Message string `json:"message"`
}

type IntrospectionSchema struct {
	Description      *string                  `json:"description"`
	QueryType        *IntrospectionNamedRef   `json:"queryType"`
	MutationType     *IntrospectionNamedRef   `json:"mutationType"`
	SubscriptionType *IntrospectionNamedRef   `json:"subscriptionType"`
	Types            []IntrospectionType      `json:"types"`
	Directives       []IntrospectionDirective `json:"directives"`
}

type IntrospectionNamedRef struct {
	Name string `json:"name"`
}

type IntrospectionType struct {
	Kind           string                    `json:"kind"`
	Name           string                    `json:"name"`
	Description    *string                   `json:"description"`
	SpecifiedByURL *string                   `json:"specifiedByURL"`
	Fields         []IntrospectionField      `json:"fields"`
	InputFields    []IntrospectionInputValue `json:"inputFields"`
	Interfaces     []IntrospectionTypeRef    `json:"interfaces"`
	EnumValues     []IntrospectionEnumValue  `json:"enumValues"`
	PossibleTypes  []IntrospectionTypeRef    `json:"possibleTypes"`
	IsOneOf        bool                      `json:"isOneOf"`
}

type IntrospectionField struct {
	Name              string                    `json:"name"`
	Description       *string                   `json:"description"`
	Args              []IntrospectionInputValue `json:"args"`
	Type              *IntrospectionTypeRef     `json:"type"`
	IsDeprecated      bool                      `json:"isDeprecated"`
	DeprecationReason *string                   `json:"deprecationReason"`
}

type IntrospectionInputValue struct {
	Name              string                `json:"name"`
	Description       *string               `json:"description"`
	Type              *IntrospectionTypeRef `json:"type"`
	DefaultValue      *string               `json:"defaultValue"`
	IsDeprecated      bool                  `json:"isDeprecated"`
	DeprecationReason *string               `json:"deprecationReason"`
}

type IntrospectionTypeRef struct {
	Kind   string                `json:"kind"`
	Name   *string               `json:"name"`
	OfType *IntrospectionTypeRef `json:"ofType"`
}

type IntrospectionEnumValue struct {
	Name              string  `json:"name"`
	Description       *string `json:"description"`
	IsDeprecated      bool    `json:"isDeprecated"`
	DeprecationReason *string `json:"deprecationReason"`
}

type IntrospectionDirective struct {
	Name         string                    `json:"name"`
	Description  *string                   `json:"description"`
	Locations    []string                  `json:"locations"`
	Args         []IntrospectionInputValue `json:"args"`
	IsRepeatable bool                      `json:"isRepeatable"`
}

// ParseIntrospection decodes an introspection JSON payload and builds a Schema.
func ParseIntrospection(data []byte) (*Schema, error) {
	var res IntrospectionResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode introspection: %w", err)
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("introspection returned errors: %s", res.Errors[0].Message)
	}
	sch := res.Schema
	if res.Data != nil && res.Data.Schema != nil {
		sch = res.Data.Schema
	}
	if sch == nil {
		return nil, ErrNoSchema
	}
	return BuildFromIntrospection(sch), nil
}

// BuildFromIntrospection converts a decoded __schema object into a Schema.
// Types with an unknown kind are kept as scalars so that traversal treats
// them as fieldless.
func BuildFromIntrospection(in *IntrospectionSchema) *Schema {
	s := NewSchema(deref(in.Description))
	if in.QueryType != nil {
		s.SetQueryType(in.QueryType.Name)
	}
	if in.MutationType != nil {
		s.SetMutationType(in.MutationType.Name)
	}
	if in.SubscriptionType != nil {
		s.SetSubscriptionType(in.SubscriptionType.Name)
	}
	for i := range in.Types {
		it := &in.Types[i]
		if it.Name == "" {
			continue
		}
		s.AddType(buildIntrospectionType(it))
	}
	for i := range in.Directives {
		id := &in.Directives[i]
		d := NewDirective(id.Name, deref(id.Description)).SetRepeatable(id.IsRepeatable)
		d.Locations = append(d.Locations, id.Locations...)
		for j := range id.Args {
			d.AddArgument(buildIntrospectionInput(&id.Args[j]))
		}
		s.AddDirective(d)
	}
	return s
}

func buildIntrospectionType(it *IntrospectionType) *Type {
	kind := TypeKind(it.Kind)
	if !kind.Valid() {
		kind = TypeKindScalar
	}
	t := NewType(it.Name, kind, deref(it.Description)).SetOneOf(it.IsOneOf)
	if it.SpecifiedByURL != nil {
		t.SetSpecifiedByURL(*it.SpecifiedByURL)
	}
	for i := range it.Fields {
		f := &it.Fields[i]
		field := NewField(f.Name, deref(f.Description), buildIntrospectionTypeRef(f.Type))
		for j := range f.Args {
			field.AddArgument(buildIntrospectionInput(&f.Args[j]))
		}
		if f.IsDeprecated {
			field.Deprecate(deprecationReason(f.DeprecationReason))
		}
		t.AddField(field)
	}
	for i := range it.InputFields {
		t.AddInputField(buildIntrospectionInput(&it.InputFields[i]))
	}
	for _, ref := range it.Interfaces {
		if name := buildIntrospectionTypeRef(&ref).GetNamedType(); name != "" {
			t.AddInterface(name)
		}
	}
	for _, ref := range it.PossibleTypes {
		if name := buildIntrospectionTypeRef(&ref).GetNamedType(); name != "" {
			t.AddPossibleType(name)
		}
	}
	for i := range it.EnumValues {
		ev := &it.EnumValues[i]
		v := NewEnumValue(ev.Name, deref(ev.Description))
		if ev.IsDeprecated {
			v.Deprecate(deprecationReason(ev.DeprecationReason))
		}
		t.AddEnumValue(v)
	}
	return t
}

func buildIntrospectionInput(iv *IntrospectionInputValue) *InputValue {
	in := NewInputValue(iv.Name, deref(iv.Description), buildIntrospectionTypeRef(iv.Type))
	if iv.DefaultValue != nil {
		in.SetDefault(*iv.DefaultValue)
	}
	if iv.IsDeprecated {
		in.Deprecate(deprecationReason(iv.DeprecationReason))
	}
	return in
}

// buildIntrospectionTypeRef converts a wrapper chain. A NON_NULL or LIST
// layer without an inner type yields nil, which later resolves to no type.
func buildIntrospectionTypeRef(ref *IntrospectionTypeRef) *TypeRef {
	if ref == nil {
		return nil
	}
	switch ref.Kind {
	case string(TypeRefKindNonNull):
		inner := buildIntrospectionTypeRef(ref.OfType)
		if inner == nil {
			return nil
		}
		return NonNullType(inner)
	case string(TypeRefKindList):
		inner := buildIntrospectionTypeRef(ref.OfType)
		if inner == nil {
			return nil
		}
		return ListType(inner)
	default:
		if ref.Name == nil || *ref.Name == "" {
			return nil
		}
		return NamedType(*ref.Name)
	}
}

func deprecationReason(reason *string) string {
	if reason == nil || *reason == "" {
		return defaultDeprecationReason
	}
	return *reason
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
