// Package introspection renders a schema as the result of the standard
// GraphQL introspection query, so overlay results can be inspected exactly
// as clients would see them.
package introspection

import (
	"sort"

	schema "github.com/hanpama/graphtype/internal/schema"
)

// Schema is the __schema result.
type Schema struct {
	Description      *string     `json:"description"`
	QueryType        *TypeName   `json:"queryType"`
	MutationType     *TypeName   `json:"mutationType"`
	SubscriptionType *TypeName   `json:"subscriptionType"`
	Types            []Type      `json:"types"`
	Directives       []Directive `json:"directives"`
}

type TypeName struct {
	Name string `json:"name"`
}

// Type is a __Type of a named type.
type Type struct {
	Kind           string       `json:"kind"`
	Name           string       `json:"name"`
	Description    *string      `json:"description"`
	SpecifiedByURL *string      `json:"specifiedByURL"`
	Fields         []Field      `json:"fields"`
	Interfaces     []TypeRef    `json:"interfaces"`
	PossibleTypes  []TypeRef    `json:"possibleTypes"`
	EnumValues     []EnumValue  `json:"enumValues"`
	InputFields    []InputValue `json:"inputFields"`
	IsOneOf        *bool        `json:"isOneOf"`
}

// TypeRef is a __Type reached through a field, possibly wrapped.
type TypeRef struct {
	Kind   string   `json:"kind"`
	Name   *string  `json:"name"`
	OfType *TypeRef `json:"ofType"`
}

type Field struct {
	Name              string       `json:"name"`
	Description       *string      `json:"description"`
	Args              []InputValue `json:"args"`
	Type              TypeRef      `json:"type"`
	IsDeprecated      bool         `json:"isDeprecated"`
	DeprecationReason *string      `json:"deprecationReason"`
}

type InputValue struct {
	Name              string  `json:"name"`
	Description       *string `json:"description"`
	Type              TypeRef `json:"type"`
	DefaultValue      *string `json:"defaultValue"`
	IsDeprecated      bool    `json:"isDeprecated"`
	DeprecationReason *string `json:"deprecationReason"`
}

type EnumValue struct {
	Name              string  `json:"name"`
	Description       *string `json:"description"`
	IsDeprecated      bool    `json:"isDeprecated"`
	DeprecationReason *string `json:"deprecationReason"`
}

type Directive struct {
	Name         string       `json:"name"`
	Description  *string      `json:"description"`
	Locations    []string     `json:"locations"`
	Args         []InputValue `json:"args"`
	IsRepeatable bool         `json:"isRepeatable"`
}

// Options mirror the includeDeprecated arguments of the introspection
// query; they apply to fields, arguments, input fields and enum values.
type Options struct {
	IncludeDeprecated bool
}

// Describe builds the introspection view of s. Types, directives and
// members are sorted by name.
func Describe(s *schema.Schema, opts Options) *Schema {
	d := describer{schema: s, opts: opts}
	out := &Schema{
		Description:      text(s.Description),
		QueryType:        d.typeName(s.GetQueryType()),
		MutationType:     d.typeName(s.GetMutationType()),
		SubscriptionType: d.typeName(s.GetSubscriptionType()),
		Types:            []Type{},
		Directives:       []Directive{},
	}
	for _, name := range sortedKeys(s.Types) {
		out.Types = append(out.Types, d.namedType(s.Types[name]))
	}
	for _, name := range sortedKeys(s.Directives) {
		out.Directives = append(out.Directives, d.directive(s.Directives[name]))
	}
	return out
}

type describer struct {
	schema *schema.Schema
	opts   Options
}

func (d describer) typeName(t *schema.Type) *TypeName {
	if t == nil {
		return nil
	}
	return &TypeName{Name: t.Name}
}

func (d describer) namedType(t *schema.Type) Type {
	out := Type{
		Kind:        string(t.Kind),
		Name:        t.Name,
		Description: text(t.Description),
	}
	switch t.Kind {
	case schema.TypeKindScalar:
		out.SpecifiedByURL = t.SpecifiedByURL
	case schema.TypeKindObject, schema.TypeKindInterface:
		out.Fields = []Field{}
		for _, f := range sortedByName(t.Fields, func(f *schema.Field) string { return f.Name }) {
			if f.IsDeprecated && !d.opts.IncludeDeprecated {
				continue
			}
			out.Fields = append(out.Fields, d.field(f))
		}
		out.Interfaces = d.refs(t.Interfaces)
		if t.Kind == schema.TypeKindInterface {
			out.PossibleTypes = d.refs(t.PossibleTypes)
		}
	case schema.TypeKindUnion:
		out.PossibleTypes = d.refs(t.PossibleTypes)
	case schema.TypeKindEnum:
		out.EnumValues = []EnumValue{}
		for _, v := range sortedByName(t.EnumValues, func(v *schema.EnumValue) string { return v.Name }) {
			if v.IsDeprecated && !d.opts.IncludeDeprecated {
				continue
			}
			out.EnumValues = append(out.EnumValues, EnumValue{
				Name:              v.Name,
				Description:       text(v.Description),
				IsDeprecated:      v.IsDeprecated,
				DeprecationReason: reason(v.IsDeprecated, v.DeprecationReason),
			})
		}
	case schema.TypeKindInputObject:
		out.InputFields = d.inputValues(t.InputFields)
		oneOf := t.OneOf
		out.IsOneOf = &oneOf
	}
	return out
}

func (d describer) field(f *schema.Field) Field {
	return Field{
		Name:              f.Name,
		Description:       text(f.Description),
		Args:              d.inputValues(f.Arguments),
		Type:              d.typeRef(f.Type),
		IsDeprecated:      f.IsDeprecated,
		DeprecationReason: reason(f.IsDeprecated, f.DeprecationReason),
	}
}

func (d describer) inputValues(values []*schema.InputValue) []InputValue {
	out := []InputValue{}
	for _, v := range sortedByName(values, func(v *schema.InputValue) string { return v.Name }) {
		if v.IsDeprecated && !d.opts.IncludeDeprecated {
			continue
		}
		iv := InputValue{
			Name:              v.Name,
			Description:       text(v.Description),
			Type:              d.typeRef(v.Type),
			IsDeprecated:      v.IsDeprecated,
			DeprecationReason: reason(v.IsDeprecated, v.DeprecationReason),
		}
		if v.DefaultValue != nil {
			def := v.DefaultValue.String()
			iv.DefaultValue = &def
		}
		out = append(out, iv)
	}
	return out
}

func (d describer) directive(dir *schema.Directive) Directive {
	locs := append([]string{}, dir.Locations...)
	sort.Strings(locs)
	return Directive{
		Name:         dir.Name,
		Description:  text(dir.Description),
		Locations:    locs,
		Args:         d.inputValues(dir.Arguments),
		IsRepeatable: dir.IsRepeatable,
	}
}

func (d describer) typeRef(t *schema.TypeRef) TypeRef {
	switch t.Kind {
	case schema.TypeRefKindNonNull, schema.TypeRefKindList:
		inner := d.typeRef(t.OfType)
		return TypeRef{Kind: string(t.Kind), OfType: &inner}
	default:
		name := t.Named
		kind := ""
		if def := d.schema.Types[name]; def != nil {
			kind = string(def.Kind)
		}
		return TypeRef{Kind: kind, Name: &name}
	}
}

func (d describer) refs(names []string) []TypeRef {
	out := []TypeRef{}
	sorted := append([]string{}, names...)
	sort.Strings(sorted)
	for _, name := range sorted {
		if _, ok := d.schema.Types[name]; ok {
			out = append(out, d.typeRef(schema.NamedType(name)))
		}
	}
	return out
}

// text maps the "unset" empty string to null.
func text(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func reason(deprecated bool, r string) *string {
	if !deprecated {
		return nil
	}
	return &r
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedByName[T any](items []T, name func(T) string) []T {
	out := append([]T(nil), items...)
	sort.SliceStable(out, func(i, j int) bool { return name(out[i]) < name(out[j]) })
	return out
}
