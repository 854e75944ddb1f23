package schema

import (
	"fmt"

	language "github.com/hanpama/graphtype/internal/language"
)

// Schema represents the complete GraphQL schema
type Schema struct {
	QueryType        string
	MutationType     string
	SubscriptionType string
	Types            map[string]*Type // All named types keyed by name
	Directives       map[string]*Directive
	Description      string
}

// NewSchema returns an empty schema.
func NewSchema(description string) *Schema {
	return &Schema{
		Types:       make(map[string]*Type),
		Directives:  make(map[string]*Directive),
		Description: description,
	}
}

func (s *Schema) SetQueryType(name string) *Schema        { s.QueryType = name; return s }
func (s *Schema) SetMutationType(name string) *Schema     { s.MutationType = name; return s }
func (s *Schema) SetSubscriptionType(name string) *Schema { s.SubscriptionType = name; return s }

// AddType registers t under its name, replacing any previous type.
func (s *Schema) AddType(t *Type) *Schema { s.Types[t.Name] = t; return s }

// AddDirective registers d under its name, replacing any previous directive.
func (s *Schema) AddDirective(d *Directive) *Schema { s.Directives[d.Name] = d; return s }

// GetQueryType returns the root query type (may be nil if absent)
func (s *Schema) GetQueryType() *Type { return s.Types[s.QueryType] }

// GetMutationType returns the root mutation type (may be nil if absent)
func (s *Schema) GetMutationType() *Type { return s.Types[s.MutationType] }

// GetSubscriptionType returns the root subscription type (may be nil if absent)
func (s *Schema) GetSubscriptionType() *Type { return s.Types[s.SubscriptionType] }

// RenameType moves the type registered as oldName to newName and rewrites
// every reference to it. The type's own Name may already hold newName.
func (s *Schema) RenameType(oldName, newName string) error {
	if oldName == newName {
		return nil
	}
	t, ok := s.Types[oldName]
	if !ok {
		return fmt.Errorf("rename %s: unknown type", oldName)
	}
	if _, taken := s.Types[newName]; taken {
		return fmt.Errorf("rename %s: type %s already exists", oldName, newName)
	}
	delete(s.Types, oldName)
	t.Name = newName
	s.Types[newName] = t

	rename := func(name *string) {
		if *name == oldName {
			*name = newName
		}
	}
	rename(&s.QueryType)
	rename(&s.MutationType)
	rename(&s.SubscriptionType)
	for _, typ := range s.Types {
		for i := range typ.Interfaces {
			rename(&typ.Interfaces[i])
		}
		for i := range typ.PossibleTypes {
			rename(&typ.PossibleTypes[i])
		}
		for _, f := range typ.Fields {
			f.Type.rename(oldName, newName)
			for _, arg := range f.Arguments {
				arg.Type.rename(oldName, newName)
			}
		}
		for _, in := range typ.InputFields {
			in.Type.rename(oldName, newName)
		}
	}
	for _, d := range s.Directives {
		for _, arg := range d.Arguments {
			arg.Type.rename(oldName, newName)
		}
	}
	return nil
}

// Type is a named GraphQL type (object, interface, union, scalar, enum, input)
type Type struct {
	Name              string
	Kind              TypeKind
	Description       string
	Fields            []*Field      // For OBJECT and INTERFACE
	Interfaces        []string      // For OBJECT and INTERFACE (implemented/extended)
	PossibleTypes     []string      // For INTERFACE and UNION
	EnumValues        []*EnumValue  // For ENUM
	InputFields       []*InputValue // For INPUT_OBJECT
	SpecifiedByURL    *string
	OneOf             bool
	IsDeprecated      bool
	DeprecationReason string
	// IsTypeOf reports whether a runtime value belongs to this OBJECT type.
	IsTypeOf func(value any) bool `json:"-"`
}

func NewType(name string, kind TypeKind, description string) *Type {
	return &Type{Name: name, Kind: kind, Description: description}
}

func (t *Type) AddField(f *Field) *Type        { t.Fields = append(t.Fields, f); return t }
func (t *Type) AddInterface(name string) *Type { t.Interfaces = append(t.Interfaces, name); return t }
func (t *Type) AddPossibleType(name string) *Type {
	t.PossibleTypes = append(t.PossibleTypes, name)
	return t
}
func (t *Type) AddEnumValue(v *EnumValue) *Type     { t.EnumValues = append(t.EnumValues, v); return t }
func (t *Type) AddInputField(v *InputValue) *Type   { t.InputFields = append(t.InputFields, v); return t }
func (t *Type) SetOneOf(oneOf bool) *Type           { t.OneOf = oneOf; return t }
func (t *Type) SetSpecifiedByURL(url string) *Type  { t.SpecifiedByURL = &url; return t }
func (t *Type) SetIsTypeOf(fn func(any) bool) *Type { t.IsTypeOf = fn; return t }

func (t *Type) Deprecate(reason string) *Type {
	t.IsDeprecated, t.DeprecationReason = true, reason
	return t
}

func (t *Type) Undeprecate() *Type {
	t.IsDeprecated, t.DeprecationReason = false, ""
	return t
}

// Field returns the output field called name, or nil.
func (t *Type) Field(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// InputField returns the input field called name, or nil.
func (t *Type) InputField(name string) *InputValue {
	for _, f := range t.InputFields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// EnumValue returns the enum value called name, or nil.
func (t *Type) EnumValue(name string) *EnumValue {
	for _, v := range t.EnumValues {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// Field represents a field on an object or interface
type Field struct {
	Name              string
	Description       string
	Type              *TypeRef
	Arguments         []*InputValue
	Stream            bool // resolved as a subscription event stream
	IsDeprecated      bool
	DeprecationReason string
}

func NewField(name, description string, typ *TypeRef) *Field {
	return &Field{Name: name, Description: description, Type: typ}
}

func (f *Field) AddArgument(arg *InputValue) *Field { f.Arguments = append(f.Arguments, arg); return f }
func (f *Field) SetStream(stream bool) *Field       { f.Stream = stream; return f }

func (f *Field) Deprecate(reason string) *Field {
	f.IsDeprecated, f.DeprecationReason = true, reason
	return f
}

func (f *Field) Undeprecate() *Field {
	f.IsDeprecated, f.DeprecationReason = false, ""
	return f
}

// Argument returns the argument called name, or nil.
func (f *Field) Argument(name string) *InputValue {
	for _, a := range f.Arguments {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// TypeKind represents the kind of GraphQL type
type TypeKind string

const (
	TypeKindScalar      TypeKind = "SCALAR"
	TypeKindObject      TypeKind = "OBJECT"
	TypeKindInterface   TypeKind = "INTERFACE"
	TypeKindUnion       TypeKind = "UNION"
	TypeKindEnum        TypeKind = "ENUM"
	TypeKindInputObject TypeKind = "INPUT_OBJECT"
)

// TypeRef represents a reference to a type (can be wrapped)
type TypeRef struct {
	Kind   TypeRefKind
	OfType *TypeRef // For List and NonNull
	Named  string   // For named types
}

type TypeRefKind string

const (
	TypeRefKindNamed   TypeRefKind = "NAMED"
	TypeRefKindList    TypeRefKind = "LIST"
	TypeRefKindNonNull TypeRefKind = "NON_NULL"
)

// Helper functions for TypeRef
func (t *TypeRef) IsNonNull() bool {
	return t != nil && t.Kind == TypeRefKindNonNull
}

func (t *TypeRef) IsList() bool {
	if t.Kind == TypeRefKindList {
		return true
	}
	if t.Kind == TypeRefKindNonNull && t.OfType != nil {
		return t.OfType.Kind == TypeRefKindList
	}
	return false
}

func (t *TypeRef) Unwrap() *TypeRef {
	if t.Kind == TypeRefKindNonNull || t.Kind == TypeRefKindList {
		return t.OfType
	}
	return t
}

func (t *TypeRef) GetNamedType() string {
	current := t
	for current != nil {
		if current.Named != "" {
			return current.Named
		}
		current = current.OfType
	}
	return ""
}

func (t *TypeRef) String() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case TypeRefKindList:
		return "[" + t.OfType.String() + "]"
	case TypeRefKindNonNull:
		return t.OfType.String() + "!"
	default:
		return t.Named
	}
}

func (t *TypeRef) rename(oldName, newName string) {
	for cur := t; cur != nil; cur = cur.OfType {
		if cur.Kind == TypeRefKindNamed && cur.Named == oldName {
			cur.Named = newName
		}
	}
}

type EnumValue struct {
	Name              string
	Description       string
	IsDeprecated      bool
	DeprecationReason string
}

func NewEnumValue(name, description string) *EnumValue {
	return &EnumValue{Name: name, Description: description}
}

func (v *EnumValue) Deprecate(reason string) *EnumValue {
	v.IsDeprecated, v.DeprecationReason = true, reason
	return v
}

func (v *EnumValue) Undeprecate() *EnumValue {
	v.IsDeprecated, v.DeprecationReason = false, ""
	return v
}

type InputValue struct {
	Name              string
	Description       string
	Type              *TypeRef
	DefaultValue      *language.Value
	IsDeprecated      bool
	DeprecationReason string
}

func NewInputValue(name, description string, typ *TypeRef) *InputValue {
	return &InputValue{Name: name, Description: description, Type: typ}
}

func (v *InputValue) SetDefault(value *language.Value) *InputValue { v.DefaultValue = value; return v }

func (v *InputValue) Deprecate(reason string) *InputValue {
	v.IsDeprecated, v.DeprecationReason = true, reason
	return v
}

func (v *InputValue) Undeprecate() *InputValue {
	v.IsDeprecated, v.DeprecationReason = false, ""
	return v
}

type Directive struct {
	Name         string
	Description  string
	Locations    []string
	Arguments    []*InputValue
	IsRepeatable bool
}

func NewDirective(name, description string) *Directive {
	return &Directive{Name: name, Description: description}
}

func (d *Directive) AddArgument(arg *InputValue) *Directive {
	d.Arguments = append(d.Arguments, arg)
	return d
}
func (d *Directive) SetRepeatable(repeatable bool) *Directive { d.IsRepeatable = repeatable; return d }

func NonNullType(t *TypeRef) *TypeRef { return &TypeRef{Kind: TypeRefKindNonNull, OfType: t} }
func ListType(t *TypeRef) *TypeRef    { return &TypeRef{Kind: TypeRefKindList, OfType: t} }
func NamedType(name string) *TypeRef  { return &TypeRef{Kind: TypeRefKindNamed, Named: name} }

// IsNonNull reports whether the type is wrapped with Non-Null.
func IsNonNull(t *TypeRef) bool { return t != nil && t.IsNonNull() }

// IsList reports whether the type is (or is wrapped by) a list type.
func IsList(t *TypeRef) bool { return t != nil && t.IsList() }

// Unwrap removes one layer of Non-Null or List wrapping and returns the inner type.
func Unwrap(t *TypeRef) *TypeRef { return t.Unwrap() }

// GetNamedType returns the innermost named type for the given reference.
func GetNamedType(t *TypeRef) string { return t.GetNamedType() }

// TypeRefFromAST converts a parsed type reference.
func TypeRefFromAST(t *language.Type) *TypeRef {
	var ref *TypeRef
	if t.Elem != nil {
		ref = ListType(TypeRefFromAST(t.Elem))
	} else {
		ref = NamedType(t.NamedType)
	}
	if t.NonNull {
		ref = NonNullType(ref)
	}
	return ref
}
