package metadata

import (
	"fmt"

	schema "github.com/hanpama/graphtype/internal/schema"
)

// TargetKind enumerates the closed set of overlay targets.
type TargetKind uint8

const (
	TypeConfigKind  TargetKind = iota + 1 // *schema.TypeConfig
	FieldConfigKind                       // *schema.FieldConfig
	EnumValueKind                         // *schema.EnumValue
	GraphTypeKind                         // *schema.Type
	FieldKind                             // *schema.Field or *schema.InputValue

	numTargetKinds // keep last
)

func (k TargetKind) String() string {
	switch k {
	case TypeConfigKind:
		return "type config"
	case FieldConfigKind:
		return "field config"
	case EnumValueKind:
		return "enum value"
	case GraphTypeKind:
		return "graph type"
	case FieldKind:
		return "field"
	default:
		return fmt.Sprintf("TargetKind(%d)", uint8(k))
	}
}

// Target is a tagged union over the overlay destinations. Only the
// constructors in this package produce valid targets; the zero Target is
// rejected by Apply.
type Target struct {
	kind        TargetKind
	typeConfig  *schema.TypeConfig
	fieldConfig *schema.FieldConfig
	enumValue   *schema.EnumValue
	graphType   *schema.Type
	field       liveField
}

// liveField addresses the overridable parts of an output or input field.
type liveField struct {
	name              *string
	description       *string
	isDeprecated      *bool
	deprecationReason *string
	isInputType       bool
}

// TypeConfigTarget targets a type's configuration record.
func TypeConfigTarget(c *schema.TypeConfig) Target {
	return Target{kind: TypeConfigKind, typeConfig: c}
}

// FieldConfigTarget targets a field's or enum value's configuration record.
func FieldConfigTarget(c *schema.FieldConfig) Target {
	return Target{kind: FieldConfigKind, fieldConfig: c}
}

// EnumValueTarget targets a live enum value.
func EnumValueTarget(v *schema.EnumValue) Target {
	return Target{kind: EnumValueKind, enumValue: v}
}

// GraphTypeTarget targets a live named type.
func GraphTypeTarget(t *schema.Type) Target {
	return Target{kind: GraphTypeKind, graphType: t}
}

// FieldTarget targets a field of an object or interface type.
func FieldTarget(f *schema.Field) Target {
	if f == nil {
		return Target{kind: FieldKind}
	}
	return Target{kind: FieldKind, field: liveField{
		name:              &f.Name,
		description:       &f.Description,
		isDeprecated:      &f.IsDeprecated,
		deprecationReason: &f.DeprecationReason,
	}}
}

// InputFieldTarget targets a field of an input object type or an argument.
func InputFieldTarget(v *schema.InputValue) Target {
	if v == nil {
		return Target{kind: FieldKind, field: liveField{isInputType: true}}
	}
	return Target{kind: FieldKind, field: liveField{
		name:              &v.Name,
		description:       &v.Description,
		isDeprecated:      &v.IsDeprecated,
		deprecationReason: &v.DeprecationReason,
		isInputType:       true,
	}}
}

func (t Target) Kind() TargetKind { return t.kind }

func (t Target) isNil() bool {
	switch t.kind {
	case TypeConfigKind:
		return t.typeConfig == nil
	case FieldConfigKind:
		return t.fieldConfig == nil
	case EnumValueKind:
		return t.enumValue == nil
	case GraphTypeKind:
		return t.graphType == nil
	case FieldKind:
		return t.field.name == nil
	default:
		return false
	}
}

// IsInputType reports whether a field target lives in an input context.
func (t Target) IsInputType() bool { return t.field.isInputType }
