package metadata

import (
	"fmt"

	schema "github.com/hanpama/graphtype/internal/schema"
)

// Apply overlays a onto target. The switch covers every TargetKind below
// numTargetKinds; the zero Target is a caller error and panics. A nil
// annotation, or a target built from a nil node, is a no-op.
func (a *Annotation) Apply(target Target) {
	if a == nil || target.isNil() {
		return
	}
	switch target.kind {
	case TypeConfigKind:
		c := target.typeConfig
		overlayOptional(&c.Description, a.description)
		overlayOptional(&c.DeprecationReason, a.deprecationReason)
		if a.isTypeOf != nil {
			c.IsTypeOf = typeCheck(a.isTypeOf)
		}
	case FieldConfigKind:
		c := target.fieldConfig
		overlayOptional(&c.Description, a.description)
		overlayOptional(&c.DeprecationReason, a.deprecationReason)
	case EnumValueKind:
		v := target.enumValue
		overlayName(&v.Name, a.name)
		overlayText(&v.Description, a.description)
		overlayDeprecation(&v.IsDeprecated, &v.DeprecationReason, a.deprecationReason)
	case GraphTypeKind:
		t := target.graphType
		overlayName(&t.Name, a.name)
		overlayText(&t.Description, a.description)
		overlayDeprecation(&t.IsDeprecated, &t.DeprecationReason, a.deprecationReason)
		if a.isTypeOf != nil && t.Kind == schema.TypeKindObject {
			t.IsTypeOf = typeCheck(a.isTypeOf)
		}
	case FieldKind:
		f := target.field
		overlayName(f.name, a.name)
		overlayText(f.description, a.description)
		overlayDeprecation(f.isDeprecated, f.deprecationReason, a.deprecationReason)
	default:
		panic(fmt.Sprintf("metadata: apply to invalid target %v", target.kind))
	}
}

// overlayOptional handles targets that keep "unset" distinct from "".
func overlayOptional(dst **string, v *string) {
	if v == nil {
		return
	}
	if *v == "" {
		*dst = nil
		return
	}
	s := *v
	*dst = &s
}

// overlayText handles live nodes, where "" already means unset.
func overlayText(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func overlayDeprecation(deprecated *bool, reason *string, v *string) {
	if v == nil {
		return
	}
	*deprecated = *v != ""
	*reason = *v
}

// Names cannot be unset, so an empty name is ignored.
func overlayName(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}
