package schema

import (
	"sort"
	"strconv"
	"strings"
)

// Render produces SDL from the Schema.
// Deterministic ordering: type/directive names sorted lexicographically,
// members in declaration order.
func Render(s *Schema) string {
	if s == nil {
		return ""
	}
	var b strings.Builder

	if s.rootsAreCustom() {
		renderSchemaDefinition(&b, s)
	}

	typeNames := make([]string, 0, len(s.Types))
	for name, typ := range s.Types {
		if !isBuiltinType(typ) {
			typeNames = append(typeNames, name)
		}
	}
	sort.Strings(typeNames)

	for _, name := range typeNames {
		typ := s.Types[name]
		switch typ.Kind {
		case TypeKindScalar:
			renderScalar(&b, typ)
		case TypeKindEnum:
			renderEnum(&b, typ)
		case TypeKindInputObject:
			renderInputObject(&b, typ)
		case TypeKindObject:
			renderComposite(&b, "type", typ)
		case TypeKindInterface:
			renderComposite(&b, "interface", typ)
		case TypeKindUnion:
			renderUnion(&b, typ)
		}
	}

	directiveNames := make([]string, 0, len(s.Directives))
	for name, directive := range s.Directives {
		if !isBuiltinDirective(directive) {
			directiveNames = append(directiveNames, name)
		}
	}
	sort.Strings(directiveNames)
	for _, name := range directiveNames {
		renderDirective(&b, s.Directives[name])
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// rootsAreCustom reports whether the root operation types deviate from the
// default names and need an explicit schema block.
func (s *Schema) rootsAreCustom() bool {
	return (s.QueryType != "" && s.QueryType != "Query") ||
		(s.MutationType != "" && s.MutationType != "Mutation") ||
		(s.SubscriptionType != "" && s.SubscriptionType != "Subscription")
}

// ----- render helpers -----

func renderSchemaDefinition(b *strings.Builder, s *Schema) {
	b.WriteString("schema {\n")
	for _, root := range [][2]string{
		{"query", s.QueryType},
		{"mutation", s.MutationType},
		{"subscription", s.SubscriptionType},
	} {
		if root[1] == "" {
			continue
		}
		b.WriteString("  " + root[0] + ": " + root[1] + "\n")
	}
	b.WriteString("}\n\n")
}

func renderDescription(b *strings.Builder, desc, indent string) {
	if desc == "" {
		return
	}
	b.WriteString(indent + "\"\"\"\n")
	for _, line := range strings.Split(strings.ReplaceAll(desc, `"""`, `\"""`), "\n") {
		b.WriteString(indent + line + "\n")
	}
	b.WriteString(indent + "\"\"\"\n")
}

func renderDeprecation(b *strings.Builder, deprecated bool, reason string) {
	if !deprecated {
		return
	}
	b.WriteString(" @deprecated")
	if reason != "" && reason != DefaultDeprecationReason {
		b.WriteString("(reason: " + strconv.Quote(reason) + ")")
	}
}

func renderInputValue(b *strings.Builder, v *InputValue) {
	b.WriteString(v.Name + ": " + v.Type.String())
	if v.DefaultValue != nil {
		b.WriteString(" = " + v.DefaultValue.String())
	}
	renderDeprecation(b, v.IsDeprecated, v.DeprecationReason)
}

func renderArguments(b *strings.Builder, args []*InputValue) {
	if len(args) == 0 {
		return
	}
	b.WriteString("(")
	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		renderInputValue(b, arg)
	}
	b.WriteString(")")
}

func renderScalar(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description, "")
	b.WriteString("scalar " + typ.Name)
	if typ.SpecifiedByURL != nil {
		b.WriteString(" @specifiedBy(url: " + strconv.Quote(*typ.SpecifiedByURL) + ")")
	}
	b.WriteString("\n\n")
}

func renderEnum(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description, "")
	b.WriteString("enum " + typ.Name + " {\n")
	for _, val := range typ.EnumValues {
		renderDescription(b, val.Description, "  ")
		b.WriteString("  " + val.Name)
		renderDeprecation(b, val.IsDeprecated, val.DeprecationReason)
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
}

func renderInputObject(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description, "")
	b.WriteString("input " + typ.Name)
	if typ.OneOf {
		b.WriteString(" @oneOf")
	}
	b.WriteString(" {\n")
	for _, field := range typ.InputFields {
		renderDescription(b, field.Description, "  ")
		b.WriteString("  ")
		renderInputValue(b, field)
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
}

func renderComposite(b *strings.Builder, keyword string, typ *Type) {
	renderDescription(b, typ.Description, "")
	b.WriteString(keyword + " " + typ.Name)
	if len(typ.Interfaces) > 0 {
		b.WriteString(" implements " + strings.Join(typ.Interfaces, " & "))
	}
	b.WriteString(" {\n")
	for _, field := range typ.Fields {
		renderDescription(b, field.Description, "  ")
		b.WriteString("  " + field.Name)
		renderArguments(b, field.Arguments)
		b.WriteString(": " + field.Type.String())
		renderDeprecation(b, field.IsDeprecated, field.DeprecationReason)
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
}

func renderUnion(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description, "")
	b.WriteString("union " + typ.Name + " = " + strings.Join(typ.PossibleTypes, " | ") + "\n\n")
}

func renderDirective(b *strings.Builder, directive *Directive) {
	renderDescription(b, directive.Description, "")
	b.WriteString("directive @" + directive.Name)
	renderArguments(b, directive.Arguments)
	if directive.IsRepeatable {
		b.WriteString(" repeatable")
	}
	b.WriteString(" on " + strings.Join(directive.Locations, " | ") + "\n\n")
}
