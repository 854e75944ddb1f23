package language

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func ParseSchema(name, source string) (*SchemaDocument, error) {
	doc, err := parser.ParseSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ParseType parses a type reference such as "[Decimal!]!".
func ParseType(source string) (*Type, error) {
	def, err := parseVariable(source, "")
	if err != nil {
		return nil, fmt.Errorf("parse type %q: %w", source, err)
	}
	return def.Type, nil
}

// ParseValue parses a standalone constant literal such as `[1.5, null]`.
// Variables are not allowed.
func ParseValue(source string) (*Value, error) {
	if source == "" {
		return nil, fmt.Errorf("parse literal: empty input")
	}
	def, err := parseVariable("String", source)
	if err != nil {
		return nil, fmt.Errorf("parse literal %q: %w", source, err)
	}
	return def.DefaultValue, nil
}

// parseVariable embeds the fragments into a variable definition so the
// regular document parser does the tokenizing.
func parseVariable(typ, literal string) (*ast.VariableDefinition, error) {
	src := "query($v: " + typ
	if literal != "" {
		src += " = " + literal
	}
	src += ") { __typename }"
	doc, err := parser.ParseQuery(&ast.Source{Input: src})
	if err != nil {
		return nil, err
	}
	if len(doc.Operations) != 1 || len(doc.Operations[0].VariableDefinitions) != 1 {
		return nil, fmt.Errorf("unexpected input")
	}
	return doc.Operations[0].VariableDefinitions[0], nil
}
