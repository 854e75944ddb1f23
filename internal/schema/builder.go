package schema

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	eventbus "github.com/hanpama/graphtype/internal/eventbus"
	events "github.com/hanpama/graphtype/internal/events"
	reqid "github.com/hanpama/graphtype/internal/reqid"
)

// BuildFromSDL parses and validates sdl, converts it into a Schema and then
// installs the overrides held by cfg. cfg may be nil.
func BuildFromSDL(sdl string, cfg *Config) (*Schema, error) {
	return BuildFromSource("schema.graphql", sdl, cfg)
}

// BuildFromSource is BuildFromSDL with a source name used in error positions.
func BuildFromSource(name, sdl string, cfg *Config) (*Schema, error) {
	return Build(context.Background(), name, sdl, cfg)
}

// Build is BuildFromSource publishing SchemaBuildStart and SchemaBuildFinish
// on the global event bus.
func Build(ctx context.Context, name, sdl string, cfg *Config) (s *Schema, err error) {
	ctx, _ = reqid.Ensure(ctx)
	start := time.Now()
	eventbus.Publish(ctx, events.SchemaBuildStart{Source: name})
	defer func() {
		fin := events.SchemaBuildFinish{Source: name, Err: err, Duration: time.Since(start)}
		if s != nil {
			fin.Types = len(s.Types)
		}
		eventbus.Publish(ctx, fin)
	}()

	doc, gerr := gqlparser.LoadSchema(&ast.Source{Name: name, Input: sdl})
	if gerr != nil {
		return nil, fmt.Errorf("load schema: %w", gerr)
	}
	s = buildFromAST(doc)
	if cfg != nil {
		if err := cfg.apply(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func buildFromAST(doc *ast.Schema) *Schema {
	s := NewSchema("")
	if doc.Query != nil {
		s.SetQueryType(doc.Query.Name)
	}
	if doc.Mutation != nil {
		s.SetMutationType(doc.Mutation.Name)
	}
	if doc.Subscription != nil {
		s.SetSubscriptionType(doc.Subscription.Name)
	}
	s.AddType(stringType).
		AddType(intType).
		AddType(floatType).
		AddType(booleanType).
		AddType(idType)
	s.AddDirective(includeDirective).
		AddDirective(skipDirective).
		AddDirective(deprecatedDirective)

	for _, def := range doc.Types {
		if def.BuiltIn {
			continue
		}
		s.AddType(buildType(def))
	}
	for _, dir := range doc.Directives {
		if dir.Position != nil && dir.Position.Src != nil && dir.Position.Src.BuiltIn {
			continue
		}
		s.AddDirective(buildDirective(dir))
	}
	return s
}

func buildType(def *ast.Definition) *Type {
	switch def.Kind {
	case ast.Object, ast.Interface:
		kind := TypeKindObject
		if def.Kind == ast.Interface {
			kind = TypeKindInterface
		}
		t := NewType(def.Name, kind, def.Description)
		for _, name := range def.Interfaces {
			t.AddInterface(name)
		}
		for _, f := range def.Fields {
			if strings.HasPrefix(f.Name, "__") {
				continue
			}
			t.AddField(buildField(f))
		}
		return t
	case ast.Union:
		t := NewType(def.Name, TypeKindUnion, def.Description)
		for _, name := range def.Types {
			t.AddPossibleType(name)
		}
		return t
	case ast.Enum:
		t := NewType(def.Name, TypeKindEnum, def.Description)
		for _, v := range def.EnumValues {
			e := NewEnumValue(v.Name, v.Description)
			if ok, reason := deprecation(v.Directives); ok {
				e.Deprecate(reason)
			}
			t.AddEnumValue(e)
		}
		return t
	case ast.InputObject:
		t := NewType(def.Name, TypeKindInputObject, def.Description).
			SetOneOf(def.Directives.ForName("oneOf") != nil)
		for _, f := range def.Fields {
			t.AddInputField(buildInputValue(f.Name, f.Description, f.Type, f.DefaultValue, f.Directives))
		}
		return t
	default:
		t := NewType(def.Name, TypeKindScalar, def.Description)
		if d := def.Directives.ForName("specifiedBy"); d != nil {
			if url := d.Arguments.ForName("url"); url != nil && url.Value != nil {
				t.SetSpecifiedByURL(url.Value.Raw)
			}
		}
		return t
	}
}

func buildField(def *ast.FieldDefinition) *Field {
	f := NewField(def.Name, def.Description, TypeRefFromAST(def.Type))
	if ok, reason := deprecation(def.Directives); ok {
		f.Deprecate(reason)
	}
	for _, arg := range def.Arguments {
		f.AddArgument(buildInputValue(arg.Name, arg.Description, arg.Type, arg.DefaultValue, arg.Directives))
	}
	return f
}

func buildInputValue(name, description string, typ *ast.Type, def *ast.Value, dirs ast.DirectiveList) *InputValue {
	in := NewInputValue(name, description, TypeRefFromAST(typ)).SetDefault(def)
	if ok, reason := deprecation(dirs); ok {
		in.Deprecate(reason)
	}
	return in
}

func buildDirective(dir *ast.DirectiveDefinition) *Directive {
	d := NewDirective(dir.Name, dir.Description).SetRepeatable(dir.IsRepeatable)
	for _, loc := range dir.Locations {
		d.Locations = append(d.Locations, string(loc))
	}
	for _, arg := range dir.Arguments {
		d.AddArgument(buildInputValue(arg.Name, arg.Description, arg.Type, arg.DefaultValue, arg.Directives))
	}
	return d
}

func deprecation(dirs ast.DirectiveList) (bool, string) {
	d := dirs.ForName("deprecated")
	if d == nil {
		return false, ""
	}
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return true, arg.Value.Raw
	}
	return true, DefaultDeprecationReason
}
