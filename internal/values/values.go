// Package values coerces input values (variables, arguments and literals)
// against schema type references, and completes scalar lists for output.
package values

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"sync/atomic"
	"time"

	eventbus "github.com/hanpama/graphtype/internal/eventbus"
	events "github.com/hanpama/graphtype/internal/events"
	language "github.com/hanpama/graphtype/internal/language"
	reqid "github.com/hanpama/graphtype/internal/reqid"
	scalar "github.com/hanpama/graphtype/internal/scalar"
	schema "github.com/hanpama/graphtype/internal/schema"
)

// Error locates a coercion failure inside a variable or argument value.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string { return e.Path + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

func fail(path string, err error) error {
	if path == "" {
		return err
	}
	return &Error{Path: path, Err: err}
}

func field(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func index(path string, i int) string { return path + "[" + strconv.Itoa(i) + "]" }

// Coercer coerces values against the types of one schema.
type Coercer struct {
	schema  *schema.Schema
	scalars scalar.Registry
}

// New returns a Coercer for s. A nil registry means scalar.Builtins().
func New(s *schema.Schema, scalars scalar.Registry) *Coercer {
	if scalars == nil {
		scalars = scalar.Builtins()
	}
	return &Coercer{schema: s, scalars: scalars}
}

var calls atomic.Uint64

func observe[T any](ctx context.Context, typ string, fn func() (T, error)) (T, error) {
	ctx, _ = reqid.Ensure(ctx)
	call := calls.Add(1)
	start := time.Now()
	eventbus.Publish(ctx, events.CoercionStart{Call: call, Type: typ})
	v, err := fn()
	eventbus.Publish(ctx, events.CoercionFinish{Call: call, Type: typ, Err: err, Duration: time.Since(start)})
	return v, err
}

// Coerce converts an externally supplied value, such as a decoded JSON
// variable, to type t.
func (c *Coercer) Coerce(ctx context.Context, value any, t *schema.TypeRef) (any, error) {
	return observe(ctx, t.String(), func() (any, error) { return c.coerce(value, t, "") })
}

// CoerceLiteral converts a literal node to type t. Variable references are
// looked up in vars, which must already be coerced.
func (c *Coercer) CoerceLiteral(ctx context.Context, lit *language.Value, t *schema.TypeRef, vars map[string]any) (any, error) {
	return observe(ctx, t.String(), func() (any, error) { return c.coerceLiteral(lit, t, vars, "") })
}

// VariableValues coerces the raw variables of op. Missing variables take
// their default value; missing non-null variables without a default fail.
func (c *Coercer) VariableValues(ctx context.Context, op *language.OperationDefinition, raw map[string]any) (map[string]any, error) {
	return observe(ctx, "variables", func() (map[string]any, error) {
		coerced := make(map[string]any, len(op.VariableDefinitions))
		for _, def := range op.VariableDefinitions {
			name := def.Variable
			t := schema.TypeRefFromAST(def.Type)
			path := "$" + name
			val, ok := raw[name]
			if !ok {
				switch {
				case def.DefaultValue != nil:
					v, err := c.coerceLiteral(def.DefaultValue, t, nil, path)
					if err != nil {
						return nil, err
					}
					coerced[name] = v
				case t.IsNonNull():
					return nil, fmt.Errorf("variable $%s of required type %s was not provided", name, t)
				}
				continue
			}
			v, err := c.coerce(val, t, path)
			if err != nil {
				return nil, err
			}
			coerced[name] = v
		}
		return coerced, nil
	})
}

// ArgumentValues coerces the arguments supplied to f.
func (c *Coercer) ArgumentValues(ctx context.Context, f *schema.Field, args language.ArgumentList, vars map[string]any) (map[string]any, error) {
	return observe(ctx, "arguments", func() (map[string]any, error) {
		for _, arg := range args {
			if f.Argument(arg.Name) == nil {
				return nil, fmt.Errorf("unknown argument '%s' on field '%s'", arg.Name, f.Name)
			}
		}
		coerced := make(map[string]any, len(f.Arguments))
		for _, def := range f.Arguments {
			arg := args.ForName(def.Name)
			present := arg != nil
			if present && arg.Value.Kind == language.Variable {
				_, present = vars[arg.Value.Raw]
			}
			if !present {
				switch {
				case def.DefaultValue != nil:
					v, err := c.coerceLiteral(def.DefaultValue, def.Type, nil, def.Name)
					if err != nil {
						return nil, err
					}
					coerced[def.Name] = v
				case def.Type.IsNonNull():
					return nil, fmt.Errorf("argument '%s' of required type %s was not provided", def.Name, def.Type)
				}
				continue
			}
			v, err := c.coerceLiteral(arg.Value, def.Type, vars, def.Name)
			if err != nil {
				return nil, err
			}
			coerced[def.Name] = v
		}
		return coerced, nil
	})
}

func nullError(t *schema.TypeRef, value any) error {
	return &scalar.CoercionError{Scalar: t.String(), Reason: scalar.DisallowedNull, Value: value}
}

func (c *Coercer) coerce(value any, t *schema.TypeRef, path string) (any, error) {
	if t.IsNonNull() {
		if value == nil {
			return nil, fail(path, nullError(t, value))
		}
		return c.coerce(value, t.OfType, path)
	}
	if value == nil {
		return nil, nil
	}
	if t.IsList() {
		items, ok := value.([]any)
		if !ok {
			v, err := c.coerce(value, t.OfType, path)
			if err != nil {
				return nil, err
			}
			return []any{v}, nil
		}
		out := make([]any, len(items))
		for i, item := range items {
			v, err := c.coerce(item, t.OfType, index(path, i))
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}

	named, err := c.namedType(t.Named, path)
	if err != nil {
		return nil, err
	}
	switch named.Kind {
	case schema.TypeKindScalar:
		sc, err := c.scalar(named.Name, path)
		if err != nil {
			return nil, err
		}
		v, err := sc.ParseValue(value)
		if err != nil {
			return nil, fail(path, err)
		}
		return v, nil
	case schema.TypeKindEnum:
		name, ok := value.(string)
		if !ok || named.EnumValue(name) == nil {
			return nil, fail(path, fmt.Errorf("%v is not a value of enum %s", value, named.Name))
		}
		return name, nil
	case schema.TypeKindInputObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return nil, fail(path, fmt.Errorf("input object %s expects an object, got %T", named.Name, value))
		}
		return c.inputObject(named, path, func(name string) (fieldValue, bool) {
			v, ok := obj[name]
			return fieldValue{raw: v}, ok
		}, keys(obj))
	default:
		return nil, fail(path, fmt.Errorf("%s is not an input type", named.Name))
	}
}

func (c *Coercer) coerceLiteral(lit *language.Value, t *schema.TypeRef, vars map[string]any, path string) (any, error) {
	if lit != nil && lit.Kind == language.Variable {
		v := vars[lit.Raw]
		if v == nil && t.IsNonNull() {
			return nil, fail(path, nullError(t, v))
		}
		return v, nil
	}
	if t.IsNonNull() {
		if lit == nil || lit.Kind == language.NullValue {
			return nil, fail(path, nullError(t, lit))
		}
		return c.coerceLiteral(lit, t.OfType, vars, path)
	}
	if lit == nil || lit.Kind == language.NullValue {
		return nil, nil
	}
	if t.IsList() {
		if lit.Kind != language.ListValue {
			v, err := c.coerceLiteral(lit, t.OfType, vars, path)
			if err != nil {
				return nil, err
			}
			return []any{v}, nil
		}
		out := make([]any, len(lit.Children))
		for i, child := range lit.Children {
			v, err := c.coerceLiteral(child.Value, t.OfType, vars, index(path, i))
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}

	named, err := c.namedType(t.Named, path)
	if err != nil {
		return nil, err
	}
	switch named.Kind {
	case schema.TypeKindScalar:
		sc, err := c.scalar(named.Name, path)
		if err != nil {
			return nil, err
		}
		v, err := sc.ParseLiteral(lit)
		if err != nil {
			return nil, fail(path, err)
		}
		return v, nil
	case schema.TypeKindEnum:
		if lit.Kind != language.EnumValue || named.EnumValue(lit.Raw) == nil {
			return nil, fail(path, fmt.Errorf("%s is not a value of enum %s", lit.String(), named.Name))
		}
		return lit.Raw, nil
	case schema.TypeKindInputObject:
		if lit.Kind != language.ObjectValue {
			return nil, fail(path, fmt.Errorf("input object %s expects an object, got %s", named.Name, lit.String()))
		}
		names := make([]string, len(lit.Children))
		for i, child := range lit.Children {
			names[i] = child.Name
		}
		return c.inputObject(named, path, func(name string) (fieldValue, bool) {
			for _, child := range lit.Children {
				if child.Name != name {
					continue
				}
				if child.Value.Kind == language.Variable {
					if _, ok := vars[child.Value.Raw]; !ok {
						return fieldValue{}, false
					}
				}
				return fieldValue{lit: child.Value, vars: vars, isLiteral: true}, true
			}
			return fieldValue{}, false
		}, names)
	default:
		return nil, fail(path, fmt.Errorf("%s is not an input type", named.Name))
	}
}

// fieldValue is one supplied input object field, either already decoded or
// still a literal.
type fieldValue struct {
	raw       any
	lit       *language.Value
	vars      map[string]any
	isLiteral bool
}

func (c *Coercer) inputObject(t *schema.Type, path string, lookup func(string) (fieldValue, bool), supplied []string) (any, error) {
	for _, name := range supplied {
		if t.InputField(name) == nil {
			return nil, fail(path, fmt.Errorf("unknown field '%s' on input object %s", name, t.Name))
		}
	}
	out := make(map[string]any, len(t.InputFields))
	for _, def := range t.InputFields {
		fpath := field(path, def.Name)
		fv, ok := lookup(def.Name)
		if !ok {
			switch {
			case def.DefaultValue != nil:
				v, err := c.coerceLiteral(def.DefaultValue, def.Type, nil, fpath)
				if err != nil {
					return nil, err
				}
				out[def.Name] = v
			case def.Type.IsNonNull():
				return nil, fail(path, fmt.Errorf("required field '%s' of type %s was not provided", def.Name, def.Type))
			}
			continue
		}
		var v any
		var err error
		if fv.isLiteral {
			v, err = c.coerceLiteral(fv.lit, def.Type, fv.vars, fpath)
		} else {
			v, err = c.coerce(fv.raw, def.Type, fpath)
		}
		if err != nil {
			return nil, err
		}
		out[def.Name] = v
	}
	if t.OneOf {
		set := 0
		for _, v := range out {
			if v != nil {
				set++
			}
		}
		if set != 1 || len(out) != 1 {
			return nil, fail(path, fmt.Errorf("oneOf input object %s requires exactly one non-null field", t.Name))
		}
	}
	return out, nil
}

// CompleteList checks a resolved list against a list type whose items are
// scalars and returns it serialized. A nil list is only accepted when t is
// nullable; nil elements only when the item type is nullable.
func (c *Coercer) CompleteList(t *schema.TypeRef, list any) (any, error) {
	listType := t
	if t.IsNonNull() {
		listType = t.OfType
	}
	if !listType.IsList() {
		return nil, fmt.Errorf("%s is not a list type", t)
	}
	item := listType.OfType
	sc, err := c.scalar(item.GetNamedType(), "")
	if err != nil {
		return nil, err
	}
	if item.IsList() || (item.IsNonNull() && item.OfType.IsList()) {
		return nil, fmt.Errorf("nested list %s cannot be completed as a scalar list", t)
	}
	if isNilList(list) {
		if t.IsNonNull() {
			return nil, nullError(t, list)
		}
		return nil, nil
	}
	if !sc.CanSerializeList(list, true) {
		return nil, &scalar.CoercionError{Scalar: t.String(), Reason: scalar.UnsupportedShape, Value: list}
	}
	if !sc.CanSerializeList(list, !item.IsNonNull()) {
		return nil, nullError(item, list)
	}
	return sc.SerializeList(list), nil
}

func isNilList(list any) bool {
	if list == nil {
		return true
	}
	rv := reflect.ValueOf(list)
	return rv.Kind() == reflect.Slice && rv.IsNil()
}

var errUnknownType = errors.New("unknown type")

func (c *Coercer) namedType(name, path string) (*schema.Type, error) {
	t, ok := c.schema.Types[name]
	if !ok {
		return nil, fail(path, fmt.Errorf("%w %s", errUnknownType, name))
	}
	return t, nil
}

func (c *Coercer) scalar(name, path string) (scalar.Scalar, error) {
	sc, ok := c.scalars.Lookup(name)
	if !ok {
		return nil, fail(path, fmt.Errorf("no implementation registered for scalar %s", name))
	}
	return sc, nil
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
