// Package scalar converts values across the boundary of GraphQL scalar types.
//
// ParseValue handles values that arrive already deserialized (variables),
// ParseLiteral handles literal nodes parsed from a document, and Serialize
// handles host values produced by resolvers. None of them log or retain
// state, so a Scalar may be shared freely between goroutines.
package scalar

import (
	"reflect"

	language "github.com/hanpama/graphtype/internal/language"
)

// Scalar is a named leaf type.
type Scalar interface {
	Name() string
	// ParseValue converts an externally supplied value. nil means null.
	ParseValue(raw any) (any, error)
	// ParseLiteral converts a literal node. A null literal yields nil.
	ParseLiteral(value *language.Value) (any, error)
	// Serialize converts a host value for output.
	Serialize(value any) (any, error)
	// CanSerializeList reports whether list has a shape this scalar can
	// serialize; allowNulls answers the nullability question being asked.
	CanSerializeList(list any, allowNulls bool) bool
	// SerializeList returns list unchanged.
	SerializeList(list any) any
}

// Registry maps scalar names to implementations.
type Registry map[string]Scalar

// Builtins returns a fresh registry holding the specified scalars and Decimal.
func Builtins() Registry {
	return Registry{
		Int.Name():     Int,
		Float.Name():   Float,
		String.Name():  String,
		Boolean.Name(): Boolean,
		ID.Name():      ID,
		Decimal.Name(): Decimal,
	}
}

// Register adds s, replacing any scalar of the same name.
func (r Registry) Register(s Scalar) Registry {
	r[s.Name()] = s
	return r
}

// Lookup returns the scalar called name.
func (r Registry) Lookup(name string) (Scalar, bool) {
	s, ok := r[name]
	return s, ok
}

// listShape implements the list half of Scalar. It checks container and
// element presence only, never element values.
type listShape struct{}

func (listShape) CanSerializeList(list any, allowNulls bool) bool {
	if list == nil {
		return allowNulls
	}
	rv := reflect.ValueOf(list)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return allowNulls
		}
	case reflect.Array:
	default:
		return false
	}
	if allowNulls {
		return true
	}
	for i := 0; i < rv.Len(); i++ {
		if isNil(rv.Index(i)) {
			return false
		}
	}
	return true
}

func (listShape) SerializeList(list any) any { return list }

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Interface:
		return v.IsNil() || isNil(v.Elem())
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}
