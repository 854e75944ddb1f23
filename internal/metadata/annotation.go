// Package metadata overlays declarative annotations onto schema
// configuration records and live schema nodes.
//
// An Annotation carries optional overrides. Each override follows one rule
// on every target:
//
//   - absent (nil): the target is left alone;
//   - empty string: the target field is cleared to "unset";
//   - any other value: the target field is replaced.
//
// Apply never fails. Overrides a target cannot hold (IsTypeOf on a field,
// for instance) are ignored, because one annotation legitimately reaches
// several targets while an element flows through schema construction.
package metadata

import (
	"fmt"
	"reflect"
)

// ResolverKind tells whether an annotated member resolves a field value or
// a subscription event stream.
type ResolverKind uint8

const (
	FieldResolver ResolverKind = iota
	StreamResolver
)

func (k ResolverKind) String() string {
	switch k {
	case FieldResolver:
		return "field"
	case StreamResolver:
		return "stream"
	default:
		return fmt.Sprintf("ResolverKind(%d)", uint8(k))
	}
}

// Annotation is immutable once built; share it freely.
type Annotation struct {
	name              *string
	description       *string
	deprecationReason *string
	resolverKind      ResolverKind
	isTypeOf          reflect.Type
}

// Option configures an Annotation.
type Option func(*Annotation)

// WithName renames the target. An empty name is ignored.
func WithName(name string) Option {
	return func(a *Annotation) { a.name = &name }
}

// WithDescription sets the description; "" clears it.
func WithDescription(description string) Option {
	return func(a *Annotation) { a.description = &description }
}

// WithDeprecationReason deprecates the target; "" undeprecates it.
func WithDeprecationReason(reason string) Option {
	return func(a *Annotation) { a.deprecationReason = &reason }
}

// WithResolverKind selects how an annotated field is resolved.
func WithResolverKind(kind ResolverKind) Option {
	return func(a *Annotation) { a.resolverKind = kind }
}

// WithIsTypeOf declares the Go type an object type represents. A nil type
// leaves IsTypeOf unset.
func WithIsTypeOf(t reflect.Type) Option {
	return func(a *Annotation) { a.isTypeOf = t }
}

// IsTypeOf is WithIsTypeOf for the static type T.
func IsTypeOf[T any]() Option {
	return WithIsTypeOf(reflect.TypeOf((*T)(nil)).Elem())
}

// New builds an annotation.
func New(opts ...Option) *Annotation {
	a := &Annotation{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns the name override and whether one is set.
func (a *Annotation) Name() (string, bool) { return get(a.name) }

// Description returns the description override and whether one is set.
func (a *Annotation) Description() (string, bool) { return get(a.description) }

// DeprecationReason returns the deprecation override and whether one is set.
func (a *Annotation) DeprecationReason() (string, bool) { return get(a.deprecationReason) }

func (a *Annotation) ResolverKind() ResolverKind { return a.resolverKind }

// IsTypeOf returns the declared Go type, or nil.
func (a *Annotation) IsTypeOf() reflect.Type { return a.isTypeOf }

func get(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	return *p, true
}

// typeCheck returns a predicate reporting whether a runtime value's type is
// assignable to t: the same type, or an implementation when t is an
// interface.
func typeCheck(t reflect.Type) func(any) bool {
	return func(value any) bool {
		if value == nil {
			return false
		}
		return reflect.TypeOf(value).AssignableTo(t)
	}
}
