// Package annotate loads annotation files and overlays them onto schema
// configuration and built schemas.
//
// An annotation file is YAML keyed by schema coordinate:
//
//	version: 1
//	annotations:
//	  Product:
//	    description: Something for sale
//	    isTypeOf: Product
//	  Product.legacyPrice:
//	    deprecationReason: Use price
//	  Subscription.priceChanged:
//	    resolver: stream
package annotate

import (
	"context"
	"sort"
	"strings"

	eventbus "github.com/hanpama/graphtype/internal/eventbus"
	events "github.com/hanpama/graphtype/internal/events"
	metadata "github.com/hanpama/graphtype/internal/metadata"
	schema "github.com/hanpama/graphtype/internal/schema"
)

// Entry binds an annotation to the element it decorates.
type Entry struct {
	Coordinate Coordinate
	Annotation *metadata.Annotation
}

// Set is an ordered collection of annotations.
type Set struct {
	entries []Entry
}

// NewSet builds a Set ordered by coordinate.
func NewSet(entries ...Entry) *Set {
	sorted := append([]Entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Coordinate.String() < sorted[j].Coordinate.String()
	})
	return &Set{entries: sorted}
}

func (set *Set) Entries() []Entry { return set.entries }

// Configure stages the set into cfg before the schema is built. Argument
// coordinates have no configuration record and are only handled by Apply.
func (set *Set) Configure(cfg *schema.Config) {
	for _, e := range set.entries {
		c := e.Coordinate
		switch {
		case c.Argument != "":
		case c.Member != "":
			e.Annotation.Apply(metadata.FieldConfigTarget(cfg.Type(c.Type).Field(c.Member)))
		default:
			e.Annotation.Apply(metadata.TypeConfigTarget(cfg.Type(c.Type)))
		}
	}
}

type resolved struct {
	entry  Entry
	target metadata.Target
	typ    *schema.Type
	field  *schema.Field
}

// Apply overlays the set onto the live nodes of s. Every coordinate is
// resolved, and every rename checked, before anything changes: a set with
// violations leaves s untouched. Renames never affect how other coordinates
// resolve. Type renames run last and rewrite all references. Each applied
// annotation publishes an OverlayApplied event.
func (set *Set) Apply(ctx context.Context, s *schema.Schema) error {
	var verr Error
	var members, types []resolved
	for _, e := range set.entries {
		r, ok := resolve(s, e, &verr)
		if !ok {
			continue
		}
		if r.target.Kind() == metadata.GraphTypeKind {
			types = append(types, r)
		} else {
			members = append(members, r)
		}
	}
	checkMemberRenames(s, members, &verr)
	checkTypeRenames(s, types, &verr)
	if err := verr.errOrNil(); err != nil {
		return err
	}

	for _, r := range members {
		r.entry.Annotation.Apply(r.target)
		if r.entry.Annotation.ResolverKind() == metadata.StreamResolver {
			r.field.SetStream(true)
		}
		publish(ctx, r)
	}
	for _, r := range types {
		old := r.typ.Name
		r.entry.Annotation.Apply(r.target)
		if err := s.RenameType(old, r.typ.Name); err != nil {
			// checkTypeRenames rules this out; restore rather than corrupt.
			verr.add(r.entry.Coordinate.String(), "%v", err)
			r.typ.Name = old
			continue
		}
		publish(ctx, r)
	}
	return verr.errOrNil()
}

// renameOf returns the non-empty name override of r, if any.
func renameOf(r resolved) (string, bool) {
	name, ok := r.entry.Annotation.Name()
	return name, ok && name != ""
}

// checkMemberRenames reports member renames that are not valid names or
// that leave two siblings (fields, input fields, enum values, or the
// arguments of one field) with the same name once every rename lands.
func checkMemberRenames(s *schema.Schema, members []resolved, verr *Error) {
	type pending struct {
		coord string
		from  string
		to    string
	}
	scopes := map[string][]pending{}
	var order []string
	for _, r := range members {
		name, ok := renameOf(r)
		if !ok {
			continue
		}
		c := r.entry.Coordinate
		if !nameRE.MatchString(name) {
			verr.add(c.String(), "invalid name %q", name)
			continue
		}
		scope, from := c.Type, c.Member
		if c.Argument != "" {
			scope, from = c.Type+"."+c.Member, c.Argument
		}
		if _, seen := scopes[scope]; !seen {
			order = append(order, scope)
		}
		scopes[scope] = append(scopes[scope], pending{coord: c.String(), from: from, to: name})
	}

	for _, scope := range order {
		final := map[string]string{}
		for _, name := range siblingNames(s, scope) {
			final[name] = name
		}
		for _, p := range scopes[scope] {
			final[p.from] = p.to
		}
		count := map[string]int{}
		for _, name := range final {
			count[name]++
		}
		for _, p := range scopes[scope] {
			if count[p.to] > 1 {
				verr.add(p.coord, "rename to %s collides with another member of %s", p.to, scope)
			}
		}
	}
}

// siblingNames lists the member names under scope, which is either a type
// name or a Type.field pair addressing that field's arguments.
func siblingNames(s *schema.Schema, scope string) []string {
	typeName, fieldName, isArgs := strings.Cut(scope, ".")
	t := s.Types[typeName]
	var names []string
	if isArgs {
		for _, a := range t.Field(fieldName).Arguments {
			names = append(names, a.Name)
		}
		return names
	}
	for _, f := range t.Fields {
		names = append(names, f.Name)
	}
	for _, f := range t.InputFields {
		names = append(names, f.Name)
	}
	for _, v := range t.EnumValues {
		names = append(names, v.Name)
	}
	return names
}

// checkTypeRenames mirrors the rules RenameType enforces, for the whole
// batch at once.
func checkTypeRenames(s *schema.Schema, types []resolved, verr *Error) {
	claimed := map[string]string{}
	for _, r := range types {
		name, ok := renameOf(r)
		if !ok || name == r.typ.Name {
			continue
		}
		coord := r.entry.Coordinate.String()
		switch _, taken := s.Types[name]; {
		case !nameRE.MatchString(name):
			verr.add(coord, "invalid name %q", name)
		case taken:
			verr.add(coord, "rename %s: type %s already exists", r.typ.Name, name)
		case claimed[name] != "":
			verr.add(coord, "rename %s: type %s is also claimed by %s", r.typ.Name, name, claimed[name])
		default:
			claimed[name] = coord
		}
	}
}

func publish(ctx context.Context, r resolved) {
	eventbus.Publish(ctx, events.OverlayApplied{
		Coordinate: r.entry.Coordinate.String(),
		Target:     r.target.Kind().String(),
	})
}

func resolve(s *schema.Schema, e Entry, verr *Error) (resolved, bool) {
	c := e.Coordinate
	coord := c.String()
	r := resolved{entry: e}

	t, ok := s.Types[c.Type]
	if !ok {
		verr.add(coord, "unknown type %s", c.Type)
		return r, false
	}
	if t.IsBuiltin() {
		verr.add(coord, "built-in type %s cannot be annotated", c.Type)
		return r, false
	}
	r.typ = t
	stream := e.Annotation.ResolverKind() == metadata.StreamResolver

	if c.Member == "" {
		if stream {
			verr.add(coord, "stream resolver requires a subscription field")
			return r, false
		}
		r.target = metadata.GraphTypeTarget(t)
		return r, true
	}

	if c.Argument != "" {
		f := t.Field(c.Member)
		if f == nil {
			verr.add(coord, "unknown field %s.%s", t.Name, c.Member)
			return r, false
		}
		arg := f.Argument(c.Argument)
		if arg == nil {
			verr.add(coord, "unknown argument %s", c.Argument)
			return r, false
		}
		if stream {
			verr.add(coord, "stream resolver requires a subscription field")
			return r, false
		}
		r.target = metadata.InputFieldTarget(arg)
		return r, true
	}

	switch t.Kind {
	case schema.TypeKindObject, schema.TypeKindInterface:
		f := t.Field(c.Member)
		if f == nil {
			verr.add(coord, "unknown field %s.%s", t.Name, c.Member)
			return r, false
		}
		if stream && t.Name != s.SubscriptionType {
			verr.add(coord, "stream resolver requires a subscription field")
			return r, false
		}
		r.field = f
		r.target = metadata.FieldTarget(f)
	case schema.TypeKindInputObject:
		in := t.InputField(c.Member)
		if in == nil {
			verr.add(coord, "unknown input field %s.%s", t.Name, c.Member)
			return r, false
		}
		r.target = metadata.InputFieldTarget(in)
	case schema.TypeKindEnum:
		v := t.EnumValue(c.Member)
		if v == nil {
			verr.add(coord, "unknown enum value %s.%s", t.Name, c.Member)
			return r, false
		}
		r.target = metadata.EnumValueTarget(v)
	default:
		verr.add(coord, "%s type %s has no members", t.Kind, t.Name)
		return r, false
	}
	if stream && r.field == nil {
		verr.add(coord, "stream resolver requires a subscription field")
		return r, false
	}
	return r, true
}
