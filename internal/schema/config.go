package schema

import (
	"fmt"
	"sort"
)

// TypeConfig collects overrides for one named type before the schema is
// built. Nil pointers mean "not configured".
type TypeConfig struct {
	Name              string
	Description       *string
	DeprecationReason *string
	// IsTypeOf is installed on the built type when it is an OBJECT.
	IsTypeOf func(value any) bool
	fields   map[string]*FieldConfig
}

// FieldConfig collects overrides for one field, input field or enum value.
type FieldConfig struct {
	Name              string
	Description       *string
	DeprecationReason *string
}

// Config holds the per-type configuration consumed by BuildFromSDL.
type Config struct {
	types map[string]*TypeConfig
}

func NewConfig() *Config {
	return &Config{types: make(map[string]*TypeConfig)}
}

// Type returns the configuration for name, creating it on first use.
func (c *Config) Type(name string) *TypeConfig {
	tc, ok := c.types[name]
	if !ok {
		tc = &TypeConfig{Name: name}
		c.types[name] = tc
	}
	return tc
}

// Lookup returns the configuration for name if one exists.
func (c *Config) Lookup(name string) (*TypeConfig, bool) {
	tc, ok := c.types[name]
	return tc, ok
}

// Field returns the configuration for the field called name, creating it on
// first use.
func (c *TypeConfig) Field(name string) *FieldConfig {
	if c.fields == nil {
		c.fields = make(map[string]*FieldConfig)
	}
	fc, ok := c.fields[name]
	if !ok {
		fc = &FieldConfig{Name: name}
		c.fields[name] = fc
	}
	return fc
}

// apply installs every configured override into s.
func (c *Config) apply(s *Schema) error {
	names := make([]string, 0, len(c.types))
	for name := range c.types {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t, ok := s.Types[name]
		if !ok {
			return fmt.Errorf("config: unknown type %s", name)
		}
		if t.IsBuiltin() {
			return fmt.Errorf("config: built-in type %s cannot be configured", name)
		}
		if err := c.types[name].applyTo(t); err != nil {
			return err
		}
	}
	return nil
}

func (c *TypeConfig) applyTo(t *Type) error {
	if c.Description != nil {
		t.Description = *c.Description
	}
	if c.DeprecationReason != nil {
		t.Deprecate(*c.DeprecationReason)
	}
	if c.IsTypeOf != nil && t.Kind == TypeKindObject {
		t.IsTypeOf = c.IsTypeOf
	}
	for name, fc := range c.fields {
		if f := t.Field(name); f != nil {
			if fc.Description != nil {
				f.Description = *fc.Description
			}
			if fc.DeprecationReason != nil {
				f.Deprecate(*fc.DeprecationReason)
			}
			continue
		}
		if in := t.InputField(name); in != nil {
			if fc.Description != nil {
				in.Description = *fc.Description
			}
			if fc.DeprecationReason != nil {
				in.Deprecate(*fc.DeprecationReason)
			}
			continue
		}
		if v := t.EnumValue(name); v != nil {
			if fc.Description != nil {
				v.Description = *fc.Description
			}
			if fc.DeprecationReason != nil {
				v.Deprecate(*fc.DeprecationReason)
			}
			continue
		}
		return fmt.Errorf("config: unknown field %s.%s", t.Name, name)
	}
	return nil
}
