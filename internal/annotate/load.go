package annotate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"

	"gopkg.in/yaml.v3"

	metadata "github.com/hanpama/graphtype/internal/metadata"
)

// Version is the only annotation file version understood by Parse.
const Version = 1

type fileYAML struct {
	Version     int                  `yaml:"version"`
	Annotations map[string]entryYAML `yaml:"annotations"`
}

type entryYAML struct {
	Name              *string `yaml:"name"`
	Description       *string `yaml:"description"`
	DeprecationReason *string `yaml:"deprecationReason"`
	Resolver          string  `yaml:"resolver"`
	IsTypeOf          string  `yaml:"isTypeOf"`
}

// Option configures Parse and Load.
type Option func(*options)

type options struct {
	types map[string]reflect.Type
}

// WithType registers t under name so annotation files can refer to it from
// isTypeOf.
func WithType(name string, t reflect.Type) Option {
	return func(o *options) { o.types[name] = t }
}

// WithTypeOf is WithType for the static type T.
func WithTypeOf[T any](name string) Option {
	return WithType(name, reflect.TypeOf((*T)(nil)).Elem())
}

// Load reads and parses the annotation file at path.
func Load(path string, opts ...Option) (*Set, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	set, err := Parse(b, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Parse decodes an annotation file. Unknown keys are rejected.
func Parse(b []byte, opts ...Option) (*Set, error) {
	o := options{types: map[string]reflect.Type{}}
	for _, opt := range opts {
		opt(&o)
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	var f fileYAML
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty annotation file")
		}
		return nil, err
	}
	if f.Version != Version {
		return nil, fmt.Errorf("unsupported annotation file version %d", f.Version)
	}

	var verr Error
	entries := make([]Entry, 0, len(f.Annotations))
	for raw, e := range f.Annotations {
		coord, err := ParseCoordinate(raw)
		if err != nil {
			verr.add(raw, "%v", err)
			continue
		}
		a, err := e.annotation(o)
		if err != nil {
			verr.add(raw, "%v", err)
			continue
		}
		entries = append(entries, Entry{Coordinate: coord, Annotation: a})
	}
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}
	return NewSet(entries...), nil
}

func (e entryYAML) annotation(o options) (*metadata.Annotation, error) {
	var opts []metadata.Option
	if e.Name != nil {
		if *e.Name != "" && !nameRE.MatchString(*e.Name) {
			return nil, fmt.Errorf("invalid name %q", *e.Name)
		}
		opts = append(opts, metadata.WithName(*e.Name))
	}
	if e.Description != nil {
		opts = append(opts, metadata.WithDescription(*e.Description))
	}
	if e.DeprecationReason != nil {
		opts = append(opts, metadata.WithDeprecationReason(*e.DeprecationReason))
	}
	switch e.Resolver {
	case "", "field":
	case "stream":
		opts = append(opts, metadata.WithResolverKind(metadata.StreamResolver))
	default:
		return nil, fmt.Errorf("unknown resolver kind %q", e.Resolver)
	}
	if e.IsTypeOf != "" {
		t, ok := o.types[e.IsTypeOf]
		if !ok {
			return nil, fmt.Errorf("unregistered isTypeOf type %q", e.IsTypeOf)
		}
		opts = append(opts, metadata.WithIsTypeOf(t))
	}
	return metadata.New(opts...), nil
}
