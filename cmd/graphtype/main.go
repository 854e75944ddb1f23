package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/hanpama/graphtype/internal/annotate"
	"github.com/hanpama/graphtype/internal/eventbus"
	"github.com/hanpama/graphtype/internal/introspection"
	"github.com/hanpama/graphtype/internal/language"
	"github.com/hanpama/graphtype/internal/otel"
	"github.com/hanpama/graphtype/internal/schema"
	"github.com/hanpama/graphtype/internal/values"
)

const rootUsage = `graphtype - GraphQL scalar coercion and schema annotation tools

USAGE:
  graphtype [global flags] <command> [flags]

GLOBAL FLAGS:
  -env <file>              Load environment defaults from file (default: .env)
  -log.level <level>       debug, info, warn or error (default: info)
  -otel.endpoint <addr>    OTLP collector endpoint (env: GRAPHTYPE_OTEL_ENDPOINT)
  -otel.service <name>     OpenTelemetry service name (env: GRAPHTYPE_OTEL_SERVICE, default: graphtype)

COMMANDS:
  coerce           Coerce a literal or JSON value to a GraphQL input type
  apply            Overlay an annotation file onto a schema and print SDL
  introspect       Print the introspection result of a schema as JSON
  help             Show help for any command
`

const coerceUsage = `coerce FLAGS:
  -type <type>       Input type reference, e.g. [Decimal!]! (required)
  -literal <value>   GraphQL literal, e.g. 12.50 or {min: 1}
  -value <json>      JSON value, e.g. 12.50 or {"min": 1}
  -schema <file>     Schema SDL defining the types (default: scalar Decimal only)
  (Exactly one of -literal and -value is required)
`

const applyUsage = `apply FLAGS:
  -schema <file>       Schema SDL (required)
  -annotations <file>  YAML annotation file (required)
  -out <file>          Write SDL to file (default: stdout)
  (isTypeOf annotations need registered Go types and are rejected here)
`

const introspectUsage = `introspect FLAGS:
  -schema <file>         Schema SDL (required)
  -annotations <file>    YAML annotation file applied before introspection
  -include-deprecated    Include deprecated fields, arguments and enum values
`

const defaultSDL = `scalar Decimal

type Query {
  _: Boolean
}
`

const (
	envOTelEndpoint = "GRAPHTYPE_OTEL_ENDPOINT"
	envOTelService  = "GRAPHTYPE_OTEL_SERVICE"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	envFile := ".env"
	logLevel := "info"
	otelEndpoint := ""
	otelService := "graphtype"

	global := flag.NewFlagSet("graphtype", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	global.StringVar(&envFile, "env", envFile, "Environment file")
	global.StringVar(&logLevel, "log.level", logLevel, "Log level")
	global.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	global.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	if err := global.Parse(args); err != nil {
		fmt.Fprint(stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(stderr, rootUsage)
		return errors.New("missing command")
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}
	set := flagsSet(global)
	if !set["otel.endpoint"] {
		otelEndpoint = os.Getenv(envOTelEndpoint)
	}
	if v := os.Getenv(envOTelService); !set["otel.service"] && v != "" {
		otelService = v
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("-log.level: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	bus := eventbus.New()
	eventbus.Use(bus)
	defer eventbus.Use(nil)
	defer logEvents(bus, logger)()

	shutdown, err := otel.Setup(ctx, bus, otelEndpoint, otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("otel shutdown", "err", err)
		}
	}()

	cmd, cmdArgs := remaining[0], remaining[1:]
	switch cmd {
	case "coerce":
		return cmdCoerce(ctx, cmdArgs, stdout, stderr)
	case "apply":
		return cmdApply(ctx, cmdArgs, stdout, stderr, logger)
	case "introspect":
		return cmdIntrospect(ctx, cmdArgs, stdout, stderr)
	case "help":
		return cmdHelp(cmdArgs, stdout)
	default:
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, rootUsage)
		return nil
	}
	switch args[0] {
	case "coerce":
		fmt.Fprint(stdout, coerceUsage)
	case "apply":
		fmt.Fprint(stdout, applyUsage)
	case "introspect":
		fmt.Fprint(stdout, introspectUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

func flagsSet(flags *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	flags.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func readSchema(ctx context.Context, path string, cfg *schema.Config) (*schema.Schema, error) {
	name, sdl := "default.graphql", defaultSDL
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		name, sdl = filepath.Base(path), string(b)
	}
	s, err := schema.Build(ctx, name, sdl, cfg)
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	return s, nil
}

func cmdCoerce(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	typ := ""
	literal := ""
	value := ""
	schemaFile := ""
	fs := flag.NewFlagSet("coerce", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&typ, "type", typ, "Input type reference")
	fs.StringVar(&literal, "literal", literal, "GraphQL literal")
	fs.StringVar(&value, "value", value, "JSON value")
	fs.StringVar(&schemaFile, "schema", schemaFile, "Schema SDL file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, coerceUsage)
		return err
	}
	set := flagsSet(fs)
	if typ == "" {
		fmt.Fprint(stderr, coerceUsage)
		return errors.New("-type is required")
	}
	if set["literal"] == set["value"] {
		fmt.Fprint(stderr, coerceUsage)
		return errors.New("exactly one of -literal and -value is required")
	}

	s, err := readSchema(ctx, schemaFile, nil)
	if err != nil {
		return err
	}
	astType, err := language.ParseType(typ)
	if err != nil {
		return err
	}
	ref := schema.TypeRefFromAST(astType)
	c := values.New(s, nil)

	var out any
	if set["literal"] {
		lit, err := language.ParseValue(literal)
		if err != nil {
			return err
		}
		out, err = c.CoerceLiteral(ctx, lit, ref, nil)
		if err != nil {
			return err
		}
	} else {
		dec := json.NewDecoder(strings.NewReader(value))
		dec.UseNumber()
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("-value: %w", err)
		}
		out, err = c.Coerce(ctx, raw, ref)
		if err != nil {
			return err
		}
	}
	return json.NewEncoder(stdout).Encode(out)
}

func cmdApply(ctx context.Context, args []string, stdout, stderr io.Writer, logger *slog.Logger) error {
	schemaFile := ""
	annotationsFile := ""
	outFile := ""
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&schemaFile, "schema", schemaFile, "Schema SDL file")
	fs.StringVar(&annotationsFile, "annotations", annotationsFile, "YAML annotation file")
	fs.StringVar(&outFile, "out", outFile, "Write SDL to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, applyUsage)
		return err
	}
	if schemaFile == "" || annotationsFile == "" {
		fmt.Fprint(stderr, applyUsage)
		return errors.New("-schema and -annotations are required")
	}

	s, set, err := annotatedSchema(ctx, schemaFile, annotationsFile)
	if err != nil {
		return err
	}
	logger.Info("annotations applied", "schema", schemaFile, "annotations", len(set.Entries()))

	sdl := schema.Render(s)
	if outFile == "" {
		_, err := io.WriteString(stdout, sdl)
		return err
	}
	return os.WriteFile(outFile, []byte(sdl), 0644)
}

// annotatedSchema builds the schema at schemaFile with the annotations at
// annotationsFile staged and overlaid. An empty annotationsFile applies none.
func annotatedSchema(ctx context.Context, schemaFile, annotationsFile string) (*schema.Schema, *annotate.Set, error) {
	set := annotate.NewSet()
	if annotationsFile != "" {
		var err error
		if set, err = annotate.Load(annotationsFile); err != nil {
			return nil, nil, err
		}
	}
	cfg := schema.NewConfig()
	set.Configure(cfg)
	s, err := readSchema(ctx, schemaFile, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := set.Apply(ctx, s); err != nil {
		return nil, nil, err
	}
	return s, set, nil
}

func cmdIntrospect(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	schemaFile := ""
	annotationsFile := ""
	includeDeprecated := false
	fs := flag.NewFlagSet("introspect", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&schemaFile, "schema", schemaFile, "Schema SDL file")
	fs.StringVar(&annotationsFile, "annotations", annotationsFile, "YAML annotation file")
	fs.BoolVar(&includeDeprecated, "include-deprecated", includeDeprecated, "Include deprecated members")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, introspectUsage)
		return err
	}
	if schemaFile == "" {
		fmt.Fprint(stderr, introspectUsage)
		return errors.New("-schema is required")
	}

	s, _, err := annotatedSchema(ctx, schemaFile, annotationsFile)
	if err != nil {
		return err
	}
	result := map[string]any{
		"__schema": introspection.Describe(s, introspection.Options{IncludeDeprecated: includeDeprecated}),
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
