package schema

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	eventbus "github.com/hanpama/graphtype/internal/eventbus"
	events "github.com/hanpama/graphtype/internal/events"
)

func mustReadFile(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(b)
}

func buildShop(t *testing.T, cfg *Config) *Schema {
	t.Helper()
	s, err := BuildFromSource("shop.graphql", mustReadFile(t, "shop.graphql"), cfg)
	require.NoError(t, err)
	return s
}

func strPtr(s string) *string { return &s }

func TestRenderGolden(t *testing.T) {
	s := buildShop(t, nil)
	want := mustReadFile(t, "shop.golden.graphql")
	if diff := cmp.Diff(want, Render(s)); diff != "" {
		t.Errorf("SDL mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildFromSDL(t *testing.T) {
	s := buildShop(t, nil)
	require.Equal(t, "Query", s.QueryType)
	require.Equal(t, "Query", s.GetQueryType().Name)
	require.Nil(t, s.GetMutationType())

	product := s.Types["Product"]
	require.Equal(t, TypeKindObject, product.Kind)
	require.Equal(t, []string{"Node"}, product.Interfaces)

	legacy := product.Field("legacyPrice")
	require.True(t, legacy.IsDeprecated)
	require.Equal(t, DefaultDeprecationReason, legacy.DeprecationReason)

	price := product.Field("price")
	require.Equal(t, "Decimal!", price.Type.String())
	require.Equal(t, "USD", price.Argument("currency").DefaultValue.Raw)

	xeu := s.Types["Currency"].EnumValue("XEU")
	require.True(t, xeu.IsDeprecated)
	require.Equal(t, "Replaced by EUR", xeu.DeprecationReason)

	filter := s.Types["PriceFilter"]
	require.Equal(t, "0.5", filter.InputField("min").DefaultValue.Raw)
	require.Nil(t, filter.InputField("nope"))

	require.Equal(t, "https://example.com/decimal", *s.Types["Decimal"].SpecifiedByURL)
	require.Nil(t, s.GetQueryType().Field("__schema"))
}

func TestBuildFromSDLInvalid(t *testing.T) {
	_, err := BuildFromSDL(`type Query { a: Missing }`, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "load schema")
}

func TestConfigOverrides(t *testing.T) {
	cfg := NewConfig()
	product := cfg.Type("Product")
	product.Description = strPtr("Something for sale")
	product.IsTypeOf = func(v any) bool { return v == "product" }
	product.Field("legacyPrice").DeprecationReason = strPtr("Use price")
	product.Field("name").Description = strPtr("Shown to buyers")
	cfg.Type("PriceFilter").Field("max").Description = strPtr("Upper bound")
	cfg.Type("Node").IsTypeOf = func(any) bool { return true }

	s := buildShop(t, cfg)
	p := s.Types["Product"]
	require.Equal(t, "Something for sale", p.Description)
	require.NotNil(t, p.IsTypeOf)
	require.True(t, p.IsTypeOf("product"))
	require.Equal(t, "Use price", p.Field("legacyPrice").DeprecationReason)
	require.Equal(t, "Shown to buyers", p.Field("name").Description)
	require.Equal(t, "Upper bound", s.Types["PriceFilter"].InputField("max").Description)
	require.Nil(t, s.Types["Node"].IsTypeOf, "IsTypeOf only applies to object types")

	tc, ok := cfg.Lookup("Product")
	require.True(t, ok)
	require.Same(t, product, tc)
}

func TestConfigUnknownTargets(t *testing.T) {
	cfg := NewConfig()
	cfg.Type("Missing")
	_, err := BuildFromSDL(mustReadFile(t, "shop.graphql"), cfg)
	require.EqualError(t, err, "config: unknown type Missing")

	cfg = NewConfig()
	cfg.Type("Product").Field("weight")
	_, err = BuildFromSDL(mustReadFile(t, "shop.graphql"), cfg)
	require.EqualError(t, err, "config: unknown field Product.weight")
}

func TestRenameType(t *testing.T) {
	s := buildShop(t, nil)
	require.NoError(t, s.RenameType("Product", "Article"))

	require.Nil(t, s.Types["Product"])
	require.Equal(t, "Article", s.Types["Article"].Name)
	require.Equal(t, "[Article!]!", s.GetQueryType().Field("products").Type.String())
	require.Equal(t, []string{"Article", "Service"}, s.Types["Item"].PossibleTypes)

	require.NoError(t, s.RenameType("Query", "Root"))
	require.Equal(t, "Root", s.QueryType)
	require.Contains(t, Render(s), "schema {\n  query: Root\n}\n")

	require.Error(t, s.RenameType("Missing", "X"))
	require.Error(t, s.RenameType("Article", "Service"))
	require.NoError(t, s.RenameType("Service", "Service"))
}

func TestRenameTypeRewritesInputReferences(t *testing.T) {
	s := buildShop(t, nil)
	require.NoError(t, s.RenameType("Currency", "CurrencyCode"))
	require.Equal(t, "CurrencyCode", s.Types["PriceFilter"].InputField("currency").Type.String())
	require.Equal(t, "CurrencyCode", s.Types["Product"].Field("price").Argument("currency").Type.String())
}

func TestRenderDescriptionEscapesBlockQuotes(t *testing.T) {
	s := NewSchema("")
	s.AddType(NewType("Note", TypeKindScalar, `say """hi"""`))
	require.Equal(t, "\"\"\"\nsay \\\"\"\"hi\\\"\"\"\n\"\"\"\nscalar Note\n", Render(s))
}

func TestConfigEnumValuesAndBuiltins(t *testing.T) {
	cfg := NewConfig()
	cfg.Type("Currency").Field("EUR").DeprecationReason = strPtr("Use USD")
	s := buildShop(t, cfg)
	require.True(t, s.Types["Currency"].EnumValue("EUR").IsDeprecated)

	cfg = NewConfig()
	cfg.Type("String").Description = strPtr("mutated")
	_, err := BuildFromSDL(mustReadFile(t, "shop.graphql"), cfg)
	require.EqualError(t, err, "config: built-in type String cannot be configured")
	require.NotEqual(t, "mutated", stringType.Description)
}

func TestBuildPublishesEvents(t *testing.T) {
	bus := eventbus.New()
	eventbus.Use(bus)
	t.Cleanup(func() { eventbus.Use(nil) })

	var started []string
	var finished []events.SchemaBuildFinish
	eventbus.Subscribe(bus, func(_ context.Context, e events.SchemaBuildStart) { started = append(started, e.Source) })
	eventbus.Subscribe(bus, func(_ context.Context, e events.SchemaBuildFinish) { finished = append(finished, e) })

	_, err := Build(context.Background(), "shop.graphql", mustReadFile(t, "shop.graphql"), nil)
	require.NoError(t, err)
	_, err = Build(context.Background(), "broken.graphql", "type Query {", nil)
	require.Error(t, err)

	require.Equal(t, []string{"shop.graphql", "broken.graphql"}, started)
	require.Len(t, finished, 2)
	require.NoError(t, finished[0].Err)
	require.Positive(t, finished[0].Types)
	require.Error(t, finished[1].Err)
	require.Zero(t, finished[1].Types)
}
