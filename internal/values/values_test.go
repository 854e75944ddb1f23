package values

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	decimal "github.com/hanpama/graphtype/internal/decimal"
	eventbus "github.com/hanpama/graphtype/internal/eventbus"
	events "github.com/hanpama/graphtype/internal/events"
	language "github.com/hanpama/graphtype/internal/language"
	scalar "github.com/hanpama/graphtype/internal/scalar"
	schema "github.com/hanpama/graphtype/internal/schema"
)

const shopSDL = `
scalar Decimal

enum Currency { EUR USD }

input PriceFilter {
  min: Decimal = 0.5
  max: Decimal
  currency: Currency!
}

input Lookup {
  id: ID
  sku: String
}

type Product {
  id: ID!
  price(currency: Currency = USD, scale: Int!): Decimal!
}

type Query {
  products(filter: PriceFilter, ids: [ID!]): [Product!]!
  product(by: Lookup!): Product
}
`

func newCoercer(t *testing.T) (*Coercer, *schema.Schema) {
	t.Helper()
	s, err := schema.BuildFromSDL(shopSDL, nil)
	require.NoError(t, err)
	s.Types["Lookup"].SetOneOf(true)
	return New(s, nil), s
}

func typeRef(t *testing.T, src string) *schema.TypeRef {
	t.Helper()
	typ, err := language.ParseType(src)
	require.NoError(t, err)
	return schema.TypeRefFromAST(typ)
}

func literal(t *testing.T, src string) *language.Value {
	t.Helper()
	v, err := language.ParseValue(src)
	require.NoError(t, err)
	return v
}

// argument parses src as the value of a field argument, where variables are
// allowed.
func argument(t *testing.T, src string) *language.Value {
	t.Helper()
	return arguments(t, "f(v: "+src+")")[0].Value
}

func arguments(t *testing.T, field string) language.ArgumentList {
	t.Helper()
	doc, err := language.ParseQuery("{ " + field + " }")
	require.NoError(t, err)
	return doc.Operations[0].SelectionSet[0].(*language.Field).Arguments
}

func decodeJSON(t *testing.T, src string) any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(src))
	dec.UseNumber()
	var v any
	require.NoError(t, dec.Decode(&v))
	return v
}

func TestCoerceDecimal(t *testing.T) {
	c, _ := newCoercer(t)
	ctx := context.Background()

	got, err := c.Coerce(ctx, decodeJSON(t, `12.3456789012345678901234567`), typeRef(t, "Decimal!"))
	require.NoError(t, err)
	require.Equal(t, decimal.MustParse("12.3456789012345678901234567"), got)

	got, err = c.Coerce(ctx, nil, typeRef(t, "Decimal"))
	require.NoError(t, err)
	require.Nil(t, got)

	_, err = c.Coerce(ctx, nil, typeRef(t, "Decimal!"))
	var cerr *scalar.CoercionError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, scalar.DisallowedNull, cerr.Reason)

	_, err = c.Coerce(ctx, "1.5", typeRef(t, "Decimal"))
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, scalar.StringNotAllowed, cerr.Reason)
}

func TestCoerceLists(t *testing.T) {
	c, _ := newCoercer(t)
	ctx := context.Background()

	got, err := c.Coerce(ctx, []any{int64(1), int64(2)}, typeRef(t, "[Int!]!"))
	require.NoError(t, err)
	require.Equal(t, []any{int32(1), int32(2)}, got)

	got, err = c.Coerce(ctx, int64(7), typeRef(t, "[Int]"))
	require.NoError(t, err)
	require.Equal(t, []any{int32(7)}, got, "a single value becomes a list of one")

	_, err = c.Coerce(ctx, []any{int64(1), nil}, typeRef(t, "[Int!]"))
	var verr *Error
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "[1]", verr.Path)
}

func TestCoerceInputObject(t *testing.T) {
	c, _ := newCoercer(t)
	ctx := context.Background()

	got, err := c.Coerce(ctx, decodeJSON(t, `{"max": 10, "currency": "EUR"}`), typeRef(t, "PriceFilter"))
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"min":      decimal.MustParse("0.5"),
		"max":      decimal.MustParse("10"),
		"currency": "EUR",
	}, got)

	_, err = c.Coerce(ctx, decodeJSON(t, `{"max": 10}`), typeRef(t, "PriceFilter"))
	require.ErrorContains(t, err, "required field 'currency'")

	_, err = c.Coerce(ctx, decodeJSON(t, `{"currency": "GBP"}`), typeRef(t, "PriceFilter"))
	require.ErrorContains(t, err, "currency: GBP is not a value of enum Currency")

	_, err = c.Coerce(ctx, decodeJSON(t, `{"currency": "EUR", "color": "red"}`), typeRef(t, "PriceFilter"))
	require.ErrorContains(t, err, "unknown field 'color'")

	_, err = c.Coerce(ctx, decodeJSON(t, `{"currency": "EUR", "max": "10"}`), typeRef(t, "PriceFilter"))
	var verr *Error
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "max", verr.Path)
	var cerr *scalar.CoercionError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, scalar.StringNotAllowed, cerr.Reason)

	_, err = c.Coerce(ctx, "EUR", typeRef(t, "Product"))
	require.ErrorContains(t, err, "Product is not an input type")
}

func TestCoerceOneOf(t *testing.T) {
	c, _ := newCoercer(t)
	ctx := context.Background()

	got, err := c.Coerce(ctx, map[string]any{"sku": "A-1"}, typeRef(t, "Lookup!"))
	require.NoError(t, err)
	require.Equal(t, map[string]any{"sku": "A-1"}, got)

	_, err = c.Coerce(ctx, map[string]any{"sku": "A-1", "id": "1"}, typeRef(t, "Lookup!"))
	require.ErrorContains(t, err, "exactly one non-null field")
	_, err = c.Coerce(ctx, map[string]any{}, typeRef(t, "Lookup!"))
	require.ErrorContains(t, err, "exactly one non-null field")
}

func TestCoerceLiteral(t *testing.T) {
	c, _ := newCoercer(t)
	ctx := context.Background()
	vars := map[string]any{"cur": "USD", "n": nil}

	got, err := c.CoerceLiteral(ctx, literal(t, `79228162514264337593543950335`), typeRef(t, "Decimal"), nil)
	require.NoError(t, err)
	require.Equal(t, decimal.MustParse("79228162514264337593543950335"), got)

	got, err = c.CoerceLiteral(ctx, argument(t, `{currency: $cur, max: 2.50}`), typeRef(t, "PriceFilter"), vars)
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"min":      decimal.MustParse("0.5"),
		"max":      decimal.MustParse("2.50"),
		"currency": "USD",
	}, got)

	got, err = c.CoerceLiteral(ctx, literal(t, `[1.5, null]`), typeRef(t, "[Decimal]"), nil)
	require.NoError(t, err)
	require.Equal(t, []any{decimal.MustParse("1.5"), nil}, got)

	_, err = c.CoerceLiteral(ctx, argument(t, `$n`), typeRef(t, "Decimal!"), vars)
	var cerr *scalar.CoercionError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, scalar.DisallowedNull, cerr.Reason)

	got, err = c.CoerceLiteral(ctx, literal(t, `"1.5"`), typeRef(t, "Decimal"), nil)
	require.NoError(t, err)
	require.Equal(t, decimal.MustParse("1.5"), got)

	_, err = c.CoerceLiteral(ctx, literal(t, `[1, true]`), typeRef(t, "[Decimal]"), nil)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "[1]", verr.Path)
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, scalar.UnsupportedShape, cerr.Reason)

	_, err = c.CoerceLiteral(ctx, literal(t, `"EUR"`), typeRef(t, "Currency"), nil)
	require.ErrorContains(t, err, "is not a value of enum Currency")
}

func TestVariableValues(t *testing.T) {
	c, _ := newCoercer(t)
	doc, err := language.ParseQuery(`query($filter: PriceFilter, $ids: [ID!] = ["1"], $by: Lookup!, $opt: Int) { __typename }`)
	require.NoError(t, err)
	op := doc.Operations[0]

	got, err := c.VariableValues(context.Background(), op, map[string]any{
		"filter": map[string]any{"currency": "EUR", "min": json.Number("1e-2")},
		"by":     map[string]any{"id": json.Number("42")},
	})
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"filter": map[string]any{"min": decimal.MustParse("0.01"), "currency": "EUR"},
		"ids":    []any{"1"},
		"by":     map[string]any{"id": "42"},
	}, got)

	_, err = c.VariableValues(context.Background(), op, nil)
	require.EqualError(t, err, "variable $by of required type Lookup! was not provided")

	_, err = c.VariableValues(context.Background(), op, map[string]any{
		"by":     map[string]any{"id": "1"},
		"filter": map[string]any{"currency": "EUR", "max": true},
	})
	var verr *Error
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "$filter.max", verr.Path)
}

func TestArgumentValues(t *testing.T) {
	c, s := newCoercer(t)
	price := s.Types["Product"].Field("price")
	field := func(src string) language.ArgumentList { return arguments(t, src) }

	got, err := c.ArgumentValues(context.Background(), price, field(`price(scale: 2)`), nil)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"currency": "USD", "scale": int32(2)}, got)

	got, err = c.ArgumentValues(context.Background(), price, field(`price(scale: $s, currency: $c)`), map[string]any{"s": int32(4)})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"currency": "USD", "scale": int32(4)}, got)

	_, err = c.ArgumentValues(context.Background(), price, field(`price(currency: EUR)`), nil)
	require.EqualError(t, err, "argument 'scale' of required type Int! was not provided")

	_, err = c.ArgumentValues(context.Background(), price, field(`price(scale: 1, round: true)`), nil)
	require.ErrorContains(t, err, "unknown argument 'round'")

	_, err = c.ArgumentValues(context.Background(), price, field(`price(scale: 3000000000)`), nil)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "scale", verr.Path)
}

func TestCompleteList(t *testing.T) {
	c, _ := newCoercer(t)
	one := decimal.MustParse("1")

	got, err := c.CompleteList(typeRef(t, "[Decimal!]!"), []decimal.Decimal{one})
	require.NoError(t, err)
	require.Equal(t, []decimal.Decimal{one}, got)

	got, err = c.CompleteList(typeRef(t, "[Decimal]"), nil)
	require.NoError(t, err)
	require.Nil(t, got)

	_, err = c.CompleteList(typeRef(t, "[Decimal]!"), []any(nil))
	var cerr *scalar.CoercionError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, scalar.DisallowedNull, cerr.Reason)

	got, err = c.CompleteList(typeRef(t, "[Decimal]"), []*decimal.Decimal{nil, &one})
	require.NoError(t, err)
	require.Len(t, got, 2)

	_, err = c.CompleteList(typeRef(t, "[Decimal!]"), []*decimal.Decimal{nil, &one})
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, scalar.DisallowedNull, cerr.Reason)

	_, err = c.CompleteList(typeRef(t, "[Decimal]"), one)
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, scalar.UnsupportedShape, cerr.Reason)

	_, err = c.CompleteList(typeRef(t, "Decimal"), []any{})
	require.ErrorContains(t, err, "is not a list type")
	_, err = c.CompleteList(typeRef(t, "[[Decimal]]"), []any{})
	require.ErrorContains(t, err, "nested list")
}

func TestCoercionPublishesEvents(t *testing.T) {
	bus := eventbus.New()
	eventbus.Use(bus)
	t.Cleanup(func() { eventbus.Use(nil) })

	var starts []string
	var finishes []events.CoercionFinish
	eventbus.Subscribe(bus, func(_ context.Context, e events.CoercionStart) { starts = append(starts, e.Type) })
	eventbus.Subscribe(bus, func(_ context.Context, e events.CoercionFinish) { finishes = append(finishes, e) })

	c, _ := newCoercer(t)
	_, _ = c.Coerce(context.Background(), nil, typeRef(t, "Decimal!"))
	require.Equal(t, []string{"Decimal!"}, starts)
	require.Len(t, finishes, 1)
	require.Error(t, finishes[0].Err)
}

func TestUnregisteredScalar(t *testing.T) {
	_, s := newCoercer(t)
	c := New(s, scalar.Registry{}.Register(scalar.Int))
	_, err := c.Coerce(context.Background(), json.Number("1"), typeRef(t, "Decimal"))
	require.ErrorContains(t, err, "no implementation registered for scalar Decimal")
}
