package scalar

import (
	"encoding/json"
	"errors"
	"math/big"

	shop "github.com/shopspring/decimal"

	decimal "github.com/hanpama/graphtype/internal/decimal"
	language "github.com/hanpama/graphtype/internal/language"
)

// Decimal is the exact-precision decimal scalar.
var Decimal = DecimalType{}

// DecimalType coerces values to decimal.Decimal.
//
// Variable input must already be numeric: a string such as "12.5" is
// rejected even though it is a valid numeral, so that numbers and numeric
// strings never blur in variable payloads. Literals are read from their
// source text and keep every digit the 96-bit coefficient can hold.
type DecimalType struct{ listShape }

func (DecimalType) Name() string { return "Decimal" }

func (t DecimalType) ParseValue(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case decimal.Decimal:
		return v, nil
	case *decimal.Decimal:
		if v == nil {
			return nil, nil
		}
		return *v, nil
	case shop.Decimal:
		d, err := decimal.FromBig(v)
		return t.result(raw, d, err)
	case int:
		return decimal.FromInt64(int64(v)), nil
	case int8:
		return decimal.FromInt64(int64(v)), nil
	case int16:
		return decimal.FromInt64(int64(v)), nil
	case int32:
		return decimal.FromInt64(int64(v)), nil
	case int64:
		return decimal.FromInt64(v), nil
	case uint:
		return decimal.FromUint64(uint64(v)), nil
	case uint8:
		return decimal.FromUint64(uint64(v)), nil
	case uint16:
		return decimal.FromUint64(uint64(v)), nil
	case uint32:
		return decimal.FromUint64(uint64(v)), nil
	case uint64:
		return decimal.FromUint64(v), nil
	case float32:
		d, err := decimal.FromFloat32(v)
		return t.result(raw, d, err)
	case float64:
		d, err := decimal.FromFloat64(v)
		return t.result(raw, d, err)
	case *big.Int:
		if v == nil {
			return nil, nil
		}
		d, err := decimal.FromBig(shop.NewFromBigInt(v, 0))
		return t.result(raw, d, err)
	case json.Number:
		// A JSON numeral decoded with UseNumber is a number, not a string.
		d, err := decimal.Parse(string(v))
		return t.result(raw, d, err)
	case string:
		return nil, coercionError(t.Name(), StringNotAllowed, raw, nil)
	default:
		return nil, coercionError(t.Name(), UnsupportedShape, raw, nil)
	}
}

func (t DecimalType) ParseLiteral(value *language.Value) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch value.Kind {
	case language.NullValue:
		return nil, nil
	case language.IntValue, language.FloatValue, language.StringValue, language.BlockValue:
		// Quoted numerals are accepted here, unlike in ParseValue.
		d, err := decimal.Parse(value.Raw)
		return t.result(value, d, err)
	default:
		return nil, coercionError(t.Name(), UnsupportedShape, value, nil)
	}
}

func (t DecimalType) Serialize(value any) (any, error) {
	return t.ParseValue(value)
}

// result maps a conversion outcome to the scalar's error taxonomy.
func (t DecimalType) result(raw any, d decimal.Decimal, err error) (any, error) {
	if err == nil {
		return d, nil
	}
	reason := UnsupportedShape
	if errors.Is(err, decimal.ErrOverflow) {
		reason = UnrepresentableMagnitude
	}
	return nil, coercionError(t.Name(), reason, raw, err)
}
