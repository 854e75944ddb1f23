package scalar

import (
	"encoding/json"
	"math"
	"strconv"

	language "github.com/hanpama/graphtype/internal/language"
)

var (
	Int     = IntType{}
	Float   = FloatType{}
	String  = StringType{}
	Boolean = BooleanType{}
	ID      = IDType{}
)

// IntType is the signed 32-bit Int scalar.
type IntType struct{ listShape }

func (IntType) Name() string { return "Int" }

func (t IntType) ParseValue(raw any) (any, error) {
	var n int64
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case int:
		n = int64(v)
	case int8:
		n = int64(v)
	case int16:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case uint8:
		n = int64(v)
	case uint16:
		n = int64(v)
	case uint32:
		n = int64(v)
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, coercionError(t.Name(), UnsupportedShape, raw, nil)
		}
		if v < math.MinInt32 || v > math.MaxInt32 {
			return nil, coercionError(t.Name(), UnrepresentableMagnitude, raw, nil)
		}
		n = int64(v)
	case json.Number:
		parsed, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return nil, coercionError(t.Name(), UnsupportedShape, raw, err)
		}
		n = parsed
	case string:
		return nil, coercionError(t.Name(), StringNotAllowed, raw, nil)
	default:
		return nil, coercionError(t.Name(), UnsupportedShape, raw, nil)
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return nil, coercionError(t.Name(), UnrepresentableMagnitude, raw, nil)
	}
	return int32(n), nil
}

func (t IntType) ParseLiteral(value *language.Value) (any, error) {
	if value == nil || value.Kind == language.NullValue {
		return nil, nil
	}
	if value.Kind != language.IntValue {
		return nil, coercionError(t.Name(), UnsupportedShape, value, nil)
	}
	n, err := strconv.ParseInt(value.Raw, 10, 32)
	if err != nil {
		return nil, coercionError(t.Name(), UnrepresentableMagnitude, value, err)
	}
	return int32(n), nil
}

func (t IntType) Serialize(value any) (any, error) { return t.ParseValue(value) }

// FloatType is the double-precision Float scalar.
type FloatType struct{ listShape }

func (FloatType) Name() string { return "Float" }

func (t FloatType) ParseValue(raw any) (any, error) {
	var f float64
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil, coercionError(t.Name(), UnrepresentableMagnitude, raw, err)
		}
		f = parsed
	case string:
		return nil, coercionError(t.Name(), StringNotAllowed, raw, nil)
	default:
		return nil, coercionError(t.Name(), UnsupportedShape, raw, nil)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, coercionError(t.Name(), UnrepresentableMagnitude, raw, nil)
	}
	return f, nil
}

func (t FloatType) ParseLiteral(value *language.Value) (any, error) {
	if value == nil || value.Kind == language.NullValue {
		return nil, nil
	}
	if value.Kind != language.IntValue && value.Kind != language.FloatValue {
		return nil, coercionError(t.Name(), UnsupportedShape, value, nil)
	}
	f, err := strconv.ParseFloat(value.Raw, 64)
	if err != nil {
		return nil, coercionError(t.Name(), UnrepresentableMagnitude, value, err)
	}
	return f, nil
}

func (t FloatType) Serialize(value any) (any, error) { return t.ParseValue(value) }

// StringType is the UTF-8 String scalar.
type StringType struct{ listShape }

func (StringType) Name() string { return "String" }

func (t StringType) ParseValue(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return v, nil
	default:
		return nil, coercionError(t.Name(), UnsupportedShape, raw, nil)
	}
}

func (t StringType) ParseLiteral(value *language.Value) (any, error) {
	if value == nil || value.Kind == language.NullValue {
		return nil, nil
	}
	if value.Kind != language.StringValue && value.Kind != language.BlockValue {
		return nil, coercionError(t.Name(), UnsupportedShape, value, nil)
	}
	return value.Raw, nil
}

func (t StringType) Serialize(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	default:
		return nil, coercionError(t.Name(), UnsupportedShape, value, nil)
	}
}

// BooleanType is the Boolean scalar.
type BooleanType struct{ listShape }

func (BooleanType) Name() string { return "Boolean" }

func (t BooleanType) ParseValue(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case bool:
		return v, nil
	default:
		return nil, coercionError(t.Name(), UnsupportedShape, raw, nil)
	}
}

func (t BooleanType) ParseLiteral(value *language.Value) (any, error) {
	if value == nil || value.Kind == language.NullValue {
		return nil, nil
	}
	if value.Kind != language.BooleanValue {
		return nil, coercionError(t.Name(), UnsupportedShape, value, nil)
	}
	return value.Raw == "true", nil
}

func (t BooleanType) Serialize(value any) (any, error) { return t.ParseValue(value) }

// IDType is the ID scalar; integers are accepted and normalized to strings.
type IDType struct{ listShape }

func (IDType) Name() string { return "ID" }

func (t IDType) ParseValue(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case json.Number:
		if _, err := v.Int64(); err != nil {
			return nil, coercionError(t.Name(), UnsupportedShape, raw, err)
		}
		return v.String(), nil
	default:
		return nil, coercionError(t.Name(), UnsupportedShape, raw, nil)
	}
}

func (t IDType) ParseLiteral(value *language.Value) (any, error) {
	if value == nil || value.Kind == language.NullValue {
		return nil, nil
	}
	if value.Kind != language.StringValue && value.Kind != language.IntValue {
		return nil, coercionError(t.Name(), UnsupportedShape, value, nil)
	}
	return value.Raw, nil
}

func (t IDType) Serialize(value any) (any, error) { return t.ParseValue(value) }
