package language

import (
	"strconv"
)

// ValueToGo converts a constant literal without type information. Integers
// become int64 when they fit and float64 otherwise; enum values become
// strings. Variables convert to nil.
func ValueToGo(value *Value) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case IntValue:
		if iv, err := strconv.ParseInt(value.Raw, 10, 64); err == nil {
			return iv
		}
		fv, _ := strconv.ParseFloat(value.Raw, 64)
		return fv
	case FloatValue:
		fv, _ := strconv.ParseFloat(value.Raw, 64)
		return fv
	case StringValue, BlockValue, EnumValue:
		return value.Raw
	case BooleanValue:
		return value.Raw == "true"
	case ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = ValueToGo(c.Value)
		}
		return out
	case ObjectValue:
		m := make(map[string]any, len(value.Children))
		for _, f := range value.Children {
			m[f.Name] = ValueToGo(f.Value)
		}
		return m
	default:
		return nil
	}
}
