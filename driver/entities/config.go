package entities

import (
	"encoding/json"
	"fmt"
	"math"
)

// NormalizeConfig returns a copy of config with decoder-specific number types
// folded into int (whole values) or float64, recursing into nested maps and
// slices. YAML maps with non-string keys become map[string]any.
func NormalizeConfig(config map[string]any) map[string]any {
	if config == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(config))
	for k, v := range config {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return NormalizeConfig(t)
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalizeValue(val)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = normalizeValue(val)
		}
		return s
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return intOrInt64(i)
		}
		if f, err := t.Float64(); err == nil {
			return normalizeFloat(f)
		}
		return t.String()
	case float64:
		return normalizeFloat(t)
	case float32:
		return normalizeFloat(float64(t))
	case int8:
		return int(t)
	case int16:
		return int(t)
	case int32:
		return int(t)
	case int64:
		return intOrInt64(t)
	case uint:
		return uintToInt(uint64(t))
	case uint8:
		return int(t)
	case uint16:
		return int(t)
	case uint32:
		return uintToInt(uint64(t))
	case uint64:
		return uintToInt(t)
	default:
		return v
	}
}

func normalizeFloat(f float64) any {
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return intOrInt64(int64(f))
	}
	return f
}

func intOrInt64(i int64) any {
	if i >= math.MinInt && i <= math.MaxInt {
		return int(i)
	}
	return i
}

func uintToInt(u uint64) any {
	if u <= math.MaxInt {
		return int(u)
	}
	return u
}
