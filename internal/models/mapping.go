package models

import (
	"fmt"
	"math"
)

// Helpers for reading the generic decoded form (as produced by encoding/json)
// back into typed records.

func asMapping(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out, true
	case Properties:
		return asMapping(map[string]string(m))
	default:
		return nil, false
	}
}

func asProperties(v any, where string) (Properties, error) {
	m, ok := asMapping(v)
	if !ok {
		return nil, fmt.Errorf("%s must be a mapping", where)
	}
	props := make(Properties, len(m))
	for k, raw := range m {
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%s.%s must be a string", where, k)
		}
		props[k] = s
	}
	return props, nil
}

func asStringSlice(v any, where string) ([]string, error) {
	switch list := v.(type) {
	case []string:
		return append([]string{}, list...), nil
	case []any:
		out := make([]string, 0, len(list))
		for i, raw := range list {
			s, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", where, i)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be a list of strings", where)
	}
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func stringField(m map[string]any, key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}
