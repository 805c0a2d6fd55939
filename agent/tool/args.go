package tool

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

func stringArg(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	return strings.TrimSpace(s), nil
}

// numberArg accepts JSON numbers and numeric strings. A missing or blank
// value yields nil.
func numberArg(args map[string]any, key string) (*float64, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}

	var v float64
	switch n := raw.(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("%s must be a number", key)
		}
		v = f
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%s must be a number", key)
		}
		v = f
	default:
		return nil, fmt.Errorf("%s must be a number", key)
	}
	return &v, nil
}
