package localgen

import (
	"fmt"
	"strconv"
	"strings"
)

// number reads a numeric option, accepting JSON numbers and numeric strings
func (o Options) number(key string, def float64) (float64, error) {
	raw, ok := o[key]
	if !ok || raw == nil {
		return def, nil
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("option %q must be a number", key)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("option %q must be a number", key)
	}
}

func (o Options) str(key, def string) string {
	raw, ok := o[key]
	if !ok || raw == nil {
		return def
	}
	if s, ok := raw.(string); ok {
		return s
	}
	return fmt.Sprint(raw)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
