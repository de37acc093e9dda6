package provider

import (
	"math"
	"strconv"
	"strings"
)

// asFloat accepts JSON numbers and numeric strings; anything else is 0.
func asFloat(v any) float64 {
	n, _ := floatValue(v)
	return n
}

func floatValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		return parseFloatString(n)
	default:
		return 0, false
	}
}

func parseFloatString(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// epochMillis reads a provider timestamp. Non-finite or non-numeric values
// are rejected.
func epochMillis(v any) (int64, bool) {
	n, ok := floatValue(v)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	if n >= math.MaxInt64 || n < math.MinInt64 {
		return 0, false
	}
	return int64(n), true
}
