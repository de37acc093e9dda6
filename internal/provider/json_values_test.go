package provider

import (
	"math"
	"testing"
)

func TestEpochMillis(t *testing.T) {
	belowLimit := math.Nextafter(math.MaxInt64, 0)

	tests := []struct {
		name string
		in   any
		want int64
		ok   bool
	}{
		{"number", float64(1_700_000_000_000), 1_700_000_000_000, true},
		{"numeric string", "1700000000000", 1_700_000_000_000, true},
		{"largest representable", belowLimit, int64(belowLimit), true},
		{"lowest", float64(math.MinInt64), math.MinInt64, true},
		{"two to the 63rd", float64(1 << 63), 0, false},
		{"beyond range", 1e19, 0, false},
		{"below range", -1e19, 0, false},
		{"nan", math.NaN(), 0, false},
		{"infinite", math.Inf(1), 0, false},
		{"text", "soon", 0, false},
		{"missing", nil, 0, false},
	}
	for _, tc := range tests {
		got, ok := epochMillis(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("%s: epochMillis(%v) = %d, %v; expected %d, %v", tc.name, tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestAsFloatAndString(t *testing.T) {
	if asFloat("12.5") != 12.5 || asFloat(true) != 0 {
		t.Fatal("unexpected float coercion")
	}
	if asString(float64(3)) != "3" || asString(nil) != "" {
		t.Fatal("unexpected string coercion")
	}
}
