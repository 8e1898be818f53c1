// Package normalize contains the tolerant extraction layer that turns
// arbitrarily-shaped upstream JSON into canonical records. Nothing in this
// package returns an error: malformed input degrades to a default or absent
// value so one bad field never rejects a batch.
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ToFinite coerces an untyped JSON value into a finite float64. It accepts
// numbers, numeric strings, json.Number, and bools; everything else (nil,
// objects, arrays, NaN, infinities, non-numeric strings) reports ok=false.
// Applying ToFinite to its own output is a no-op.
func ToFinite(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return finite(f)
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return finite(f)
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FirstNumber returns the first key whose value normalizes to a finite
// number. Precedence is strictly first-match-wins; candidates are never
// merged or summed.
func FirstNumber(raw map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, present := raw[k]; present {
			if f, ok := ToFinite(v); ok {
				return f, true
			}
		}
	}
	return 0, false
}

// FirstString returns the first key holding a non-empty string, trimmed.
func FirstString(raw map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, present := raw[k]; present {
			if s, ok := v.(string); ok {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					return trimmed, true
				}
			}
		}
	}
	return "", false
}

// Round rounds v half-away-from-zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
