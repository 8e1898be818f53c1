package normalize

import (
	"encoding/json"
	"math"
	"testing"
)

func TestToFinite(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"float", 1.5, 1.5, true},
		{"int", 42, 42, true},
		{"numeric string", "3.14", 3.14, true},
		{"padded numeric string", "  7 ", 7, true},
		{"negative string", "-2.5", -2.5, true},
		{"empty string", "", 0, false},
		{"non-numeric string", "abc", 0, false},
		{"nil", nil, 0, false},
		{"nan", math.NaN(), 0, false},
		{"positive inf", math.Inf(1), 0, false},
		{"negative inf", math.Inf(-1), 0, false},
		{"object", map[string]any{"x": 1}, 0, false},
		{"array", []any{1.0}, 0, false},
		{"json number", json.Number("9.25"), 9.25, true},
		{"bool true", true, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToFinite(tt.in)
			if ok != tt.ok {
				t.Fatalf("ToFinite(%v) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ToFinite(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestToFinite_Idempotent(t *testing.T) {
	// Feeding ToFinite its own output must be a no-op.
	for _, v := range []float64{0, 1, -3.75, 1e12, 0.000001} {
		first, ok := ToFinite(v)
		if !ok {
			t.Fatalf("ToFinite(%v) not ok", v)
		}
		second, ok := ToFinite(first)
		if !ok || second != first {
			t.Errorf("ToFinite not idempotent for %v: %v -> %v", v, first, second)
		}
	}
}

func TestFirstNumber_PrecedenceNotMerge(t *testing.T) {
	raw := map[string]any{
		"a": "not a number",
		"b": 10.0,
		"c": 20.0,
	}
	got, ok := FirstNumber(raw, "a", "b", "c")
	if !ok || got != 10 {
		t.Errorf("FirstNumber = %v, %v; want 10, true (first parseable wins, no merging)", got, ok)
	}

	if _, ok := FirstNumber(raw, "a", "missing"); ok {
		t.Error("FirstNumber should miss when no candidate parses")
	}
}

func TestRound(t *testing.T) {
	if got := Round(1.23456789, 4); got != 1.2346 {
		t.Errorf("Round(1.23456789, 4) = %v", got)
	}
	if got := Round(-1.5, 0); got != -2 {
		t.Errorf("Round(-1.5, 0) = %v, want -2 (half away from zero)", got)
	}
	if got := Round(2.5, 0); got != 3 {
		t.Errorf("Round(2.5, 0) = %v", got)
	}
}
