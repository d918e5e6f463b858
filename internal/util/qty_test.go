package util

import (
	"math"
	"testing"
)

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  float64
	}{
		{name: "plain", input: "1", want: 1},
		{name: "decimal comma", input: "2,5", want: 2.5},
		{name: "decimal dot", input: "1.5", want: 1.5},
		{name: "thousand with space", input: "1 000", want: 1000},
		{name: "thousand with nbsp", input: "1\u00A0000", want: 1000},
		{name: "grouped dots", input: "1.000.000", want: 1000000},
		{name: "grouped commas", input: "1,000,000", want: 1000000},
		{name: "mixed separators", input: "1.234,5", want: 1234.5},
		{name: "with unit", input: "4 EA", want: 4},
		{name: "cyrillic unit", input: "3 шт.", want: 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseQuantity(tc.input)
			if !ok {
				t.Fatalf("qty rejected")
			}
			if got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestParseQuantityRejects(t *testing.T) {
	for _, input := range []string{"", "EA", "0", "0,0", "1.2.3.4x", "-", "..."} {
		got, ok := ParseQuantity(input)
		if ok {
			t.Fatalf("input %q accepted as %v", input, got)
		}
	}
}

func TestParseQuantityAlwaysFinitePositive(t *testing.T) {
	for _, input := range []string{"9", "12,75", "1e5", "99999999999999999999", "5 pcs", "7.0"} {
		got, ok := ParseQuantity(input)
		if !ok {
			continue
		}
		if math.IsNaN(got) || math.IsInf(got, 0) || got <= 0 {
			t.Fatalf("input %q produced %v", input, got)
		}
	}
}

func TestNormalizeUnit(t *testing.T) {
	cases := []struct {
		unit, pn, want string
	}{
		{"", "123-4", "EA"},
		{"шт.", "123-4", "EA"},
		{"pcs", "123-4", "EA"},
		{"kit", "123-4", "KT"},
		{"123-4", "123-4", "EA"},
		{"ft", "123-4", "FT"},
	}
	for _, tc := range cases {
		if got := NormalizeUnit(tc.unit, tc.pn); got != tc.want {
			t.Fatalf("NormalizeUnit(%q, %q)=%q want %q", tc.unit, tc.pn, got, tc.want)
		}
	}
}

func TestSplitQtyUnit(t *testing.T) {
	qty, unit := SplitQtyUnit("2 EA")
	if qty != "2" || unit != "EA" {
		t.Fatalf("got %q %q", qty, unit)
	}
	qty, unit = SplitQtyUnit("10")
	if qty != "10" || unit != "" {
		t.Fatalf("got %q %q", qty, unit)
	}
}
