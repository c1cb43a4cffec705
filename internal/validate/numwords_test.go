package validate

import "testing"

func TestParseNumberDigits(t *testing.T) {
	cases := map[string]int{
		"5":                5,
		"примерно 20 штук": 20,
		"120":              120,
	}
	for raw, want := range cases {
		n, ok := ParseNumber(raw)
		if !ok || n != want {
			t.Errorf("ParseNumber(%q) = %d, %v; want %d", raw, n, ok, want)
		}
	}
}

func TestParseNumberWords(t *testing.T) {
	cases := map[string]int{
		"пять":              5,
		"двадцать":          20,
		"двадцать пять":     25,
		"сто двадцать один": 121,
		"ноль":              0,
		"одна":              1,
		"две":               2,
	}
	for raw, want := range cases {
		n, ok := ParseNumber(raw)
		if !ok || n != want {
			t.Errorf("ParseNumber(%q) = %d, %v; want %d", raw, n, ok, want)
		}
	}
}

func TestParseNumberNoNumber(t *testing.T) {
	for _, raw := range []string{"", "несколько", "много листов"} {
		if n, ok := ParseNumber(raw); ok {
			t.Errorf("ParseNumber(%q) unexpectedly parsed %d", raw, n)
		}
	}
}
