package schema

import (
	"testing"

	"github.com/islogix/docubridge/internal/models"
)

func TestFieldOrder(t *testing.T) {
	expected := []models.FieldKey{
		models.FieldDocType,
		models.FieldFromCountry,
		models.FieldFromCity,
		models.FieldToCountry,
		models.FieldToCity,
		models.FieldPagesA4,
		models.FieldWeightGrams,
		models.FieldUrgency,
		models.FieldName,
		models.FieldPhone,
		models.FieldEmail,
		models.FieldBestTime,
	}
	if Len() != len(expected) {
		t.Fatalf("expected %d fields, got %d", len(expected), Len())
	}
	for i, key := range expected {
		if ByIndex(i).Key != key {
			t.Errorf("position %d: expected %s, got %s", i, key, ByIndex(i).Key)
		}
		if IndexOf(key) != i {
			t.Errorf("IndexOf(%s): expected %d, got %d", key, i, IndexOf(key))
		}
	}
}

func TestByKeyUnknown(t *testing.T) {
	if _, ok := ByKey("no_such_field"); ok {
		t.Error("expected lookup miss for unknown key")
	}
}

func TestEveryFieldHasPrompt(t *testing.T) {
	for _, f := range Fields() {
		if f.Prompt == "" {
			t.Errorf("field %s has no prompt", f.Key)
		}
	}
}

func TestMatchAlias(t *testing.T) {
	cases := []struct {
		text string
		key  models.FieldKey
	}{
		{"давайте поменяем телефон", models.FieldPhone},
		{"исправьте страну доставки", models.FieldToCountry},
		{"поменяй почту пожалуйста", models.FieldEmail},
		{"измени количество листов", models.FieldPagesA4},
	}
	for _, c := range cases {
		f, ok := MatchAlias(c.text)
		if !ok {
			t.Errorf("%q: expected alias match", c.text)
			continue
		}
		if f.Key != c.key {
			t.Errorf("%q: expected %s, got %s", c.text, c.key, f.Key)
		}
	}
	if _, ok := MatchAlias("добрый день"); ok {
		t.Error("expected no alias match for greeting")
	}
}

func TestMatchAliasLongestWins(t *testing.T) {
	// "страну доставки" contains no "куда", but "куда доставить страну доставки"
	// contains both; the longer alias must win.
	f, ok := MatchAlias("куда? поменяйте страну доставки")
	if !ok || f.Key != models.FieldToCountry {
		t.Fatalf("expected to_country, got %v (ok=%v)", f.Key, ok)
	}
}

func TestCanonicalCountry(t *testing.T) {
	cases := map[string]string{
		"украина":  CountryUkraine,
		"Украины":  CountryUkraine,
		"ukraine":  CountryUkraine,
		" РФ ":     CountryRussia,
		"россию":   CountryRussia,
		"Беларусь": CountryBelarus,
		"belarus":  CountryBelarus,
	}
	for raw, want := range cases {
		got, ok := CanonicalCountry(raw)
		if !ok || got != want {
			t.Errorf("CanonicalCountry(%q) = %q, %v; want %q", raw, got, ok, want)
		}
	}
	if _, ok := CanonicalCountry("Германия"); ok {
		t.Error("expected unsupported country to be rejected")
	}
}

func TestCanonicalUrgency(t *testing.T) {
	cases := map[string]string{
		"срочно":            UrgencyExpress,
		"express":           UrgencyExpress,
		"как можно быстрее": UrgencyExpress,
		"обычная":           UrgencyStandard,
		"standard":          UrgencyStandard,
		"не срочно":         UrgencyStandard,
	}
	for raw, want := range cases {
		got, ok := CanonicalUrgency(raw)
		if !ok || got != want {
			t.Errorf("CanonicalUrgency(%q) = %q, %v; want %q", raw, got, ok, want)
		}
	}
	if _, ok := CanonicalUrgency("завтра"); ok {
		t.Error("expected unrecognized urgency to be rejected")
	}
}
