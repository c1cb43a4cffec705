package validate

import (
	"testing"

	"github.com/islogix/docubridge/internal/models"
	"github.com/islogix/docubridge/internal/schema"
)

func TestDocTypeValidator(t *testing.T) {
	v, err := Field(models.FieldDocType, "доверенность")
	if err != nil {
		t.Fatalf("expected valid doc type, got %v", err)
	}
	if v.Str != "доверенность" {
		t.Errorf("expected trimmed value, got %q", v.Str)
	}

	forbidden := []string{"паспорт", "Паспорт гражданина", "товар", "деньги", "валюта", "ценности", "passport"}
	for _, raw := range forbidden {
		if _, err := Field(models.FieldDocType, raw); err == nil {
			t.Errorf("expected %q to be rejected", raw)
		}
	}
}

func TestCountryValidator(t *testing.T) {
	v, err := Field(models.FieldFromCountry, "украины")
	if err != nil {
		t.Fatalf("expected country to validate, got %v", err)
	}
	if v.Str != schema.CountryUkraine {
		t.Errorf("expected canonical %q, got %q", schema.CountryUkraine, v.Str)
	}
	if _, err := Field(models.FieldFromCountry, "Казахстан"); err == nil {
		t.Error("expected unsupported country to be rejected")
	}
}

func TestUrgencyValidator(t *testing.T) {
	cases := map[string]string{
		"срочно":    schema.UrgencyExpress,
		"обычная":   schema.UrgencyStandard,
		"не срочно": schema.UrgencyStandard,
	}
	for raw, want := range cases {
		v, err := Field(models.FieldUrgency, raw)
		if err != nil {
			t.Errorf("%q: unexpected error %v", raw, err)
			continue
		}
		if v.Str != want {
			t.Errorf("%q: expected %q, got %q", raw, want, v.Str)
		}
	}
	if _, err := Field(models.FieldUrgency, "послезавтра"); err == nil {
		t.Error("expected unrecognized urgency to be rejected")
	}
}

func TestPagesValidator(t *testing.T) {
	v, err := Field(models.FieldPagesA4, "5")
	if err != nil || v.Int != 5 {
		t.Fatalf("expected 5 pages, got %v (err=%v)", v.Int, err)
	}
	if _, err := Field(models.FieldPagesA4, "0"); err == nil {
		t.Error("expected zero pages to be rejected")
	}
	if _, err := Field(models.FieldPagesA4, "несколько"); err == nil {
		t.Error("expected non-number to be rejected")
	}
}

func TestWeightValidatorAllowsZero(t *testing.T) {
	v, err := Field(models.FieldWeightGrams, "0")
	if err != nil {
		t.Fatalf("zero weight means unknown and must validate, got %v", err)
	}
	if v.Int != 0 {
		t.Errorf("expected 0, got %d", v.Int)
	}
}

func TestPhoneValidator(t *testing.T) {
	valid := map[string]string{
		"+380501234567":     "+380501234567",
		"+7 912 345-67-89":  "+79123456789",
		"+375 (29) 1234567": "+375291234567",
	}
	for raw, want := range valid {
		v, err := Field(models.FieldPhone, raw)
		if err != nil {
			t.Errorf("%q: unexpected error %v", raw, err)
			continue
		}
		if v.Str != want {
			t.Errorf("%q: expected %q, got %q", raw, want, v.Str)
		}
	}

	invalid := []string{"0501234567", "+49123456789", "телефон", "+38"}
	for _, raw := range invalid {
		_, err := Field(models.FieldPhone, raw)
		if err == nil {
			t.Errorf("expected %q to be rejected", raw)
			continue
		}
		if err.Error() != "Телефон должен начинаться с +380, +7 или +375." {
			t.Errorf("%q: unexpected re-prompt %q", raw, err.Error())
		}
	}
}

func TestEmailValidator(t *testing.T) {
	if _, err := Field(models.FieldEmail, "name@example.com"); err != nil {
		t.Errorf("expected valid email, got %v", err)
	}
	invalid := []string{"name", "name@", "@example.com", "a@b", "a@@b.com", "a b@c.com"}
	for _, raw := range invalid {
		if _, err := Field(models.FieldEmail, raw); err == nil {
			t.Errorf("expected %q to be rejected", raw)
		}
	}
}

func TestPersonNameValidator(t *testing.T) {
	valid := []string{"Анна", "Jean-Luc", "О'Коннор", "Мария Петрова"}
	for _, raw := range valid {
		if _, err := Field(models.FieldName, raw); err != nil {
			t.Errorf("expected %q to validate, got %v", raw, err)
		}
	}
	invalid := []string{"X", "123", "Анна2"}
	for _, raw := range invalid {
		if _, err := Field(models.FieldName, raw); err == nil {
			t.Errorf("expected %q to be rejected", raw)
		}
	}
}

func TestTextValidatorRejectsEmpty(t *testing.T) {
	if _, err := Field(models.FieldBestTime, "   "); err == nil {
		t.Error("expected blank text to be rejected")
	}
}

func TestFieldUnknownKey(t *testing.T) {
	if _, err := Field("bogus", "x"); err == nil {
		t.Error("expected unknown key to error")
	}
}
