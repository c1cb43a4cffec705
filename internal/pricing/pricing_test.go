package pricing

import (
	"testing"

	"github.com/islogix/docubridge/internal/models"
	"github.com/islogix/docubridge/internal/schema"
)

func leadWith(weight int, urgency, from, to string) models.LeadData {
	data := models.NewLeadData()
	if weight > 0 {
		data.SetInt(models.FieldWeightGrams, weight)
	}
	data.SetString(models.FieldUrgency, urgency)
	data.SetString(models.FieldFromCountry, from)
	data.SetString(models.FieldToCountry, to)
	return data
}

func TestComputeQuoteStandardBands(t *testing.T) {
	cases := []struct {
		weight int
		price  int
		cap    int
	}{
		{1, 25, 50},
		{30, 25, 50},
		{50, 25, 50},
		{51, 35, 100},
		{80, 35, 100},
		{100, 35, 100},
		{250, 50, 250},
		{251, 70, 500},
		{500, 70, 500},
	}
	for _, c := range cases {
		q := ComputeQuote(leadWith(c.weight, schema.UrgencyStandard, schema.CountryUkraine, schema.CountryRussia))
		if q.PriceEUR == nil {
			t.Fatalf("weight %d: expected price, got manual quote (notes=%q)", c.weight, q.Notes)
		}
		if *q.PriceEUR != c.price {
			t.Errorf("weight %d: expected %d EUR, got %d", c.weight, c.price, *q.PriceEUR)
		}
		if q.WeightThresholdGrams != c.cap {
			t.Errorf("weight %d: expected threshold %d, got %d", c.weight, c.cap, q.WeightThresholdGrams)
		}
		if q.Currency != "EUR" {
			t.Errorf("weight %d: expected EUR currency, got %q", c.weight, q.Currency)
		}
	}
}

func TestComputeQuoteExpressBands(t *testing.T) {
	cases := []struct {
		weight int
		price  int
	}{
		{50, 40},
		{100, 55},
		{250, 75},
		{500, 105},
	}
	for _, c := range cases {
		q := ComputeQuote(leadWith(c.weight, schema.UrgencyExpress, schema.CountryUkraine, schema.CountryBelarus))
		if q.PriceEUR == nil || *q.PriceEUR != c.price {
			t.Errorf("weight %d: expected %d EUR express, got %+v", c.weight, c.price, q.PriceEUR)
		}
		if q.ETA != ETAExpress {
			t.Errorf("weight %d: expected express ETA sentinel, got %q", c.weight, q.ETA)
		}
	}
}

func TestComputeQuoteOverweightIsManual(t *testing.T) {
	q := ComputeQuote(leadWith(600, schema.UrgencyStandard, schema.CountryUkraine, schema.CountryRussia))
	if !q.Manual() {
		t.Fatalf("expected manual quote for 600 g, got %d EUR", *q.PriceEUR)
	}
	if q.Notes != NoteManualOver {
		t.Errorf("expected overweight note, got %q", q.Notes)
	}
	if q.ETA != "10–14 дней" {
		t.Errorf("ETA should still be computed for manual quotes, got %q", q.ETA)
	}
}

func TestComputeQuoteMissingWeightIsManual(t *testing.T) {
	q := ComputeQuote(leadWith(0, schema.UrgencyStandard, schema.CountryUkraine, schema.CountryRussia))
	if !q.Manual() {
		t.Fatal("expected manual quote when weight is unknown")
	}
	if q.Notes != NoteManualMin {
		t.Errorf("expected missing-weight note, got %q", q.Notes)
	}
}

func TestComputeQuoteCorridors(t *testing.T) {
	cases := []struct {
		from, to string
		eta      string
	}{
		{schema.CountryUkraine, schema.CountryRussia, "10–14 дней"},
		{schema.CountryRussia, schema.CountryUkraine, "10–14 дней"},
		{schema.CountryUkraine, schema.CountryBelarus, "7–10 дней"},
		{schema.CountryBelarus, schema.CountryUkraine, "7–10 дней"},
		{schema.CountryRussia, schema.CountryBelarus, "8–12 дней"},
		{schema.CountryBelarus, schema.CountryRussia, "8–12 дней"},
	}
	for _, c := range cases {
		q := ComputeQuote(leadWith(40, schema.UrgencyStandard, c.from, c.to))
		if q.ETA != c.eta {
			t.Errorf("%s → %s: expected ETA %q, got %q", c.from, c.to, c.eta, q.ETA)
		}
	}
}

func TestComputeQuoteUnknownCorridor(t *testing.T) {
	q := ComputeQuote(leadWith(40, schema.UrgencyStandard, schema.CountryUkraine, schema.CountryUkraine))
	if q.ETA != ETAUnknown {
		t.Errorf("expected unknown-route sentinel for domestic pair, got %q", q.ETA)
	}
}

func TestComputeQuoteDeterministic(t *testing.T) {
	data := leadWith(120, schema.UrgencyStandard, schema.CountryRussia, schema.CountryBelarus)
	first := ComputeQuote(data)
	for i := 0; i < 10; i++ {
		q := ComputeQuote(data)
		if *q.PriceEUR != *first.PriceEUR || q.ETA != first.ETA || q.Notes != first.Notes {
			t.Fatalf("quote not deterministic: first %+v, run %d got %+v", first, i, q)
		}
	}
}
