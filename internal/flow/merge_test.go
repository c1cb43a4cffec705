package flow

import (
	"testing"

	"github.com/islogix/docubridge/internal/models"
	"github.com/islogix/docubridge/internal/schema"
)

func TestMergeFillsOnlyMissingFields(t *testing.T) {
	existing := models.NewLeadData()
	existing.SetString(models.FieldDocType, "доверенность")
	existing.SetInt(models.FieldPagesA4, 20)

	extracted := models.NewLeadData()
	extracted.SetString(models.FieldDocType, "диплом")
	extracted.SetInt(models.FieldPagesA4, 5)
	extracted.SetString(models.FieldUrgency, schema.UrgencyExpress)

	merged, changed := Merge(existing, extracted)
	if !changed {
		t.Fatal("expected merge to report a change")
	}
	if merged.GetString(models.FieldDocType) != "доверенность" {
		t.Errorf("doc_type was clobbered: %q", merged.GetString(models.FieldDocType))
	}
	if merged.GetInt(models.FieldPagesA4) != 20 {
		t.Errorf("pages_a4 was clobbered: %d", merged.GetInt(models.FieldPagesA4))
	}
	if merged.GetString(models.FieldUrgency) != schema.UrgencyExpress {
		t.Errorf("urgency not filled: %q", merged.GetString(models.FieldUrgency))
	}
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	existing := models.NewLeadData()
	extracted := models.NewLeadData()
	extracted.SetInt(models.FieldPagesA4, 10)

	merged, _ := Merge(existing, extracted)
	if len(existing) != 0 {
		t.Errorf("existing map was mutated: %v", existing.Keys())
	}
	if merged.GetInt(models.FieldPagesA4) != 10 {
		t.Errorf("merged missing pages: %d", merged.GetInt(models.FieldPagesA4))
	}
}

func TestMergeDerivesWeight(t *testing.T) {
	extracted := models.NewLeadData()
	extracted.SetInt(models.FieldPagesA4, 20)

	merged, changed := Merge(models.NewLeadData(), extracted)
	if !changed {
		t.Fatal("expected change")
	}
	if merged.GetInt(models.FieldWeightGrams) != 120 {
		t.Errorf("expected derived weight 120, got %d", merged.GetInt(models.FieldWeightGrams))
	}
}

func TestMergeNoChange(t *testing.T) {
	existing := models.NewLeadData()
	existing.SetString(models.FieldDocType, "справка")

	extracted := models.NewLeadData()
	extracted.SetString(models.FieldDocType, "диплом")

	if _, changed := Merge(existing, extracted); changed {
		t.Error("merge of already-filled fields must report no change")
	}
	if _, changed := Merge(existing, nil); changed {
		t.Error("merge of nil extraction must report no change")
	}
}

func TestMergeIgnoresUnfilledValues(t *testing.T) {
	extracted := models.NewLeadData()
	extracted.SetInt(models.FieldPagesA4, 0)
	extracted.SetString(models.FieldDocType, "  ")

	if _, changed := Merge(models.NewLeadData(), extracted); changed {
		t.Error("zero pages and blank strings must not count as filled")
	}
}

func TestFirstMissingMonotonic(t *testing.T) {
	data := models.NewLeadData()
	if FirstMissing(data) != 0 {
		t.Fatalf("empty lead: expected index 0, got %d", FirstMissing(data))
	}

	prev := 0
	fills := []struct {
		key models.FieldKey
		set func(models.LeadData)
	}{
		{models.FieldDocType, func(d models.LeadData) { d.SetString(models.FieldDocType, "доверенность") }},
		{models.FieldFromCountry, func(d models.LeadData) { d.SetString(models.FieldFromCountry, schema.CountryUkraine) }},
		{models.FieldFromCity, func(d models.LeadData) { d.SetString(models.FieldFromCity, "Киев") }},
		{models.FieldToCountry, func(d models.LeadData) { d.SetString(models.FieldToCountry, schema.CountryRussia) }},
		{models.FieldToCity, func(d models.LeadData) { d.SetString(models.FieldToCity, "Москва") }},
		{models.FieldPagesA4, func(d models.LeadData) { d.SetInt(models.FieldPagesA4, 5); d.DeriveWeight() }},
		{models.FieldUrgency, func(d models.LeadData) { d.SetString(models.FieldUrgency, schema.UrgencyStandard) }},
		{models.FieldName, func(d models.LeadData) { d.SetString(models.FieldName, "Анна") }},
		{models.FieldPhone, func(d models.LeadData) { d.SetString(models.FieldPhone, "+79123456789") }},
		{models.FieldEmail, func(d models.LeadData) { d.SetString(models.FieldEmail, "anna@example.com") }},
		{models.FieldBestTime, func(d models.LeadData) { d.SetString(models.FieldBestTime, "вечером") }},
	}
	for _, f := range fills {
		f.set(data)
		cur := FirstMissing(data)
		if cur < prev {
			t.Errorf("cursor moved backwards after filling %s: %d < %d", f.key, cur, prev)
		}
		prev = cur
	}
	if !Complete(data) {
		t.Errorf("expected complete lead, first missing is %s", schema.ByIndex(FirstMissing(data)).Key)
	}
}

func TestFirstMissingSkipsDerivedWeight(t *testing.T) {
	data := models.NewLeadData()
	for _, f := range schema.Fields() {
		switch f.Key {
		case models.FieldPagesA4:
			data.SetInt(f.Key, 5)
			data.DeriveWeight()
		case models.FieldWeightGrams:
			// left to derivation
		default:
			data.SetString(f.Key, "x")
		}
	}
	if !Complete(data) {
		t.Errorf("derived weight should complete the lead, first missing is %s",
			schema.ByIndex(FirstMissing(data)).Key)
	}
}
