package models

import (
	"encoding/json"
	"testing"
)

func TestFieldValueFilled(t *testing.T) {
	if (FieldValue{}).Filled(FieldTypeText) {
		t.Error("absent value must not count as filled")
	}
	if StringValue("  ").Filled(FieldTypeText) {
		t.Error("whitespace-only string must not count as filled")
	}
	if !StringValue("Киев").Filled(FieldTypeText) {
		t.Error("non-empty string must count as filled")
	}
	// Zero integers are unfilled for both integer types: page count must be
	// positive and zero weight means the estimate is still pending.
	if IntValue(0).Filled(FieldTypeInteger) || IntValue(0).Filled(FieldTypeOptionalInteger) {
		t.Error("zero integer must not count as filled")
	}
	if !IntValue(5).Filled(FieldTypeInteger) {
		t.Error("positive integer must count as filled")
	}
}

func TestDeriveWeight(t *testing.T) {
	d := NewLeadData()
	d.DeriveWeight()
	if d.Get(FieldWeightGrams).Filled(FieldTypeOptionalInteger) {
		t.Error("no pages, no derived weight")
	}

	d.SetInt(FieldPagesA4, 5)
	d.DeriveWeight()
	if got := d.GetInt(FieldWeightGrams); got != 30 {
		t.Errorf("expected derived weight 30, got %d", got)
	}

	// An explicit weight is never overwritten by the estimate.
	d.SetInt(FieldWeightGrams, 100)
	d.DeriveWeight()
	if got := d.GetInt(FieldWeightGrams); got != 100 {
		t.Errorf("explicit weight overwritten: got %d", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	d := LeadData{FieldName: StringValue("Анна")}
	clone := d.Clone()
	clone.SetString(FieldName, "Борис")
	if d.GetString(FieldName) != "Анна" {
		t.Errorf("mutating the clone changed the original: %q", d.GetString(FieldName))
	}
}

func TestLeadDataJSONRoundTrip(t *testing.T) {
	d := LeadData{
		FieldDocType: StringValue("доверенность"),
		FieldPagesA4: IntValue(5),
	}
	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var flat map[string]any
	if err := json.Unmarshal(raw, &flat); err != nil {
		t.Fatalf("Unmarshal into map: %v", err)
	}
	if flat["doc_type"] != "доверенность" || flat["pages_a4"] != float64(5) {
		t.Errorf("unexpected flat payload: %v", flat)
	}
	if _, present := flat["weight_grams"]; present {
		t.Error("absent fields must be omitted from the payload")
	}

	var back LeadData
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.GetString(FieldDocType) != "доверенность" || back.GetInt(FieldPagesA4) != 5 {
		t.Errorf("round trip lost data: %v", back)
	}
}

func TestLeadDataUnmarshalLegacyNull(t *testing.T) {
	var d LeadData
	if err := json.Unmarshal([]byte(`{"doc_type":"справка","email":null}`), &d); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if d.Get(FieldEmail).Filled(FieldTypeEmail) {
		t.Error("null must decode as absent")
	}
	if d.GetString(FieldDocType) != "справка" {
		t.Errorf("unexpected doc_type: %q", d.GetString(FieldDocType))
	}

	if err := json.Unmarshal([]byte(`{"doc_type":["x"]}`), &d); err == nil {
		t.Error("expected an error for an unsupported field type")
	}
}
