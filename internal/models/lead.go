// Package models defines the core data contracts shared across DocuBridge components.
package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// FieldKey identifies one field of the lead schema.
type FieldKey string

// Keys of the twelve lead fields, in no particular order here; the
// authoritative ordering lives in the schema package.
const (
	FieldDocType     FieldKey = "doc_type"
	FieldFromCountry FieldKey = "from_country"
	FieldFromCity    FieldKey = "from_city"
	FieldToCountry   FieldKey = "to_country"
	FieldToCity      FieldKey = "to_city"
	FieldPagesA4     FieldKey = "pages_a4"
	FieldWeightGrams FieldKey = "weight_grams"
	FieldUrgency     FieldKey = "urgency"
	FieldName        FieldKey = "name"
	FieldPhone       FieldKey = "phone"
	FieldEmail       FieldKey = "email"
	FieldBestTime    FieldKey = "best_time"
)

// FieldType is the closed set of value types a schema field can have.
// Validators dispatch on it; adding a type means adding a validator variant.
type FieldType int

const (
	FieldTypeText FieldType = iota
	FieldTypeChoice
	FieldTypeInteger
	FieldTypeOptionalInteger
	FieldTypePhone
	FieldTypeEmail
	FieldTypePersonName
)

// String returns a stable name for logging.
func (t FieldType) String() string {
	switch t {
	case FieldTypeText:
		return "text"
	case FieldTypeChoice:
		return "choice"
	case FieldTypeInteger:
		return "integer"
	case FieldTypeOptionalInteger:
		return "optional_integer"
	case FieldTypePhone:
		return "phone"
	case FieldTypeEmail:
		return "email"
	case FieldTypePersonName:
		return "person_name"
	default:
		return fmt.Sprintf("field_type(%d)", int(t))
	}
}

// ValueKind tags the variant held by a FieldValue.
type ValueKind int

const (
	// ValueAbsent means the field has never been filled.
	ValueAbsent ValueKind = iota
	// ValueString holds a validated string value.
	ValueString
	// ValueInt holds a validated integer value.
	ValueInt
)

// FieldValue is the tagged variant stored per field: absent, string or integer.
// Using an explicit variant makes "is filled" a total function instead of ad
// hoc truthiness checks on an untyped map.
type FieldValue struct {
	Kind ValueKind
	Str  string
	Int  int
}

// StringValue constructs a string-valued FieldValue.
func StringValue(s string) FieldValue { return FieldValue{Kind: ValueString, Str: s} }

// IntValue constructs an integer-valued FieldValue.
func IntValue(n int) FieldValue { return FieldValue{Kind: ValueInt, Int: n} }

// Filled reports whether the value counts as filled for a field of type t.
// A zero integer is unfilled for both integer types: page count must be
// positive, and zero weight means "unknown, estimate from pages".
func (v FieldValue) Filled(t FieldType) bool {
	switch v.Kind {
	case ValueString:
		return strings.TrimSpace(v.Str) != ""
	case ValueInt:
		switch t {
		case FieldTypeInteger, FieldTypeOptionalInteger:
			return v.Int > 0
		default:
			return true
		}
	default:
		return false
	}
}

// Display renders the value for user- and operator-facing summaries.
func (v FieldValue) Display() string {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueInt:
		return fmt.Sprintf("%d", v.Int)
	default:
		return "—"
	}
}

// LeadData maps schema field keys to their collected values. Only values that
// already passed the field's validator are ever stored in it.
type LeadData map[FieldKey]FieldValue

// NewLeadData returns an empty lead.
func NewLeadData() LeadData { return make(LeadData) }

// Get returns the value for key; the zero FieldValue (absent) when unset.
func (d LeadData) Get(key FieldKey) FieldValue {
	if d == nil {
		return FieldValue{}
	}
	return d[key]
}

// SetString stores a validated string value.
func (d LeadData) SetString(key FieldKey, s string) { d[key] = StringValue(s) }

// SetInt stores a validated integer value.
func (d LeadData) SetInt(key FieldKey, n int) { d[key] = IntValue(n) }

// GetString returns the string value for key, or "" when absent or integer.
func (d LeadData) GetString(key FieldKey) string {
	v := d.Get(key)
	if v.Kind != ValueString {
		return ""
	}
	return v.Str
}

// GetInt returns the integer value for key, or 0 when absent or string.
func (d LeadData) GetInt(key FieldKey) int {
	v := d.Get(key)
	if v.Kind != ValueInt {
		return 0
	}
	return v.Int
}

// Clone returns an independent copy of the lead data.
func (d LeadData) Clone() LeadData {
	out := make(LeadData, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// DeriveWeight backfills weight_grams from pages_a4 at roughly 6 g per A4
// sheet when the weight is still unknown. No-op otherwise.
func (d LeadData) DeriveWeight() {
	pages := d.GetInt(FieldPagesA4)
	if pages <= 0 {
		return
	}
	if d.Get(FieldWeightGrams).Filled(FieldTypeOptionalInteger) {
		return
	}
	d.SetInt(FieldWeightGrams, pages*6)
}

// MarshalJSON encodes the lead as the flat payload object the original
// product stored: {"doc_type":"...","pages_a4":5,...}. Absent fields are
// omitted so persisted payloads stay minimal.
func (d LeadData) MarshalJSON() ([]byte, error) {
	flat := make(map[FieldKey]any, len(d))
	for k, v := range d {
		switch v.Kind {
		case ValueString:
			flat[k] = v.Str
		case ValueInt:
			flat[k] = v.Int
		}
	}
	return json.Marshal(flat)
}

// UnmarshalJSON decodes the flat payload object, mapping JSON numbers back to
// integer values and everything else to strings.
func (d *LeadData) UnmarshalJSON(data []byte) error {
	var flat map[FieldKey]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return fmt.Errorf("decode lead payload: %w", err)
	}
	out := make(LeadData, len(flat))
	for k, raw := range flat {
		switch val := raw.(type) {
		case string:
			out[k] = StringValue(val)
		case float64:
			out[k] = IntValue(int(val))
		case nil:
			// Legacy payloads may carry explicit nulls; treat as absent.
		default:
			return fmt.Errorf("lead field %s has unsupported type %T", k, raw)
		}
	}
	*d = out
	return nil
}

// Keys returns the filled keys in stable (lexical) order, for deterministic
// logging and tests.
func (d LeadData) Keys() []FieldKey {
	keys := make([]FieldKey, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
