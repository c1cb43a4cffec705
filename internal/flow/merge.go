package flow

import (
	"github.com/islogix/docubridge/internal/models"
	"github.com/islogix/docubridge/internal/schema"
)

// Merge combines already-collected data with a freshly extracted field map
// under the no-clobber rule: an extracted value lands only where the existing
// value is absent, empty or zero. Already-valid answers are never overwritten
// by a later, possibly noisier, extraction. The input maps are not mutated;
// the merge is all-or-nothing per turn. The second return reports whether the
// result differs from existing.
func Merge(existing models.LeadData, extracted models.LeadData) (models.LeadData, bool) {
	merged := existing.Clone()
	changed := false
	for _, f := range schema.Fields() {
		v, ok := extracted[f.Key]
		if !ok || !v.Filled(f.Type) {
			continue
		}
		if merged.Get(f.Key).Filled(f.Type) {
			continue
		}
		merged[f.Key] = v
		changed = true
	}
	if changed {
		merged.DeriveWeight()
	}
	return merged, changed
}

// FirstMissing returns the schema index of the first field whose current
// value does not count as filled, or schema.Len() when the form is complete.
// This index is the single source of truth for "what to ask next".
func FirstMissing(data models.LeadData) int {
	for i, f := range schema.Fields() {
		if !data.Get(f.Key).Filled(f.Type) {
			return i
		}
	}
	return schema.Len()
}

// Complete reports whether every schema field is filled.
func Complete(data models.LeadData) bool {
	return FirstMissing(data) == schema.Len()
}
