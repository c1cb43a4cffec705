package models

// Quote is the derived price and delivery estimate for a completed lead.
// It is computed on demand and never stored: a pure function of
// (weight, urgency, route).
type Quote struct {
	// PriceEUR is nil when the weight falls outside the tariff table (or is
	// unknown) and the price requires manual quoting.
	PriceEUR *int `json:"price_eur,omitempty"`
	// Currency is always EUR for the current tariff.
	Currency string `json:"currency"`
	// WeightThresholdGrams is the tariff band the weight fell into; zero when
	// the price is manual.
	WeightThresholdGrams int `json:"weight_threshold_grams,omitempty"`
	// ETA is the human-readable delivery estimate for the corridor.
	ETA string `json:"eta"`
	// Urgency is the canonical urgency the quote was computed for.
	Urgency string `json:"urgency"`
	// Notes carries tariff caveats such as the manual-quote reason.
	Notes string `json:"notes,omitempty"`
}

// Manual reports whether the quote needs manual pricing by an operator.
func (q Quote) Manual() bool { return q.PriceEUR == nil }
