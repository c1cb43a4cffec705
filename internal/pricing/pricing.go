// Package pricing computes deterministic price quotes and delivery estimates
// for completed leads.
//
// Everything here is a table lookup: weight bands per urgency for the price,
// a fixed corridor set for the transit estimate. The engine never
// extrapolates beyond the table — anything outside it is reported as
// requiring manual handling.
package pricing

import (
	"github.com/islogix/docubridge/internal/models"
	"github.com/islogix/docubridge/internal/schema"
)

// band is one ascending weight-threshold → price step of a tariff ladder.
type band struct {
	MaxGrams int
	PriceEUR int
}

// Tariff ladders in EUR. Bands are ascending and the last threshold is a hard
// cap: heavier shipments are quoted manually.
var (
	standardBands = []band{
		{MaxGrams: 50, PriceEUR: 25},
		{MaxGrams: 100, PriceEUR: 35},
		{MaxGrams: 250, PriceEUR: 50},
		{MaxGrams: 500, PriceEUR: 70},
	}
	expressBands = []band{
		{MaxGrams: 50, PriceEUR: 40},
		{MaxGrams: 100, PriceEUR: 55},
		{MaxGrams: 250, PriceEUR: 75},
		{MaxGrams: 500, PriceEUR: 105},
	}
)

// corridor is an ordered (origin, destination) country pair.
type corridor struct {
	From, To string
}

// corridorETA lists the known corridors and their transit estimates. Both
// directions of each route carry the same estimate.
var corridorETA = map[corridor]string{
	{schema.CountryUkraine, schema.CountryRussia}:  "10–14 дней",
	{schema.CountryRussia, schema.CountryUkraine}:  "10–14 дней",
	{schema.CountryUkraine, schema.CountryBelarus}: "7–10 дней",
	{schema.CountryBelarus, schema.CountryUkraine}: "7–10 дней",
	{schema.CountryRussia, schema.CountryBelarus}:  "8–12 дней",
	{schema.CountryBelarus, schema.CountryRussia}:  "8–12 дней",
}

// User-facing sentinels for lookups that fall outside the tables.
const (
	ETAExpress     = "ускоренная доставка, сроки уточнит менеджер"
	ETAUnknown     = "маршрут уточняется менеджером"
	NoteManualMin  = "вес не указан — цену рассчитает менеджер"
	NoteManualOver = "вес выше тарифной сетки — цену рассчитает менеджер"
)

// ComputeQuote derives the quote for a completed lead. It is a pure function
// of (weight, urgency, route): identical input yields identical output.
func ComputeQuote(data models.LeadData) models.Quote {
	urgency := data.GetString(models.FieldUrgency)
	weight := data.GetInt(models.FieldWeightGrams)

	q := models.Quote{
		Currency: "EUR",
		Urgency:  urgency,
	}

	bands := standardBands
	if urgency == schema.UrgencyExpress {
		bands = expressBands
	}

	switch {
	case weight <= 0:
		q.Notes = NoteManualMin
	case weight > bands[len(bands)-1].MaxGrams:
		q.Notes = NoteManualOver
	default:
		for _, b := range bands {
			if weight <= b.MaxGrams {
				price := b.PriceEUR
				q.PriceEUR = &price
				q.WeightThresholdGrams = b.MaxGrams
				break
			}
		}
	}

	if urgency == schema.UrgencyExpress {
		q.ETA = ETAExpress
		return q
	}
	from := data.GetString(models.FieldFromCountry)
	to := data.GetString(models.FieldToCountry)
	if eta, ok := corridorETA[corridor{From: from, To: to}]; ok {
		q.ETA = eta
	} else {
		q.ETA = ETAUnknown
	}
	return q
}
