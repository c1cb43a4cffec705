package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/islogix/docubridge/internal/models"
	"github.com/islogix/docubridge/internal/pricing"
	"github.com/islogix/docubridge/internal/schema"
)

// finalize completes the wizard: persist the lead snapshot, compute the
// quote, notify the operator and confirm to the user. The status flips to
// completed before the reply is sent, so the lead can never be finalized
// twice. Persistence and notification failures are logged; the user still
// gets the confirmation.
func (c *Controller) finalize(ctx context.Context, st *models.ConversationState, userText string) error {
	st.Lead.DeriveWeight()

	lead := models.Lead{
		ConversationID: st.ConversationID,
		Data:           st.Lead.Clone(),
		CreatedAt:      time.Now(),
	}
	if err := c.store.AddLead(lead); err != nil {
		slog.Error("Controller failed to persist lead", "conversation", st.ConversationID, "error", err)
	} else {
		slog.Info("Controller persisted lead", "conversation", st.ConversationID)
	}

	quote := pricing.ComputeQuote(st.Lead)

	if c.notifier != nil {
		if err := c.notifier.NotifyLead(ctx, st.ConversationID, st.Lead, quote); err != nil {
			slog.Error("Controller failed to notify operator", "conversation", st.ConversationID, "error", err)
		}
	}

	st.Status = models.StatusCompleted
	st.ExpectedIndex = schema.Len()
	return c.respond(ctx, st, userText, confirmationText(st.Lead, quote), nil)
}

// confirmationText renders the user-facing summary of the accepted lead.
func confirmationText(data models.LeadData, quote models.Quote) string {
	price := "рассчитает менеджер"
	if quote.PriceEUR != nil {
		price = fmt.Sprintf("%d %s (до %d г)", *quote.PriceEUR, quote.Currency, quote.WeightThresholdGrams)
	}
	lines := []string{
		fmt.Sprintf("Спасибо, %s! Заявка принята. ✅", data.Get(models.FieldName).Display()),
		"",
		fmt.Sprintf("Документ: %s", data.Get(models.FieldDocType).Display()),
		fmt.Sprintf("Маршрут: %s (%s) → %s (%s)",
			data.Get(models.FieldFromCity).Display(), data.Get(models.FieldFromCountry).Display(),
			data.Get(models.FieldToCity).Display(), data.Get(models.FieldToCountry).Display()),
		fmt.Sprintf("Листов A4: %s, вес ≈ %s г",
			data.Get(models.FieldPagesA4).Display(), data.Get(models.FieldWeightGrams).Display()),
		fmt.Sprintf("Цена: %s", price),
		fmt.Sprintf("Срок: %s", quote.ETA),
	}
	if quote.Notes != "" {
		lines = append(lines, fmt.Sprintf("Примечание: %s", quote.Notes))
	}
	lines = append(lines, "",
		fmt.Sprintf("Менеджер свяжется с вами по телефону %s (%s).",
			data.Get(models.FieldPhone).Display(), data.Get(models.FieldBestTime).Display()))
	return strings.Join(lines, "\n")
}
