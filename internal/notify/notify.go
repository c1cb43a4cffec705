// Package notify delivers operator-facing notifications about finalized leads
// and, optionally, mirrors the dialog to the operator chat.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/islogix/docubridge/internal/messaging"
	"github.com/islogix/docubridge/internal/models"
)

// Notifier is the operator notification contract consumed by the flow
// controller. Implementations must be no-ops when unconfigured.
type Notifier interface {
	// NotifyLead sends the operator summary for one finalized lead.
	NotifyLead(ctx context.Context, conversationID string, data models.LeadData, quote models.Quote) error
	// MirrorExchange forwards one user/bot exchange to the operator chat.
	MirrorExchange(ctx context.Context, conversationID, userText, botReply string) error
}

// AdminNotifier sends notifications to a configured operator chat through the
// same messaging transport the bot uses. An empty operator id disables it,
// and notifications destined for the user's own chat are skipped to avoid a
// self-notification loop.
type AdminNotifier struct {
	svc     messaging.Service
	adminID string
	mirror  bool
}

// NewAdminNotifier creates an AdminNotifier. adminID may be empty (disabled);
// mirror enables per-exchange dialog mirroring.
func NewAdminNotifier(svc messaging.Service, adminID string, mirror bool) *AdminNotifier {
	return &AdminNotifier{svc: svc, adminID: adminID, mirror: mirror}
}

// skip reports whether notifications for this conversation are suppressed.
func (n *AdminNotifier) skip(conversationID string) bool {
	return n.adminID == "" || n.adminID == conversationID
}

// NotifyLead sends the lead summary to the operator chat.
func (n *AdminNotifier) NotifyLead(ctx context.Context, conversationID string, data models.LeadData, quote models.Quote) error {
	if n.skip(conversationID) {
		slog.Debug("AdminNotifier lead notification skipped", "conversation", conversationID, "configured", n.adminID != "")
		return nil
	}
	summary := LeadSummary(conversationID, data, quote)
	if err := n.svc.SendMessage(ctx, n.adminID, summary); err != nil {
		return fmt.Errorf("failed to notify operator about lead: %w", err)
	}
	slog.Info("AdminNotifier lead notification sent", "conversation", conversationID)
	return nil
}

// MirrorExchange forwards one exchange to the operator chat when mirroring is
// enabled.
func (n *AdminNotifier) MirrorExchange(ctx context.Context, conversationID, userText, botReply string) error {
	if !n.mirror || n.skip(conversationID) {
		return nil
	}
	var lines []string
	if userText != "" {
		lines = append(lines, fmt.Sprintf("👤%s: %s", conversationID, userText))
	}
	if botReply != "" {
		lines = append(lines, fmt.Sprintf("🤖Bot: %s", botReply))
	}
	if len(lines) == 0 {
		return nil
	}
	return n.svc.SendMessage(ctx, n.adminID, strings.Join(lines, "\n"))
}

// LeadSummary renders the operator-facing summary: every collected field plus
// the quote.
func LeadSummary(conversationID string, data models.LeadData, quote models.Quote) string {
	price := "требуется ручной расчёт"
	if quote.PriceEUR != nil {
		price = fmt.Sprintf("%d %s (до %d г)", *quote.PriceEUR, quote.Currency, quote.WeightThresholdGrams)
	}
	lines := []string{
		"🟢 Новый лид (DocuBridge)",
		fmt.Sprintf("Chat ID: %s", conversationID),
		"",
		fmt.Sprintf("Тип документа: %s", data.Get(models.FieldDocType).Display()),
		fmt.Sprintf("Маршрут: %s/%s → %s/%s",
			data.Get(models.FieldFromCountry).Display(), data.Get(models.FieldFromCity).Display(),
			data.Get(models.FieldToCountry).Display(), data.Get(models.FieldToCity).Display()),
		fmt.Sprintf("Листов A4: %s, вес ≈ %s г",
			data.Get(models.FieldPagesA4).Display(), data.Get(models.FieldWeightGrams).Display()),
		fmt.Sprintf("Срочность: %s", data.Get(models.FieldUrgency).Display()),
		fmt.Sprintf("Цена: %s", price),
		fmt.Sprintf("Срок: %s", quote.ETA),
		"",
		fmt.Sprintf("Имя: %s", data.Get(models.FieldName).Display()),
		fmt.Sprintf("Телефон: %s", data.Get(models.FieldPhone).Display()),
		fmt.Sprintf("Email: %s", data.Get(models.FieldEmail).Display()),
		fmt.Sprintf("Лучшее время связи: %s", data.Get(models.FieldBestTime).Display()),
	}
	if quote.Notes != "" {
		lines = append(lines, "", fmt.Sprintf("Примечание: %s", quote.Notes))
	}
	return strings.Join(lines, "\n")
}
