package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/islogix/docubridge/internal/models"
	"github.com/islogix/docubridge/internal/telegram"
)

// TelegramService implements Service over the Telegram Bot API. Inbound
// updates are pushed into the service by the webhook handler via
// EnqueueUpdate; outbound messages go through the telegram.Client.
type TelegramService struct {
	client     *telegram.Client
	webhookURL string
	responses  chan models.Response
	receipts   chan models.Receipt
	done       chan struct{}
	mu         sync.RWMutex
	stopped    bool
}

// NewTelegramService creates a TelegramService. webhookURL may be empty, in
// which case webhook registration is skipped (useful for local testing where
// updates are injected directly).
func NewTelegramService(client *telegram.Client, webhookURL string) *TelegramService {
	return &TelegramService{
		client:     client,
		webhookURL: webhookURL,
		responses:  make(chan models.Response, DefaultChannelBufferSize),
		receipts:   make(chan models.Receipt, DefaultChannelBufferSize),
		done:       make(chan struct{}),
	}
}

// ValidateAndCanonicalizeRecipient accepts numeric Telegram chat ids. The
// round trip through ChatIDString rejects forms ParseInt tolerates but the
// Bot API does not, such as a leading plus or zero padding.
func (s *TelegramService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	if recipient == "" {
		return "", fmt.Errorf("recipient cannot be empty")
	}
	id, err := strconv.ParseInt(recipient, 10, 64)
	if err != nil || telegram.ChatIDString(id) != recipient {
		return "", fmt.Errorf("invalid telegram chat id %q", recipient)
	}
	return recipient, nil
}

// Start registers the webhook when a URL is configured.
func (s *TelegramService) Start(ctx context.Context) error {
	if s.webhookURL == "" {
		slog.Warn("TelegramService starting without webhook registration, no webhook URL configured")
		return nil
	}
	if err := s.client.SetWebhook(ctx, s.webhookURL); err != nil {
		return fmt.Errorf("failed to register telegram webhook: %w", err)
	}
	slog.Info("TelegramService webhook registered", "url", s.webhookURL)
	return nil
}

// Stop closes the service channels.
func (s *TelegramService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}
	s.stopped = true
	close(s.done)

	go func() {
		time.Sleep(50 * time.Millisecond)
		close(s.responses)
		close(s.receipts)
	}()
	return nil
}

// SendMessage sends plain text to a chat and emits a receipt.
func (s *TelegramService) SendMessage(ctx context.Context, to string, body string) error {
	return s.SendMessageWithChoices(ctx, to, body, nil)
}

// SendMessageWithChoices sends text with an optional quick-reply keyboard.
func (s *TelegramService) SendMessageWithChoices(ctx context.Context, to string, body string, choices []string) error {
	s.mu.RLock()
	if s.stopped {
		s.mu.RUnlock()
		return ErrServiceStopped
	}
	s.mu.RUnlock()

	canonicalTo, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		slog.Error("TelegramService SendMessage validation error", "error", err, "to", to)
		return err
	}
	if err := s.client.SendMessage(ctx, canonicalTo, body, choices); err != nil {
		s.safeEmitReceipt(models.Receipt{To: canonicalTo, Status: models.MessageStatusFailed, Time: time.Now().Unix()})
		return err
	}
	s.safeEmitReceipt(models.Receipt{To: canonicalTo, Status: models.MessageStatusSent, Time: time.Now().Unix()})
	return nil
}

// SendTypingIndicator shows the "typing..." chat action; failures are logged
// and swallowed.
func (s *TelegramService) SendTypingIndicator(ctx context.Context, to string) error {
	canonicalTo, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		return err
	}
	if err := s.client.SendChatAction(ctx, canonicalTo, "typing"); err != nil {
		slog.Debug("TelegramService typing indicator failed", "error", err, "to", canonicalTo)
	}
	return nil
}

// Responses returns the inbound message channel.
func (s *TelegramService) Responses() <-chan models.Response {
	return s.responses
}

// Receipts returns the delivery receipt channel.
func (s *TelegramService) Receipts() <-chan models.Receipt {
	return s.receipts
}

// EnqueueUpdate pushes one webhook update into the response channel. Non-text
// updates are ignored. Returns false when the service is stopped or the
// buffer is full; the update is dropped in both cases.
func (s *TelegramService) EnqueueUpdate(update *telegram.Update) bool {
	if update == nil || update.Message == nil || update.Message.Text == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		return false
	}
	resp := models.Response{
		From: telegram.ChatIDString(update.Message.Chat.ID),
		Body: update.Message.Text,
		Time: update.Message.Date,
	}
	select {
	case s.responses <- resp:
		return true
	default:
		slog.Warn("TelegramService response buffer full, dropping update", "from", resp.From)
		return false
	}
}

// safeEmitReceipt emits a receipt without blocking when nobody consumes them.
func (s *TelegramService) safeEmitReceipt(r models.Receipt) {
	select {
	case s.receipts <- r:
	default:
	}
}
