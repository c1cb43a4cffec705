package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/islogix/docubridge/internal/models"
	"github.com/islogix/docubridge/internal/twiliosms"
)

// TwilioService implements Service over SMS via the Twilio API. It has no
// native keyboards, so choices degrade to a numbered list appended to the
// message text. Inbound SMS arrive through the Twilio inbound webhook and are
// pushed in with EnqueueInbound.
type TwilioService struct {
	client    twiliosms.Sender
	responses chan models.Response
	receipts  chan models.Receipt
	done      chan struct{}
	mu        sync.RWMutex
	stopped   bool
}

// NewTwilioService creates a TwilioService around a Twilio sender.
func NewTwilioService(client twiliosms.Sender) *TwilioService {
	return &TwilioService{
		client:    client,
		responses: make(chan models.Response, DefaultChannelBufferSize),
		receipts:  make(chan models.Receipt, DefaultChannelBufferSize),
		done:      make(chan struct{}),
	}
}

// ValidateAndCanonicalizeRecipient canonicalizes a phone number by stripping
// everything but digits, then re-attaching the leading plus.
func (s *TwilioService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	if recipient == "" {
		return "", fmt.Errorf("recipient cannot be empty")
	}
	digits := digitRE.ReplaceAllString(recipient, "")
	if len(digits) < 6 {
		return "", fmt.Errorf("invalid phone number %q: minimum 6 digits required", recipient)
	}
	return "+" + digits, nil
}

// Start is a no-op: inbound SMS are webhook-driven.
func (s *TwilioService) Start(ctx context.Context) error { return nil }

// Stop closes the service channels.
func (s *TwilioService) Stop() error {
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

// SendMessage sends one SMS and emits a receipt.
func (s *TwilioService) SendMessage(ctx context.Context, to string, body string) error {
	s.mu.RLock()
	if s.stopped {
		s.mu.RUnlock()
		return ErrServiceStopped
	}
	s.mu.RUnlock()

	canonicalTo, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		slog.Error("TwilioService SendMessage validation error", "error", err, "to", to)
		return err
	}
	if err := s.client.SendMessage(ctx, canonicalTo, body); err != nil {
		s.safeEmitReceipt(models.Receipt{To: canonicalTo, Status: models.MessageStatusFailed, Time: time.Now().Unix()})
		return err
	}
	s.safeEmitReceipt(models.Receipt{To: canonicalTo, Status: models.MessageStatusSent, Time: time.Now().Unix()})
	return nil
}

// SendMessageWithChoices appends the choices as a numbered list since SMS has
// no keyboards.
func (s *TwilioService) SendMessageWithChoices(ctx context.Context, to string, body string, choices []string) error {
	if len(choices) > 0 {
		var b strings.Builder
		b.WriteString(body)
		for i, choice := range choices {
			fmt.Fprintf(&b, "\n%d) %s", i+1, choice)
		}
		body = b.String()
	}
	return s.SendMessage(ctx, to, body)
}

// SendTypingIndicator is a no-op for SMS.
func (s *TwilioService) SendTypingIndicator(ctx context.Context, to string) error { return nil }

// Responses returns the inbound message channel.
func (s *TwilioService) Responses() <-chan models.Response {
	return s.responses
}

// Receipts returns the delivery receipt channel.
func (s *TwilioService) Receipts() <-chan models.Receipt {
	return s.receipts
}

// EnqueueInbound pushes one inbound SMS into the response channel. Returns
// false when the service is stopped or the buffer is full.
func (s *TwilioService) EnqueueInbound(from, body string) bool {
	if from == "" || body == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		return false
	}
	canonicalFrom, err := s.ValidateAndCanonicalizeRecipient(from)
	if err != nil {
		slog.Warn("TwilioService dropping inbound with invalid sender", "error", err, "from", from)
		return false
	}
	select {
	case s.responses <- models.Response{From: canonicalFrom, Body: body, Time: time.Now().Unix()}:
		return true
	default:
		slog.Warn("TwilioService response buffer full, dropping inbound", "from", canonicalFrom)
		return false
	}
}

// safeEmitReceipt emits a receipt without blocking when nobody consumes them.
func (s *TwilioService) safeEmitReceipt(r models.Receipt) {
	select {
	case s.receipts <- r:
	default:
	}
}
