package messaging

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/islogix/docubridge/internal/models"
)

// mockSender records SMS sends for assertions.
type mockSender struct {
	to   []string
	body []string
	err  error
}

func (m *mockSender) SendMessage(ctx context.Context, to string, body string) error {
	if m.err != nil {
		return m.err
	}
	m.to = append(m.to, to)
	m.body = append(m.body, body)
	return nil
}

func TestTwilioCanonicalizeRecipient(t *testing.T) {
	svc := NewTwilioService(&mockSender{})

	got, err := svc.ValidateAndCanonicalizeRecipient("+7 (912) 345-67-89")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "+79123456789" {
		t.Errorf("expected +79123456789, got %q", got)
	}

	for _, bad := range []string{"", "12345", "abc"} {
		if _, err := svc.ValidateAndCanonicalizeRecipient(bad); err == nil {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
}

func TestTwilioSendMessage(t *testing.T) {
	sender := &mockSender{}
	svc := NewTwilioService(sender)

	if err := svc.SendMessage(context.Background(), "+380 50 123 45 67", "привет"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if len(sender.to) != 1 || sender.to[0] != "+380501234567" {
		t.Errorf("expected canonical recipient, got %v", sender.to)
	}
}

func TestTwilioReceipts(t *testing.T) {
	svc := NewTwilioService(&mockSender{})
	if err := svc.SendMessage(context.Background(), "+380501234567", "привет"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	select {
	case r := <-svc.Receipts():
		if r.To != "+380501234567" || r.Status != models.MessageStatusSent {
			t.Errorf("unexpected receipt: %+v", r)
		}
	default:
		t.Fatal("expected a sent receipt")
	}

	svc = NewTwilioService(&mockSender{err: errors.New("carrier rejected")})
	if err := svc.SendMessage(context.Background(), "+380501234567", "привет"); err == nil {
		t.Fatal("expected send error")
	}
	select {
	case r := <-svc.Receipts():
		if r.Status != models.MessageStatusFailed {
			t.Errorf("expected failed receipt, got %+v", r)
		}
	default:
		t.Fatal("expected a failed receipt")
	}
}

func TestTwilioChoicesDegradeToNumberedList(t *testing.T) {
	sender := &mockSender{}
	svc := NewTwilioService(sender)

	if err := svc.SendMessageWithChoices(context.Background(), "+380501234567", "выберите страну", []string{"Украина", "Россия"}); err != nil {
		t.Fatalf("SendMessageWithChoices: %v", err)
	}
	body := sender.body[0]
	if !strings.Contains(body, "1) Украина") || !strings.Contains(body, "2) Россия") {
		t.Errorf("expected numbered choices in body, got %q", body)
	}
}

func TestTwilioSendAfterStop(t *testing.T) {
	svc := NewTwilioService(&mockSender{})
	if err := svc.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := svc.SendMessage(context.Background(), "+380501234567", "x"); !errors.Is(err, ErrServiceStopped) {
		t.Errorf("expected ErrServiceStopped, got %v", err)
	}
	if svc.EnqueueInbound("+380501234567", "x") {
		t.Error("stopped service must drop inbound messages")
	}
}

func TestTwilioEnqueueInbound(t *testing.T) {
	svc := NewTwilioService(&mockSender{})

	if !svc.EnqueueInbound("+380 50 123 45 67", "привет") {
		t.Fatal("expected inbound to be accepted")
	}
	select {
	case resp := <-svc.Responses():
		if resp.From != "+380501234567" || resp.Body != "привет" {
			t.Errorf("unexpected response: %+v", resp)
		}
	default:
		t.Fatal("expected a buffered response")
	}

	if svc.EnqueueInbound("", "x") {
		t.Error("empty sender must be dropped")
	}
	if svc.EnqueueInbound("+380501234567", "") {
		t.Error("empty body must be dropped")
	}
	if svc.EnqueueInbound("junk", "x") {
		t.Error("invalid sender must be dropped")
	}
}
