// Package testutil provides common test utilities and helpers for DocuBridge tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/islogix/docubridge/internal/models"
)

// SentMessage records one outbound message captured by FakeMessenger.
type SentMessage struct {
	To      string
	Body    string
	Choices []string
}

// FakeMessenger is an in-memory messaging.Service implementation that records
// every outbound message.
type FakeMessenger struct {
	mu        sync.Mutex
	sent      []SentMessage
	SendErr   error
	responses chan models.Response
	receipts  chan models.Receipt
}

// NewFakeMessenger creates an empty recorder.
func NewFakeMessenger() *FakeMessenger {
	return &FakeMessenger{
		responses: make(chan models.Response, 16),
		receipts:  make(chan models.Receipt, 16),
	}
}

func (f *FakeMessenger) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return recipient, nil
}

func (f *FakeMessenger) SendMessage(ctx context.Context, to string, body string) error {
	return f.record(to, body, nil)
}

func (f *FakeMessenger) SendMessageWithChoices(ctx context.Context, to string, body string, choices []string) error {
	return f.record(to, body, choices)
}

func (f *FakeMessenger) SendTypingIndicator(ctx context.Context, to string) error { return nil }

func (f *FakeMessenger) Start(ctx context.Context) error { return nil }

func (f *FakeMessenger) Stop() error { return nil }

func (f *FakeMessenger) Responses() <-chan models.Response { return f.responses }

func (f *FakeMessenger) Receipts() <-chan models.Receipt { return f.receipts }

func (f *FakeMessenger) record(to, body string, choices []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendErr != nil {
		return f.SendErr
	}
	f.sent = append(f.sent, SentMessage{To: to, Body: body, Choices: choices})
	return nil
}

// Sent returns a copy of the recorded messages.
func (f *FakeMessenger) Sent() []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]SentMessage, len(f.sent))
	copy(out, f.sent)
	return out
}

// LastSent returns the most recent message, failing the test when none exists.
func (f *FakeMessenger) LastSent(t *testing.T) SentMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("no messages sent")
	}
	return f.sent[len(f.sent)-1]
}

// AssertHTTPStatus checks the HTTP status code and fails the test if it doesn't match.
func AssertHTTPStatus(t *testing.T, expected, actual int, context string) {
	t.Helper()
	if actual != expected {
		t.Errorf("%s: expected status %d, got %d", context, expected, actual)
	}
}

// AssertJSONResponse decodes a JSON response and validates the status field.
func AssertJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, expectedStatus string) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}

	if status, ok := response["status"].(string); ok {
		if status != expectedStatus {
			t.Errorf("expected status '%s', got '%s'", expectedStatus, status)
		}
	} else {
		t.Error("response missing or invalid 'status' field")
	}

	return response
}

// CreateHTTPRequest creates an HTTP request with an optional JSON body for testing.
func CreateHTTPRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()
	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("failed to create HTTP request: %v", err)
	}
	return req
}

// MustMarshalJSON marshals an object to JSON and fails the test on error.
func MustMarshalJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal JSON: %v", err)
	}
	return data
}
