// Package messaging provides the pluggable message delivery abstraction used
// by the flow controller and the API layer.
package messaging

import (
	"context"
	"errors"
	"regexp"

	"github.com/islogix/docubridge/internal/models"
)

// DefaultChannelBufferSize is the buffer size for receipt and response channels.
const DefaultChannelBufferSize = 64

// ErrServiceStopped is returned when sending through a stopped service.
var ErrServiceStopped = errors.New("messaging service has been stopped")

// digitRE strips non-digits during recipient canonicalization.
var digitRE = regexp.MustCompile(`\D`)

// Service defines a pluggable message delivery abstraction. Implementations
// deliver outbound text (optionally with quick-reply choices) and surface
// inbound participant responses on a channel.
type Service interface {
	// ValidateAndCanonicalizeRecipient validates and canonicalizes a recipient
	// identifier; each transport has its own rules.
	ValidateAndCanonicalizeRecipient(recipient string) (string, error)

	// SendMessage sends plain text to a recipient.
	SendMessage(ctx context.Context, to string, body string) error

	// SendMessageWithChoices sends text together with a quick-reply set
	// mirroring a field's allowed values. Transports without native keyboards
	// degrade to appending the choices to the text.
	SendMessageWithChoices(ctx context.Context, to string, body string, choices []string) error

	// SendTypingIndicator signals activity to the participant; best-effort,
	// transports without the concept no-op.
	SendTypingIndicator(ctx context.Context, to string) error

	// Start begins any background processing.
	Start(ctx context.Context) error

	// Stop stops background processing and closes channels.
	Stop() error

	// Responses returns the channel of incoming participant messages.
	Responses() <-chan models.Response

	// Receipts returns the channel of delivery receipts for outbound messages.
	Receipts() <-chan models.Receipt
}
