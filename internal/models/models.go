// Package models defines shared transport and API types for DocuBridge.
package models

// MessageStatus represents the delivery status of an outbound message.
type MessageStatus string

const (
	// MessageStatusSent indicates the transport accepted the message.
	MessageStatusSent MessageStatus = "sent"
	// MessageStatusFailed indicates the transport rejected the message.
	MessageStatusFailed MessageStatus = "failed"
)

// Receipt records a delivery event for an outbound message.
type Receipt struct {
	To     string        `json:"to"`
	Status MessageStatus `json:"status"`
	Time   int64         `json:"time"`
}

// Response represents an incoming message from a conversation participant.
type Response struct {
	From string `json:"from"`
	Body string `json:"body"`
	Time int64  `json:"time"`
}

// APIResponse is the uniform JSON envelope returned by HTTP handlers.
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Result  any    `json:"result,omitempty"`
}

// Success builds an ok response with an optional result payload.
func Success(result any) APIResponse {
	return APIResponse{Status: "ok", Result: result}
}

// Error builds an error response with a human-readable message.
func Error(message string) APIResponse {
	return APIResponse{Status: "error", Message: message}
}
