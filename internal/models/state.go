// Package models defines state management structures for DocuBridge conversations.
package models

import "time"

// ConversationStatus is the wizard state machine position of one conversation.
type ConversationStatus string

const (
	// StatusIdle means no collection is in progress; free-form messages go to
	// the generic chat reply path.
	StatusIdle ConversationStatus = "idle"
	// StatusCollecting means the wizard is asking questions field by field.
	StatusCollecting ConversationStatus = "collecting"
	// StatusCompleted means a lead has been finalized; a later message with
	// recognizable details starts a fresh collection.
	StatusCompleted ConversationStatus = "completed"
)

// ConversationState is the per-conversation record the wizard mutates on every
// turn. ExpectedIndex is the schema position of the field currently being
// asked; it is meaningful only while Status is collecting.
type ConversationState struct {
	ConversationID string             `json:"conversation_id"`
	Status         ConversationStatus `json:"status"`
	Lead           LeadData           `json:"lead"`
	ExpectedIndex  int                `json:"expected_index"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// NewConversationState returns the state created on first interaction.
func NewConversationState(conversationID string) *ConversationState {
	now := time.Now()
	return &ConversationState{
		ConversationID: conversationID,
		Status:         StatusIdle,
		Lead:           NewLeadData(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Reset clears the conversation back to idle with empty data. The record
// itself is never deleted.
func (s *ConversationState) Reset() {
	s.Status = StatusIdle
	s.Lead = NewLeadData()
	s.ExpectedIndex = 0
	s.UpdatedAt = time.Now()
}

// Lead is the immutable snapshot persisted exactly once per successful
// finalization.
type Lead struct {
	ID             int64     `json:"id,omitempty"`
	ConversationID string    `json:"conversation_id"`
	Data           LeadData  `json:"data"`
	CreatedAt      time.Time `json:"created_at"`
}

// ChatMessage is one stored exchange of the conversation history: the user
// message, the bot reply, or both.
type ChatMessage struct {
	ConversationID string    `json:"conversation_id"`
	UserMessage    string    `json:"user_message,omitempty"`
	BotReply       string    `json:"bot_reply,omitempty"`
	Time           time.Time `json:"time"`
}
