// Package store provides storage backends for DocuBridge.
//
// A Store keeps per-conversation wizard state, finalized leads and the chat
// history. All persistence in the conversational path is best-effort: callers
// log failures and continue the turn.
package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/islogix/docubridge/internal/models"
)

// Store is the persistence contract consumed by the flow controller and the
// API layer.
type Store interface {
	// GetConversationState returns the state for a conversation, or nil when
	// the conversation has never been seen.
	GetConversationState(conversationID string) (*models.ConversationState, error)
	// SaveConversationState upserts the state record.
	SaveConversationState(state models.ConversationState) error
	// AddLead appends one immutable lead snapshot.
	AddLead(lead models.Lead) error
	// ListLeads returns all persisted leads, newest first.
	ListLeads() ([]models.Lead, error)
	// AddMessage appends one chat history exchange.
	AddMessage(msg models.ChatMessage) error
	// Close releases backend resources.
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithDSN sets the database connection string (a file path for SQLite, a
// connection URL for Postgres).
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType classifies a DSN as "postgres" (connection URL or key-value
// form) or "sqlite" (everything else, treated as a file path).
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// InMemoryStore is a non-durable Store used in tests and when no DSN is
// configured.
type InMemoryStore struct {
	mu       sync.RWMutex
	states   map[string]models.ConversationState
	leads    []models.Lead
	messages []models.ChatMessage
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{states: make(map[string]models.ConversationState)}
}

// GetConversationState returns a copy of the stored state, or nil.
func (s *InMemoryStore) GetConversationState(conversationID string) (*models.ConversationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[conversationID]
	if !ok {
		return nil, nil
	}
	st.Lead = st.Lead.Clone()
	return &st, nil
}

// SaveConversationState upserts the state record.
func (s *InMemoryStore) SaveConversationState(state models.ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state.Lead = state.Lead.Clone()
	s.states[state.ConversationID] = state
	return nil
}

// AddLead appends one lead snapshot.
func (s *InMemoryStore) AddLead(lead models.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lead.ID = int64(len(s.leads) + 1)
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now()
	}
	lead.Data = lead.Data.Clone()
	s.leads = append(s.leads, lead)
	return nil
}

// ListLeads returns all leads, newest first.
func (s *InMemoryStore) ListLeads() ([]models.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Lead, len(s.leads))
	copy(out, s.leads)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// AddMessage appends one chat history exchange.
func (s *InMemoryStore) AddMessage(msg models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.Time.IsZero() {
		msg.Time = time.Now()
	}
	s.messages = append(s.messages, msg)
	return nil
}

// Messages returns the stored chat history; test helper.
func (s *InMemoryStore) Messages() []models.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }
