// Package store provides storage backends for DocuBridge.
//
// This file implements the PostgreSQL-backed store used in production
// deployments (DATABASE_URL).
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	_ "embed"

	"github.com/islogix/docubridge/internal/models"
	_ "github.com/lib/pq"
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists conversations, leads and chat history in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store from a connection URL and
// runs migrations.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("PostgresStore failed to open connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("PostgresStore ping failed", "error", err)
		return nil, err
	}
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("PostgresStore migrations failed", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("PostgresStore opened")
	return &PostgresStore{db: db}, nil
}

// GetConversationState loads one conversation's state, or nil when unseen.
func (s *PostgresStore) GetConversationState(conversationID string) (*models.ConversationState, error) {
	row := s.db.QueryRow(
		`SELECT status, lead, expected_index, created_at, updated_at FROM user_state WHERE conversation_id = $1`,
		conversationID,
	)
	st := models.ConversationState{ConversationID: conversationID}
	var leadJSON []byte
	err := row.Scan(&st.Status, &leadJSON, &st.ExpectedIndex, &st.CreatedAt, &st.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetConversationState failed", "error", err, "conversation", conversationID)
		return nil, fmt.Errorf("failed to load conversation state for %s: %w", conversationID, err)
	}
	if err := json.Unmarshal(leadJSON, &st.Lead); err != nil {
		slog.Error("PostgresStore GetConversationState lead decode failed", "error", err, "conversation", conversationID)
		return nil, fmt.Errorf("failed to decode lead data for %s: %w", conversationID, err)
	}
	return &st, nil
}

// SaveConversationState upserts one conversation's state.
func (s *PostgresStore) SaveConversationState(state models.ConversationState) error {
	leadJSON, err := json.Marshal(state.Lead)
	if err != nil {
		return fmt.Errorf("failed to encode lead data: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO user_state (conversation_id, status, lead, expected_index, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (conversation_id) DO UPDATE SET
		   status = EXCLUDED.status,
		   lead = EXCLUDED.lead,
		   expected_index = EXCLUDED.expected_index,
		   updated_at = EXCLUDED.updated_at`,
		state.ConversationID, state.Status, leadJSON, state.ExpectedIndex, state.CreatedAt, state.UpdatedAt,
	)
	if err != nil {
		slog.Error("PostgresStore SaveConversationState failed", "error", err, "conversation", state.ConversationID)
		return fmt.Errorf("failed to save conversation state for %s: %w", state.ConversationID, err)
	}
	slog.Debug("PostgresStore SaveConversationState succeeded", "conversation", state.ConversationID, "status", state.Status)
	return nil
}

// AddLead appends one immutable lead snapshot.
func (s *PostgresStore) AddLead(lead models.Lead) error {
	payload, err := json.Marshal(lead.Data)
	if err != nil {
		return fmt.Errorf("failed to encode lead payload: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO leads (conversation_id, payload, created_at) VALUES ($1, $2, $3)`,
		lead.ConversationID, payload, lead.CreatedAt,
	)
	if err != nil {
		slog.Error("PostgresStore AddLead failed", "error", err, "conversation", lead.ConversationID)
		return fmt.Errorf("failed to insert lead for %s: %w", lead.ConversationID, err)
	}
	slog.Debug("PostgresStore AddLead succeeded", "conversation", lead.ConversationID)
	return nil
}

// ListLeads returns all leads, newest first.
func (s *PostgresStore) ListLeads() ([]models.Lead, error) {
	rows, err := s.db.Query(`SELECT id, conversation_id, payload, created_at FROM leads ORDER BY id DESC`)
	if err != nil {
		slog.Error("PostgresStore ListLeads query failed", "error", err)
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		var l models.Lead
		var payload []byte
		if err := rows.Scan(&l.ID, &l.ConversationID, &payload, &l.CreatedAt); err != nil {
			slog.Error("PostgresStore ListLeads scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan lead row: %w", err)
		}
		if err := json.Unmarshal(payload, &l.Data); err != nil {
			slog.Error("PostgresStore ListLeads payload decode failed", "error", err, "lead_id", l.ID)
			return nil, fmt.Errorf("failed to decode lead payload %d: %w", l.ID, err)
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lead rows: %w", err)
	}
	return leads, nil
}

// AddMessage appends one chat history exchange.
func (s *PostgresStore) AddMessage(msg models.ChatMessage) error {
	_, err := s.db.Exec(
		`INSERT INTO chat_history (conversation_id, user_message, bot_reply, time) VALUES ($1, $2, $3, $4)`,
		msg.ConversationID, nilIfEmpty(msg.UserMessage), nilIfEmpty(msg.BotReply), msg.Time,
	)
	if err != nil {
		slog.Error("PostgresStore AddMessage failed", "error", err, "conversation", msg.ConversationID)
		return fmt.Errorf("failed to insert chat message for %s: %w", msg.ConversationID, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *PostgresStore) Close() error { return s.db.Close() }
