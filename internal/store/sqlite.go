// Package store provides storage backends for DocuBridge.
//
// This file implements the SQLite-backed store, the default when no Postgres
// URL is configured.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/islogix/docubridge/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists conversations, leads and chat history in a SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store. The DSN is a file path; its
// directory is created when missing and migrations run on open.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(cfg.DSN)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("SQLiteStore failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		slog.Error("SQLiteStore failed to open connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLiteStore ping failed", "error", err)
		return nil, err
	}
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("SQLiteStore migrations failed", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLiteStore opened", "dsn", cfg.DSN)
	return &SQLiteStore{db: db}, nil
}

// GetConversationState loads one conversation's state, or nil when unseen.
func (s *SQLiteStore) GetConversationState(conversationID string) (*models.ConversationState, error) {
	row := s.db.QueryRow(
		`SELECT status, lead, expected_index, created_at, updated_at FROM user_state WHERE conversation_id = ?`,
		conversationID,
	)
	st := models.ConversationState{ConversationID: conversationID}
	var leadJSON string
	err := row.Scan(&st.Status, &leadJSON, &st.ExpectedIndex, &st.CreatedAt, &st.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetConversationState failed", "error", err, "conversation", conversationID)
		return nil, fmt.Errorf("failed to load conversation state for %s: %w", conversationID, err)
	}
	if err := json.Unmarshal([]byte(leadJSON), &st.Lead); err != nil {
		slog.Error("SQLiteStore GetConversationState lead decode failed", "error", err, "conversation", conversationID)
		return nil, fmt.Errorf("failed to decode lead data for %s: %w", conversationID, err)
	}
	return &st, nil
}

// SaveConversationState upserts one conversation's state.
func (s *SQLiteStore) SaveConversationState(state models.ConversationState) error {
	leadJSON, err := json.Marshal(state.Lead)
	if err != nil {
		return fmt.Errorf("failed to encode lead data: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO user_state (conversation_id, status, lead, expected_index, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(conversation_id) DO UPDATE SET
		   status = excluded.status,
		   lead = excluded.lead,
		   expected_index = excluded.expected_index,
		   updated_at = excluded.updated_at`,
		state.ConversationID, state.Status, string(leadJSON), state.ExpectedIndex, state.CreatedAt, state.UpdatedAt,
	)
	if err != nil {
		slog.Error("SQLiteStore SaveConversationState failed", "error", err, "conversation", state.ConversationID)
		return fmt.Errorf("failed to save conversation state for %s: %w", state.ConversationID, err)
	}
	slog.Debug("SQLiteStore SaveConversationState succeeded", "conversation", state.ConversationID, "status", state.Status)
	return nil
}

// AddLead appends one immutable lead snapshot.
func (s *SQLiteStore) AddLead(lead models.Lead) error {
	payload, err := json.Marshal(lead.Data)
	if err != nil {
		return fmt.Errorf("failed to encode lead payload: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO leads (conversation_id, payload, created_at) VALUES (?, ?, ?)`,
		lead.ConversationID, string(payload), lead.CreatedAt,
	)
	if err != nil {
		slog.Error("SQLiteStore AddLead failed", "error", err, "conversation", lead.ConversationID)
		return fmt.Errorf("failed to insert lead for %s: %w", lead.ConversationID, err)
	}
	slog.Debug("SQLiteStore AddLead succeeded", "conversation", lead.ConversationID)
	return nil
}

// ListLeads returns all leads, newest first.
func (s *SQLiteStore) ListLeads() ([]models.Lead, error) {
	rows, err := s.db.Query(`SELECT id, conversation_id, payload, created_at FROM leads ORDER BY id DESC`)
	if err != nil {
		slog.Error("SQLiteStore ListLeads query failed", "error", err)
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		var l models.Lead
		var payload string
		if err := rows.Scan(&l.ID, &l.ConversationID, &payload, &l.CreatedAt); err != nil {
			slog.Error("SQLiteStore ListLeads scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan lead row: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &l.Data); err != nil {
			slog.Error("SQLiteStore ListLeads payload decode failed", "error", err, "lead_id", l.ID)
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
func (s *SQLiteStore) AddMessage(msg models.ChatMessage) error {
	_, err := s.db.Exec(
		`INSERT INTO chat_history (conversation_id, user_message, bot_reply, time) VALUES (?, ?, ?, ?)`,
		msg.ConversationID, nilIfEmpty(msg.UserMessage), nilIfEmpty(msg.BotReply), msg.Time,
	)
	if err != nil {
		slog.Error("SQLiteStore AddMessage failed", "error", err, "conversation", msg.ConversationID)
		return fmt.Errorf("failed to insert chat message for %s: %w", msg.ConversationID, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
