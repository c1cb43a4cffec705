package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/islogix/docubridge/internal/models"
)

func newSQLiteTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(WithDSN(filepath.Join(t.TempDir(), "docubridge.db")))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteRequiresDSN(t *testing.T) {
	if _, err := NewSQLiteStore(); err == nil {
		t.Fatal("expected error without DSN")
	}
}

func TestSQLiteConversationStateRoundTrip(t *testing.T) {
	s := newSQLiteTestStore(t)

	if st, err := s.GetConversationState("7"); err != nil || st != nil {
		t.Fatalf("unseen conversation: expected nil, nil; got %v, %v", st, err)
	}

	state := models.NewConversationState("7")
	state.Status = models.StatusCollecting
	state.Lead.SetString(models.FieldDocType, "свидетельство")
	state.Lead.SetInt(models.FieldPagesA4, 3)
	state.ExpectedIndex = 2
	if err := s.SaveConversationState(*state); err != nil {
		t.Fatalf("SaveConversationState: %v", err)
	}

	loaded, err := s.GetConversationState("7")
	if err != nil || loaded == nil {
		t.Fatalf("expected state, got %v (err=%v)", loaded, err)
	}
	if loaded.Status != models.StatusCollecting || loaded.ExpectedIndex != 2 {
		t.Errorf("state mismatch: %+v", loaded)
	}
	if loaded.Lead.GetString(models.FieldDocType) != "свидетельство" {
		t.Errorf("doc_type mismatch: %q", loaded.Lead.GetString(models.FieldDocType))
	}
	if loaded.Lead.GetInt(models.FieldPagesA4) != 3 {
		t.Errorf("integer fields must survive the round trip, got %d", loaded.Lead.GetInt(models.FieldPagesA4))
	}

	state.Status = models.StatusCompleted
	state.UpdatedAt = time.Now()
	if err := s.SaveConversationState(*state); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	loaded, _ = s.GetConversationState("7")
	if loaded.Status != models.StatusCompleted {
		t.Errorf("expected completed after upsert, got %s", loaded.Status)
	}
}

func TestSQLiteLeads(t *testing.T) {
	s := newSQLiteTestStore(t)

	first := models.NewLeadData()
	first.SetString(models.FieldName, "Анна")
	second := models.NewLeadData()
	second.SetString(models.FieldName, "Борис")

	if err := s.AddLead(models.Lead{ConversationID: "1", Data: first, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("AddLead: %v", err)
	}
	if err := s.AddLead(models.Lead{ConversationID: "2", Data: second, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("AddLead: %v", err)
	}

	leads, err := s.ListLeads()
	if err != nil {
		t.Fatalf("ListLeads: %v", err)
	}
	if len(leads) != 2 {
		t.Fatalf("expected 2 leads, got %d", len(leads))
	}
	if leads[0].Data.GetString(models.FieldName) != "Борис" {
		t.Errorf("expected newest first, got %q", leads[0].Data.GetString(models.FieldName))
	}
}

func TestSQLiteChatHistory(t *testing.T) {
	s := newSQLiteTestStore(t)
	msg := models.ChatMessage{ConversationID: "1", UserMessage: "привет", BotReply: "здравствуйте", Time: time.Now()}
	if err := s.AddMessage(msg); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}
	// Empty sides are stored as NULL rather than empty strings.
	if err := s.AddMessage(models.ChatMessage{ConversationID: "1", BotReply: "только ответ", Time: time.Now()}); err != nil {
		t.Fatalf("AddMessage with empty user side: %v", err)
	}
}
