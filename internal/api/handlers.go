// Package api provides HTTP handlers for DocuBridge endpoints.
package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/islogix/docubridge/internal/models"
	"github.com/islogix/docubridge/internal/telegram"
)

// MaxWebhookBodyBytes caps inbound webhook payloads.
const MaxWebhookBodyBytes = 1 << 20

// rootHandler answers GET / with service identification.
func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Not found"))
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{"service": "docubridge"}))
}

// healthHandler provides a health check endpoint for monitoring.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	healthData := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if _, err := s.st.ListLeads(); err != nil {
		slog.Warn("Server.healthHandler: store check failed", "error", err)
		healthData["status"] = "degraded"
		healthData["error"] = "store unavailable"
	}

	statusCode := http.StatusOK
	if healthData["status"] == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSONResponse(w, statusCode, healthData)
}

// webhookHandler receives Telegram updates on POST /webhook/{secret}. The
// update is acknowledged immediately and processed by the response loop; a
// slow turn must never make Telegram retry the delivery.
func (s *Server) webhookHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.webhookHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	secret := strings.TrimPrefix(r.URL.Path, "/webhook/")
	if s.webhookSecret == "" || secret != s.webhookSecret {
		slog.Warn("Server.webhookHandler: secret mismatch", "path", r.URL.Path)
		writeJSONResponse(w, http.StatusNotFound, models.Error("Not found"))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxWebhookBodyBytes))
	if err != nil {
		slog.Warn("Server.webhookHandler: failed to read body", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid request body"))
		return
	}
	update, err := telegram.ParseUpdate(body)
	if err != nil {
		slog.Warn("Server.webhookHandler: failed to parse update", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid update format"))
		return
	}

	if !s.tgService.EnqueueUpdate(update) {
		slog.Debug("Server.webhookHandler: update dropped", "update_id", update.UpdateID)
	}
	// Telegram only needs a 200; errors here would trigger redelivery.
	writeJSONResponse(w, http.StatusOK, models.Success(nil))
}

// twilioInboundHandler receives Twilio SMS webhooks (form-encoded From/Body)
// on POST /twilio/inbound.
func (s *Server) twilioInboundHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.twilioInboundHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.smsService == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("SMS transport not enabled"))
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.Warn("Server.twilioInboundHandler: failed to parse form", "error", err)
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	from := r.FormValue("From")
	body := r.FormValue("Body")
	if from == "" || body == "" {
		slog.Warn("Server.twilioInboundHandler: missing fields", "from", from)
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	if !s.smsService.EnqueueInbound(from, body) {
		slog.Debug("Server.twilioInboundHandler: message dropped", "from", from)
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// leadsHandler returns all persisted leads, newest first (GET /leads).
func (s *Server) leadsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		slog.Warn("Server.leadsHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	leads, err := s.st.ListLeads()
	if err != nil {
		slog.Error("Server.leadsHandler: failed to fetch leads", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch leads"))
		return
	}
	slog.Debug("Server.leadsHandler: leads fetched", "count", len(leads))
	writeJSONResponse(w, http.StatusOK, models.Success(leads))
}
