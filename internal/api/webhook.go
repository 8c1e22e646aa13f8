// Package api implements the webhook endpoints called by the messaging platform.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/medpet/chatbot/internal/models"
)

// webhookHandler routes the verification handshake (GET) and event intake
// (POST) for the /webhook endpoint.
func (s *Server) webhookHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.verifyWebhook(w, r)
	case http.MethodPost:
		s.receiveWebhook(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		slog.Warn("Server.webhookHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// verifyWebhook implements the platform's subscription handshake: echo the
// challenge when the mode and token match, 403 otherwise.
func (s *Server) verifyWebhook(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	mode := query.Get("hub.mode")
	token := query.Get("hub.verify_token")
	challenge := query.Get("hub.challenge")

	if mode == "subscribe" && token == s.verifyToken && s.verifyToken != "" {
		slog.Info("Server.verifyWebhook: webhook verified")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(challenge)); err != nil {
			slog.Error("Server.verifyWebhook: failed to write challenge", "error", err)
		}
		return
	}

	slog.Warn("Server.verifyWebhook: verification failed", "mode", mode)
	w.WriteHeader(http.StatusForbidden)
}

// receiveWebhook parses the event envelope and hands the first message to the
// conversation handler. Events without messages or contacts (status updates,
// delivery receipts) are acknowledged and ignored.
func (s *Server) receiveWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}

	var payload models.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		slog.Warn("Server.receiveWebhook: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	msg, contact, ok := payload.FirstMessage()
	if !ok {
		slog.Debug("Server.receiveWebhook: non-message event, ignoring")
		w.WriteHeader(http.StatusOK)
		return
	}

	slog.Debug("Server.receiveWebhook: dispatching message", "from", msg.From, "type", msg.Type)
	s.handler.HandleIncoming(r.Context(), msg, contact)
	w.WriteHeader(http.StatusOK)
}
