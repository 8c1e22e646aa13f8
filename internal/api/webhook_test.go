package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/medpet/chatbot/internal/bot"
	"github.com/medpet/chatbot/internal/messaging"
	"github.com/medpet/chatbot/internal/session"
)

func newTestServer(t *testing.T) (*Server, *messaging.MockSender) {
	t.Helper()
	sender := messaging.NewMockSender()
	handler := bot.NewHandler(session.NewInMemoryStore(), sender, nil, nil)
	server := NewServer(handler, WithVerifyToken("secret-token"), WithAddr(":0"))
	return server, sender
}

func TestVerifyWebhook_Success(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=secret-token&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	server.webhookHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "12345" {
		t.Errorf("expected challenge echoed, got %q", rec.Body.String())
	}
}

func TestVerifyWebhook_WrongToken(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	server.webhookHandler(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

const textEventPayload = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "id": "entry-1",
    "changes": [{
      "field": "messages",
      "value": {
        "messaging_product": "whatsapp",
        "contacts": [{"profile": {"name": "G. Leo"}, "wa_id": "5215580129436"}],
        "messages": [{
          "from": "5215580129436",
          "id": "wamid.1",
          "timestamp": "1700000000",
          "type": "text",
          "text": {"body": "Hola"}
        }]
      }
    }]
  }]
}`

func TestReceiveWebhook_DispatchesMessage(t *testing.T) {
	server, sender := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(textEventPayload))
	rec := httptest.NewRecorder()
	server.webhookHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	texts := sender.CallsOfKind("text")
	if len(texts) != 1 || !strings.Contains(texts[0].Body, "G. Leo") {
		t.Errorf("expected welcome text for greeting, got %+v", texts)
	}
	if reads := sender.CallsOfKind("read"); len(reads) != 1 {
		t.Errorf("expected mark-as-read, got %d", len(reads))
	}
}

func TestReceiveWebhook_IgnoresStatusEvents(t *testing.T) {
	server, sender := newTestServer(t)

	payload := `{"object":"whatsapp_business_account","entry":[{"id":"e","changes":[{"field":"messages","value":{"messaging_product":"whatsapp","statuses":[{"id":"wamid.1","status":"delivered"}]}}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	server.webhookHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for status event, got %d", rec.Code)
	}
	if calls := sender.Calls(); len(calls) != 0 {
		t.Errorf("expected zero outbound calls for status event, got %+v", calls)
	}
}

func TestReceiveWebhook_InvalidJSON(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	server.webhookHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid JSON, got %d", rec.Code)
	}
}

func TestWebhook_MethodNotAllowed(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodDelete, "/webhook", nil)
	rec := httptest.NewRecorder()
	server.webhookHandler(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.healthHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "healthy") {
		t.Errorf("expected healthy status, got %q", rec.Body.String())
	}
}
