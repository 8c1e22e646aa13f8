package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/medpet/chatbot/internal/models"
)

// captureServer returns a test server that records the last request body and
// path, responding with 200 unless status is overridden.
func captureServer(t *testing.T, status int, lastBody *map[string]interface{}, lastPath *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		*lastBody = body
		*lastPath = r.URL.Path
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("unexpected authorization header %q", r.Header.Get("Authorization"))
		}
		w.WriteHeader(status)
	}))
}

func newTestSender(t *testing.T, baseURL string) *GraphSender {
	t.Helper()
	sender, err := NewGraphSender(
		WithBaseURL(baseURL),
		WithToken("test-token"),
		WithBusinessPhone("12345"),
		WithAPIVersion("v21.0"),
	)
	if err != nil {
		t.Fatalf("expected no error creating sender, got %v", err)
	}
	return sender
}

func TestGraphSender_SendText(t *testing.T) {
	var body map[string]interface{}
	var path string
	srv := captureServer(t, http.StatusOK, &body, &path)
	defer srv.Close()

	sender := newTestSender(t, srv.URL)
	if err := sender.SendText(context.Background(), "5215580129436", "hola", "wamid.1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if path != "/v21.0/12345/messages" {
		t.Errorf("unexpected path %q", path)
	}
	// 521 prefix must be rewritten to 52
	if body["to"] != "525580129436" {
		t.Errorf("expected canonicalized recipient, got %v", body["to"])
	}
	text := body["text"].(map[string]interface{})
	if text["body"] != "hola" {
		t.Errorf("unexpected text body %v", text["body"])
	}
	reply := body["context"].(map[string]interface{})
	if reply["message_id"] != "wamid.1" {
		t.Errorf("unexpected reply context %v", reply["message_id"])
	}
}

func TestGraphSender_SendButtons(t *testing.T) {
	var body map[string]interface{}
	var path string
	srv := captureServer(t, http.StatusOK, &body, &path)
	defer srv.Close()

	sender := newTestSender(t, srv.URL)
	buttons := []models.Button{{ID: "option_1", Title: "Agendar"}, {ID: "option_2", Title: "Consultar"}}
	if err := sender.SendButtons(context.Background(), "525511112222", "Elige una opción:", buttons); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if body["type"] != "interactive" {
		t.Errorf("expected interactive type, got %v", body["type"])
	}
	interactive := body["interactive"].(map[string]interface{})
	action := interactive["action"].(map[string]interface{})
	got := action["buttons"].([]interface{})
	if len(got) != 2 {
		t.Fatalf("expected 2 buttons, got %d", len(got))
	}
	first := got[0].(map[string]interface{})["reply"].(map[string]interface{})
	if first["id"] != "option_1" {
		t.Errorf("unexpected first button id %v", first["id"])
	}
}

func TestGraphSender_SendButtons_Limits(t *testing.T) {
	sender := newTestSender(t, "http://unused")

	if err := sender.SendButtons(context.Background(), "52555", "body", nil); err != models.ErrNoButtons {
		t.Errorf("expected ErrNoButtons, got %v", err)
	}
	four := []models.Button{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	if err := sender.SendButtons(context.Background(), "52555", "body", four); err != models.ErrTooManyButtons {
		t.Errorf("expected ErrTooManyButtons, got %v", err)
	}
}

func TestGraphSender_SendMedia_AudioHasNoCaption(t *testing.T) {
	var body map[string]interface{}
	var path string
	srv := captureServer(t, http.StatusOK, &body, &path)
	defer srv.Close()

	sender := newTestSender(t, srv.URL)
	asset := models.MediaAsset{Kind: models.MediaKindAudio, URL: "https://example.com/a.aac", Caption: "Bienvenida"}
	if err := sender.SendMedia(context.Background(), "52555", asset); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	audio := body["audio"].(map[string]interface{})
	if audio["link"] != "https://example.com/a.aac" {
		t.Errorf("unexpected audio link %v", audio["link"])
	}
	if _, hasCaption := audio["caption"]; hasCaption {
		t.Error("audio payload must not carry a caption")
	}
}

func TestGraphSender_SendMedia_UnsupportedKind(t *testing.T) {
	sender := newTestSender(t, "http://unused")
	asset := models.MediaAsset{Kind: "sticker", URL: "https://example.com/s.webp"}
	if err := sender.SendMedia(context.Background(), "52555", asset); err != models.ErrUnsupportedMedia {
		t.Errorf("expected ErrUnsupportedMedia, got %v", err)
	}
}

func TestGraphSender_SendTemplate(t *testing.T) {
	var body map[string]interface{}
	var path string
	srv := captureServer(t, http.StatusOK, &body, &path)
	defer srv.Close()

	sender := newTestSender(t, srv.URL)
	if err := sender.SendTemplate(context.Background(), "5215580129436", "hello_world", "en_US"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if body["type"] != "template" {
		t.Errorf("unexpected type %v", body["type"])
	}
	tmpl, ok := body["template"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected template object, got %v", body["template"])
	}
	if tmpl["name"] != "hello_world" {
		t.Errorf("unexpected template name %v", tmpl["name"])
	}
	lang, ok := tmpl["language"].(map[string]interface{})
	if !ok || lang["code"] != "en_US" {
		t.Errorf("unexpected template language %v", tmpl["language"])
	}
}

func TestGraphSender_MarkRead(t *testing.T) {
	var body map[string]interface{}
	var path string
	srv := captureServer(t, http.StatusOK, &body, &path)
	defer srv.Close()

	sender := newTestSender(t, srv.URL)
	if err := sender.MarkRead(context.Background(), "wamid.42"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if body["status"] != "read" || body["message_id"] != "wamid.42" {
		t.Errorf("unexpected read payload %v", body)
	}

	if err := sender.MarkRead(context.Background(), ""); err != models.ErrEmptyMessageID {
		t.Errorf("expected ErrEmptyMessageID, got %v", err)
	}
}

func TestGraphSender_NonSuccessStatus(t *testing.T) {
	var body map[string]interface{}
	var path string
	srv := captureServer(t, http.StatusUnauthorized, &body, &path)
	defer srv.Close()

	sender := newTestSender(t, srv.URL)
	if err := sender.SendText(context.Background(), "52555", "hola", ""); err == nil {
		t.Error("expected error on non-success status, got nil")
	}
}

func TestCanonicalizeRecipient(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"5215580129436", "525580129436"},
		{"525580129436", "525580129436"},
		{"14155552671", "14155552671"},
	}
	for _, tc := range cases {
		if got := CanonicalizeRecipient(tc.in); got != tc.want {
			t.Errorf("CanonicalizeRecipient(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNewGraphSender_MissingConfig(t *testing.T) {
	t.Setenv("API_TOKEN", "")
	t.Setenv("BUSINESS_PHONE", "")
	if _, err := NewGraphSender(); err == nil {
		t.Error("expected error without token and phone, got nil")
	}
	if _, err := NewGraphSender(WithToken("tok")); err == nil {
		t.Error("expected error without business phone, got nil")
	}
}
