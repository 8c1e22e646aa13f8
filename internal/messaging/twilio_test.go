package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/medpet/chatbot/internal/models"
)

// fakeMessageCreator records the params of every created message.
type fakeMessageCreator struct {
	params []*twilioApi.CreateMessageParams
	err    error
}

func (f *fakeMessageCreator) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	return &twilioApi.ApiV2010Message{}, nil
}

func newTestTwilioSender(api *fakeMessageCreator) *TwilioSender {
	return &TwilioSender{api: api, fromWhats: "whatsapp:+15550001111"}
}

func strOf(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func TestTwilioSender_SendText(t *testing.T) {
	api := &fakeMessageCreator{}
	sender := newTestTwilioSender(api)

	if err := sender.SendText(context.Background(), "5215580129436", "hola", "wamid.ignored"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(api.params) != 1 {
		t.Fatalf("expected 1 message, got %d", len(api.params))
	}
	// 521 prefix must be rewritten to 52 before the whatsapp: scheme is added
	if got := strOf(api.params[0].To); got != "whatsapp:+525580129436" {
		t.Errorf("unexpected to %q", got)
	}
	if got := strOf(api.params[0].From); got != "whatsapp:+15550001111" {
		t.Errorf("unexpected from %q", got)
	}
	if got := strOf(api.params[0].Body); got != "hola" {
		t.Errorf("unexpected body %q", got)
	}
}

func TestTwilioSender_SendButtonsDegradesToNumberedList(t *testing.T) {
	api := &fakeMessageCreator{}
	sender := newTestTwilioSender(api)

	buttons := []models.Button{
		{ID: "option_1", Title: "Agendar"},
		{ID: "option_2", Title: "Consultar"},
		{ID: "option_3", Title: "Ubicación"},
	}
	if err := sender.SendButtons(context.Background(), "525580129436", "Elige una opción:", buttons); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(api.params) != 1 {
		t.Fatalf("expected 1 message, got %d", len(api.params))
	}
	want := "Elige una opción:\n1. Agendar\n2. Consultar\n3. Ubicación"
	if got := strOf(api.params[0].Body); got != want {
		t.Errorf("degraded body = %q, want %q", got, want)
	}
}

func TestTwilioSender_SendButtonsEmpty(t *testing.T) {
	api := &fakeMessageCreator{}
	sender := newTestTwilioSender(api)

	err := sender.SendButtons(context.Background(), "525580129436", "Elige:", nil)
	if !errors.Is(err, models.ErrNoButtons) {
		t.Errorf("expected ErrNoButtons, got %v", err)
	}
	if len(api.params) != 0 {
		t.Errorf("no message should be created, got %d", len(api.params))
	}
}

func TestTwilioSender_SendMedia(t *testing.T) {
	api := &fakeMessageCreator{}
	sender := newTestTwilioSender(api)

	asset := models.MediaAsset{
		Kind:    models.MediaKindImage,
		URL:     "https://example.com/medpet.png",
		Caption: "Imagen",
	}
	if err := sender.SendMedia(context.Background(), "525580129436", asset); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := strOf(api.params[0].Body); got != "Imagen" {
		t.Errorf("unexpected body %q", got)
	}
	if api.params[0].MediaUrl == nil || len(*api.params[0].MediaUrl) != 1 || (*api.params[0].MediaUrl)[0] != asset.URL {
		t.Errorf("unexpected media url %v", api.params[0].MediaUrl)
	}
}

func TestTwilioSender_SendMediaUnsupportedKind(t *testing.T) {
	api := &fakeMessageCreator{}
	sender := newTestTwilioSender(api)

	err := sender.SendMedia(context.Background(), "525580129436", models.MediaAsset{Kind: "sticker"})
	if !errors.Is(err, models.ErrUnsupportedMedia) {
		t.Errorf("expected ErrUnsupportedMedia, got %v", err)
	}
	if len(api.params) != 0 {
		t.Errorf("no message should be created, got %d", len(api.params))
	}
}

func TestTwilioSender_SendContactDegradesToText(t *testing.T) {
	api := &fakeMessageCreator{}
	sender := newTestTwilioSender(api)

	card := models.ContactCard{
		Name:   models.ContactName{FormattedName: "MedPet Contacto"},
		Phones: []models.ContactPhone{{Phone: "+1234567890"}},
	}
	if err := sender.SendContact(context.Background(), "525580129436", card); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := strOf(api.params[0].Body); got != "MedPet Contacto: +1234567890" {
		t.Errorf("degraded body = %q", got)
	}
}

func TestTwilioSender_SendContactWithoutPhones(t *testing.T) {
	api := &fakeMessageCreator{}
	sender := newTestTwilioSender(api)

	card := models.ContactCard{Name: models.ContactName{FormattedName: "MedPet Contacto"}}
	if err := sender.SendContact(context.Background(), "525580129436", card); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := strOf(api.params[0].Body); got != "MedPet Contacto" {
		t.Errorf("degraded body = %q", got)
	}
}

func TestTwilioSender_SendLocationDegradesToText(t *testing.T) {
	api := &fakeMessageCreator{}
	sender := newTestTwilioSender(api)

	loc := models.Location{
		Latitude:  6.2071694,
		Longitude: -75.574607,
		Name:      "Platzi Medellín",
		Address:   "Cra. 43A #5A - 113",
	}
	if err := sender.SendLocation(context.Background(), "525580129436", loc); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	body := strOf(api.params[0].Body)
	if !strings.HasPrefix(body, "Platzi Medellín\nCra. 43A #5A - 113\n") {
		t.Errorf("degraded body should lead with name and address, got %q", body)
	}
	want := fmt.Sprintf("(%f, %f)", loc.Latitude, loc.Longitude)
	if !strings.HasSuffix(body, want) {
		t.Errorf("degraded body should end with coordinates %q, got %q", want, body)
	}
}

func TestTwilioSender_SendTemplateAndMarkReadAreNoops(t *testing.T) {
	api := &fakeMessageCreator{}
	sender := newTestTwilioSender(api)

	if err := sender.SendTemplate(context.Background(), "525580129436", "hello_world", "en_US"); err != nil {
		t.Errorf("SendTemplate should be a no-op, got %v", err)
	}
	if err := sender.MarkRead(context.Background(), "wamid.1"); err != nil {
		t.Errorf("MarkRead should be a no-op, got %v", err)
	}
	if len(api.params) != 0 {
		t.Errorf("no message should be created, got %d", len(api.params))
	}
}

func TestTwilioSender_SendFailure(t *testing.T) {
	api := &fakeMessageCreator{err: errors.New("twilio down")}
	sender := newTestTwilioSender(api)

	err := sender.SendText(context.Background(), "525580129436", "hola", "")
	if err == nil || !strings.Contains(err.Error(), "twilio down") {
		t.Errorf("expected wrapped send error, got %v", err)
	}
}

func TestNewTwilioSender_MissingConfig(t *testing.T) {
	t.Setenv("TWILIO_ACCOUNT_SID", "")
	t.Setenv("TWILIO_AUTH_TOKEN", "")
	t.Setenv("TWILIO_FROM_NUMBER", "")

	if _, err := NewTwilioSender(); err == nil {
		t.Error("expected error when credentials are missing")
	}
	if _, err := NewTwilioSender(WithAccountSID("AC123"), WithAuthToken("secret")); err == nil {
		t.Error("expected error when from number is missing")
	}
}
