// Package messaging provides a Twilio-backed fallback Sender.
package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/medpet/chatbot/internal/models"
)

// TwilioOpts holds configuration options for the Twilio WhatsApp sender.
type TwilioOpts struct {
	AccountSID string
	AuthToken  string
	FromWhats  string
}

// TwilioOption defines a configuration option for the Twilio WhatsApp sender.
type TwilioOption func(*TwilioOpts)

// WithAccountSID sets the Twilio account SID.
func WithAccountSID(sid string) TwilioOption {
	return func(o *TwilioOpts) { o.AccountSID = sid }
}

// WithAuthToken sets the Twilio auth token.
func WithAuthToken(token string) TwilioOption {
	return func(o *TwilioOpts) { o.AuthToken = token }
}

// WithFromWhats sets the sending number in "whatsapp:+1234567890" format.
func WithFromWhats(from string) TwilioOption {
	return func(o *TwilioOpts) { o.FromWhats = from }
}

// messageCreator is the slice of the Twilio REST API the sender depends on.
// Could be the real client's Api service or a mock in tests.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSender implements Sender over the Twilio REST API. Twilio's WhatsApp
// channel has no native reply buttons, contact cards or location pins in the
// Go SDK, so those payloads degrade to formatted text.
type TwilioSender struct {
	api       messageCreator
	fromWhats string
}

// NewTwilioSender creates a Twilio-backed sender, falling back to the
// TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_FROM_NUMBER environment
// variables when options are unset.
func NewTwilioSender(opts ...TwilioOption) (*TwilioSender, error) {
	var cfg TwilioOpts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.AccountSID == "" {
		cfg.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	}
	if cfg.AuthToken == "" {
		cfg.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	}
	if cfg.FromWhats == "" {
		cfg.FromWhats = os.Getenv("TWILIO_FROM_NUMBER")
	}
	slog.Debug("TwilioSender config loaded",
		"account_sid_set", cfg.AccountSID != "",
		"auth_token_set", cfg.AuthToken != "",
		"from_set", cfg.FromWhats != "")

	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("account SID and auth token must be provided")
	}
	if cfg.FromWhats == "" {
		return nil, fmt.Errorf("from number must be provided")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &TwilioSender{api: client.Api, fromWhats: cfg.FromWhats}, nil
}

func (t *TwilioSender) send(to, body, mediaURL string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo("whatsapp:+" + CanonicalizeRecipient(to))
	params.SetFrom(t.fromWhats)
	params.SetBody(body)
	if mediaURL != "" {
		params.SetMediaUrl([]string{mediaURL})
	}

	_, err := t.api.CreateMessage(params)
	if err != nil {
		slog.Error("TwilioSender send failed", "to", to, "error", err)
		return fmt.Errorf("failed to send message to %s: %w", to, err)
	}
	slog.Debug("TwilioSender message sent", "to", to)
	return nil
}

// SendText sends a plain text message. Twilio has no reply-context concept,
// so replyTo is ignored.
func (t *TwilioSender) SendText(ctx context.Context, to, body, replyTo string) error {
	return t.send(to, body, "")
}

// SendButtons degrades the button menu to a numbered text list.
func (t *TwilioSender) SendButtons(ctx context.Context, to, body string, buttons []models.Button) error {
	if len(buttons) == 0 {
		return models.ErrNoButtons
	}
	var sb strings.Builder
	sb.WriteString(body)
	for i, b := range buttons {
		sb.WriteString(fmt.Sprintf("\n%d. %s", i+1, b.Title))
	}
	return t.send(to, sb.String(), "")
}

// SendMedia sends the asset by URL with its caption as the body.
func (t *TwilioSender) SendMedia(ctx context.Context, to string, asset models.MediaAsset) error {
	if !models.IsValidMediaKind(asset.Kind) {
		return models.ErrUnsupportedMedia
	}
	return t.send(to, asset.Caption, asset.URL)
}

// SendContact degrades the contact card to text with the primary phone.
func (t *TwilioSender) SendContact(ctx context.Context, to string, card models.ContactCard) error {
	body := card.Name.FormattedName
	if len(card.Phones) > 0 {
		body = fmt.Sprintf("%s: %s", body, card.Phones[0].Phone)
	}
	return t.send(to, body, "")
}

// SendLocation degrades the pin to a text with name, address and coordinates.
func (t *TwilioSender) SendLocation(ctx context.Context, to string, loc models.Location) error {
	body := fmt.Sprintf("%s\n%s\n(%f, %f)", loc.Name, loc.Address, loc.Latitude, loc.Longitude)
	return t.send(to, body, "")
}

// SendTemplate is not supported on the Twilio fallback; templates require a
// content SID mapping that this deployment does not configure.
func (t *TwilioSender) SendTemplate(ctx context.Context, to, name, languageCode string) error {
	slog.Warn("TwilioSender SendTemplate not supported, skipping", "to", to, "template", name)
	return nil
}

// MarkRead is a no-op: Twilio manages read receipts on its side.
func (t *TwilioSender) MarkRead(ctx context.Context, messageID string) error {
	return nil
}
