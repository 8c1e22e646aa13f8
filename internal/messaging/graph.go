// Package messaging implements Sender against the WhatsApp Business Cloud API.
package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/medpet/chatbot/internal/models"
)

// Constants for GraphSender configuration
const (
	// DefaultBaseURL is the Meta Graph API endpoint.
	DefaultBaseURL = "https://graph.facebook.com"
	// DefaultAPIVersion is the Graph API version used when none is configured.
	DefaultAPIVersion = "v21.0"
	// DefaultRequestTimeout bounds each delivery request.
	DefaultRequestTimeout = 15 * time.Second
)

// Opts holds configuration options for the Graph API sender.
type Opts struct {
	BaseURL       string
	APIVersion    string
	Token         string
	BusinessPhone string
	HTTPClient    *http.Client
}

// Option defines a configuration option for the Graph API sender.
type Option func(*Opts)

// WithBaseURL overrides the Graph API base URL (used in tests).
func WithBaseURL(url string) Option {
	return func(o *Opts) { o.BaseURL = url }
}

// WithAPIVersion sets the Graph API version segment.
func WithAPIVersion(v string) Option {
	return func(o *Opts) { o.APIVersion = v }
}

// WithToken sets the bearer token for the business account.
func WithToken(token string) Option {
	return func(o *Opts) { o.Token = token }
}

// WithBusinessPhone sets the business phone number id messages are sent from.
func WithBusinessPhone(id string) Option {
	return func(o *Opts) { o.BusinessPhone = id }
}

// WithHTTPClient injects a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Opts) { o.HTTPClient = c }
}

// GraphSender implements Sender using the WhatsApp Business Cloud API.
type GraphSender struct {
	baseURL       string
	apiVersion    string
	token         string
	businessPhone string
	httpClient    *http.Client
}

// NewGraphSender creates a Cloud API sender, falling back to the API_TOKEN,
// BUSINESS_PHONE and API_VERSION environment variables when options are unset.
func NewGraphSender(opts ...Option) (*GraphSender, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Token == "" {
		cfg.Token = os.Getenv("API_TOKEN")
	}
	if cfg.BusinessPhone == "" {
		cfg.BusinessPhone = os.Getenv("BUSINESS_PHONE")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = os.Getenv("API_VERSION")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultRequestTimeout}
	}
	slog.Debug("GraphSender config loaded",
		"token_set", cfg.Token != "",
		"business_phone_set", cfg.BusinessPhone != "",
		"api_version", cfg.APIVersion)

	if cfg.Token == "" {
		return nil, fmt.Errorf("API token must be provided")
	}
	if cfg.BusinessPhone == "" {
		return nil, fmt.Errorf("business phone id must be provided")
	}

	return &GraphSender{
		baseURL:       cfg.BaseURL,
		apiVersion:    cfg.APIVersion,
		token:         cfg.Token,
		businessPhone: cfg.BusinessPhone,
		httpClient:    cfg.HTTPClient,
	}, nil
}

// CanonicalizeRecipient normalizes a recipient number for the Cloud API.
// Mexican mobile numbers arrive from the webhook with a 521 prefix that the
// send endpoint rejects; rewrite it to 52.
func CanonicalizeRecipient(number string) string {
	if strings.HasPrefix(number, "521") {
		return "52" + strings.TrimPrefix(number, "521")
	}
	return number
}

// messagePayload is the request body for POST /{version}/{phone}/messages.
// Exactly one of the typed payload fields is set per request.
type messagePayload struct {
	MessagingProduct string               `json:"messaging_product"`
	To               string               `json:"to,omitempty"`
	Type             string               `json:"type,omitempty"`
	Status           string               `json:"status,omitempty"`
	MessageID        string               `json:"message_id,omitempty"`
	Text             *textPayload         `json:"text,omitempty"`
	Context          *contextPayload      `json:"context,omitempty"`
	Interactive      *interactivePayload  `json:"interactive,omitempty"`
	Audio            *mediaLink           `json:"audio,omitempty"`
	Image            *mediaLink           `json:"image,omitempty"`
	Video            *mediaLink           `json:"video,omitempty"`
	Document         *mediaLink           `json:"document,omitempty"`
	Contacts         []models.ContactCard `json:"contacts,omitempty"`
	Location         *models.Location     `json:"location,omitempty"`
	Template         *templatePayload     `json:"template,omitempty"`
}

type textPayload struct {
	Body string `json:"body"`
}

type contextPayload struct {
	MessageID string `json:"message_id"`
}

type interactivePayload struct {
	Type   string             `json:"type"`
	Body   interactiveBody    `json:"body"`
	Action interactiveButtons `json:"action"`
}

type interactiveBody struct {
	Text string `json:"text"`
}

type interactiveButtons struct {
	Buttons []buttonPayload `json:"buttons"`
}

type buttonPayload struct {
	Type  string      `json:"type"`
	Reply buttonReply `json:"reply"`
}

type buttonReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type mediaLink struct {
	Link     string `json:"link"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
}

type templatePayload struct {
	Name     string           `json:"name"`
	Language templateLanguage `json:"language"`
}

type templateLanguage struct {
	Code string `json:"code"`
}

// SendText sends a plain text message, optionally replying to a message id.
func (g *GraphSender) SendText(ctx context.Context, to, body, replyTo string) error {
	payload := messagePayload{
		MessagingProduct: "whatsapp",
		To:               CanonicalizeRecipient(to),
		Type:             "text",
		Text:             &textPayload{Body: body},
	}
	if replyTo != "" {
		payload.Context = &contextPayload{MessageID: replyTo}
	}
	return g.post(ctx, "text", payload)
}

// SendButtons sends a text body with reply buttons. The Cloud API allows at
// most 3 buttons per message.
func (g *GraphSender) SendButtons(ctx context.Context, to, body string, buttons []models.Button) error {
	if len(buttons) == 0 {
		return models.ErrNoButtons
	}
	if len(buttons) > 3 {
		return models.ErrTooManyButtons
	}
	action := interactiveButtons{}
	for _, b := range buttons {
		action.Buttons = append(action.Buttons, buttonPayload{
			Type:  "reply",
			Reply: buttonReply{ID: b.ID, Title: b.Title},
		})
	}
	payload := messagePayload{
		MessagingProduct: "whatsapp",
		To:               CanonicalizeRecipient(to),
		Type:             "interactive",
		Interactive: &interactivePayload{
			Type:   "button",
			Body:   interactiveBody{Text: body},
			Action: action,
		},
	}
	return g.post(ctx, "interactive", payload)
}

// SendMedia sends a media message by URL. Audio carries no caption; documents
// carry a filename.
func (g *GraphSender) SendMedia(ctx context.Context, to string, asset models.MediaAsset) error {
	payload := messagePayload{
		MessagingProduct: "whatsapp",
		To:               CanonicalizeRecipient(to),
		Type:             string(asset.Kind),
	}
	switch asset.Kind {
	case models.MediaKindAudio:
		payload.Audio = &mediaLink{Link: asset.URL}
	case models.MediaKindImage:
		payload.Image = &mediaLink{Link: asset.URL, Caption: asset.Caption}
	case models.MediaKindVideo:
		payload.Video = &mediaLink{Link: asset.URL, Caption: asset.Caption}
	case models.MediaKindDocument:
		payload.Document = &mediaLink{Link: asset.URL, Caption: asset.Caption, Filename: asset.Filename}
	default:
		slog.Error("GraphSender SendMedia unsupported kind", "kind", asset.Kind, "to", to)
		return models.ErrUnsupportedMedia
	}
	return g.post(ctx, "media", payload)
}

// SendContact sends a contact card.
func (g *GraphSender) SendContact(ctx context.Context, to string, card models.ContactCard) error {
	payload := messagePayload{
		MessagingProduct: "whatsapp",
		To:               CanonicalizeRecipient(to),
		Type:             "contacts",
		Contacts:         []models.ContactCard{card},
	}
	return g.post(ctx, "contacts", payload)
}

// SendLocation sends a location pin.
func (g *GraphSender) SendLocation(ctx context.Context, to string, loc models.Location) error {
	payload := messagePayload{
		MessagingProduct: "whatsapp",
		To:               CanonicalizeRecipient(to),
		Type:             "location",
		Location:         &loc,
	}
	return g.post(ctx, "location", payload)
}

// SendTemplate sends a pre-approved template message.
func (g *GraphSender) SendTemplate(ctx context.Context, to, name, languageCode string) error {
	payload := messagePayload{
		MessagingProduct: "whatsapp",
		To:               CanonicalizeRecipient(to),
		Type:             "template",
		Template:         &templatePayload{Name: name, Language: templateLanguage{Code: languageCode}},
	}
	return g.post(ctx, "template", payload)
}

// MarkRead acknowledges an inbound message as read.
func (g *GraphSender) MarkRead(ctx context.Context, messageID string) error {
	if messageID == "" {
		return models.ErrEmptyMessageID
	}
	payload := messagePayload{
		MessagingProduct: "whatsapp",
		Status:           "read",
		MessageID:        messageID,
	}
	return g.post(ctx, "read", payload)
}

func (g *GraphSender) post(ctx context.Context, kind string, payload messagePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", kind, err)
	}

	url := fmt.Sprintf("%s/%s/%s/messages", g.baseURL, g.apiVersion, g.businessPhone)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", kind, err)
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		slog.Error("GraphSender request failed", "kind", kind, "error", err)
		return fmt.Errorf("graph api %s request failed: %w", kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		slog.Error("GraphSender non-success response", "kind", kind, "status", resp.StatusCode, "body", string(respBody))
		return fmt.Errorf("graph api %s returned status %d", kind, resp.StatusCode)
	}

	slog.Debug("GraphSender message delivered", "kind", kind)
	return nil
}
