// Package models defines the core data structures for the MedPet chatbot.
//
// It includes the inbound webhook event types, the outbound message payloads
// (buttons, media, contact cards, locations), and the shared API response
// envelope used by the HTTP layer.
package models

import "errors"

// MessageType identifies the kind of an inbound WhatsApp message.
type MessageType string

const (
	// MessageTypeText is a plain text message.
	MessageTypeText MessageType = "text"
	// MessageTypeInteractive is a button reply to an interactive message.
	MessageTypeInteractive MessageType = "interactive"
)

// Error variables for better error handling and testability
var (
	ErrEmptyRecipient      = errors.New("recipient cannot be empty")
	ErrEmptyMessageID      = errors.New("message id cannot be empty")
	ErrUnsupportedMedia    = errors.New("unsupported media kind")
	ErrUnknownMediaKeyword = errors.New("unknown media keyword")
	ErrTooManyButtons      = errors.New("interactive messages support at most 3 buttons")
	ErrNoButtons           = errors.New("interactive messages require at least 1 button")
)

// TextContent holds the body of a text message.
type TextContent struct {
	Body string `json:"body"`
}

// ButtonReply holds the selected option of an interactive button reply.
type ButtonReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// InteractiveContent holds the interactive portion of an inbound message.
type InteractiveContent struct {
	Type        string       `json:"type"`
	ButtonReply *ButtonReply `json:"button_reply,omitempty"`
}

// IncomingMessage represents one inbound message from the webhook payload.
// Only text and interactive messages are processed; other kinds are ignored.
type IncomingMessage struct {
	From        string              `json:"from"`
	ID          string              `json:"id"`
	Timestamp   string              `json:"timestamp"`
	Type        MessageType         `json:"type"`
	Text        *TextContent        `json:"text,omitempty"`
	Interactive *InteractiveContent `json:"interactive,omitempty"`
}

// SelectedOption returns the button reply id for interactive messages,
// or an empty string when none is present.
func (m IncomingMessage) SelectedOption() string {
	if m.Interactive == nil || m.Interactive.ButtonReply == nil {
		return ""
	}
	return m.Interactive.ButtonReply.ID
}

// ContactProfile holds the sender's profile information from the webhook.
type ContactProfile struct {
	Name string `json:"name"`
}

// Contact identifies the sender of an inbound message.
type Contact struct {
	Profile ContactProfile `json:"profile"`
	WaID    string         `json:"wa_id"`
}

// DisplayName resolves the sender's name, falling back to the platform id.
func (c Contact) DisplayName() string {
	if c.Profile.Name != "" {
		return c.Profile.Name
	}
	return c.WaID
}

// WebhookValue is the value object inside a webhook change notification.
// Events without messages or contacts are status updates and are ignored.
type WebhookValue struct {
	MessagingProduct string            `json:"messaging_product"`
	Messages         []IncomingMessage `json:"messages,omitempty"`
	Contacts         []Contact         `json:"contacts,omitempty"`
}

// WebhookChange wraps one change notification in a webhook entry.
type WebhookChange struct {
	Field string       `json:"field"`
	Value WebhookValue `json:"value"`
}

// WebhookEntry is one entry in the webhook payload.
type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

// WebhookPayload is the top-level body of a webhook POST from the platform.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

// FirstMessage extracts the first message and contact from the payload.
// It returns false when the event carries no processable message.
func (p WebhookPayload) FirstMessage() (IncomingMessage, Contact, bool) {
	if len(p.Entry) == 0 || len(p.Entry[0].Changes) == 0 {
		return IncomingMessage{}, Contact{}, false
	}
	value := p.Entry[0].Changes[0].Value
	if len(value.Messages) == 0 || len(value.Contacts) == 0 {
		return IncomingMessage{}, Contact{}, false
	}
	return value.Messages[0], value.Contacts[0], true
}

// MediaKind identifies the transport type of an outbound media message.
type MediaKind string

const (
	MediaKindAudio    MediaKind = "audio"
	MediaKindImage    MediaKind = "image"
	MediaKindVideo    MediaKind = "video"
	MediaKindDocument MediaKind = "document"
)

// IsValidMediaKind checks if the given media kind is supported.
func IsValidMediaKind(k MediaKind) bool {
	switch k {
	case MediaKindAudio, MediaKindImage, MediaKindVideo, MediaKindDocument:
		return true
	default:
		return false
	}
}

// MediaAsset describes one sendable media file from the static catalog.
type MediaAsset struct {
	Kind     MediaKind `json:"kind"`
	URL      string    `json:"url"`
	Caption  string    `json:"caption,omitempty"`
	Filename string    `json:"filename,omitempty"` // documents only
}

// Button is one selectable reply option on an interactive message.
type Button struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Location describes an outbound location payload.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
}

// ContactAddress is one postal address on a contact card.
type ContactAddress struct {
	Street      string `json:"street,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	Zip         string `json:"zip,omitempty"`
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	Type        string `json:"type,omitempty"`
}

// ContactEmail is one email entry on a contact card.
type ContactEmail struct {
	Email string `json:"email"`
	Type  string `json:"type,omitempty"`
}

// ContactName holds the name fields of a contact card.
type ContactName struct {
	FormattedName string `json:"formatted_name"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
}

// ContactOrg holds the organization fields of a contact card.
type ContactOrg struct {
	Company    string `json:"company,omitempty"`
	Department string `json:"department,omitempty"`
	Title      string `json:"title,omitempty"`
}

// ContactPhone is one phone entry on a contact card.
type ContactPhone struct {
	Phone string `json:"phone"`
	WaID  string `json:"wa_id,omitempty"`
	Type  string `json:"type,omitempty"`
}

// ContactURL is one URL entry on a contact card.
type ContactURL struct {
	URL  string `json:"url"`
	Type string `json:"type,omitempty"`
}

// ContactCard describes an outbound contact payload.
type ContactCard struct {
	Addresses []ContactAddress `json:"addresses,omitempty"`
	Emails    []ContactEmail   `json:"emails,omitempty"`
	Name      ContactName      `json:"name"`
	Org       ContactOrg       `json:"org,omitempty"`
	Phones    []ContactPhone   `json:"phones,omitempty"`
	URLs      []ContactURL     `json:"urls,omitempty"`
}

// APIStatus represents the status field of an API response.
type APIStatus string

const (
	APIStatusOK    APIStatus = "ok"
	APIStatusError APIStatus = "error"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Result  interface{} `json:"result,omitempty"`
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}
