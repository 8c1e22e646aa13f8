// Package messaging provides the outbound message delivery abstraction.
//
// The conversation core formats payloads and hands them to a Sender; delivery
// failures are logged and swallowed by the caller, never surfaced to the user.
package messaging

import (
	"context"

	"github.com/medpet/chatbot/internal/models"
)

// Sender defines a pluggable message delivery abstraction. All calls are
// fire-and-forget from the conversation core's perspective: the core does not
// block a flow on delivery confirmation.
type Sender interface {
	// SendText sends a plain text message. replyTo optionally references the
	// message being answered; empty means no reply context.
	SendText(ctx context.Context, to, body, replyTo string) error

	// SendButtons sends a text body with 1 to 3 reply buttons.
	SendButtons(ctx context.Context, to, body string, buttons []models.Button) error

	// SendMedia sends a media message from the static catalog.
	SendMedia(ctx context.Context, to string, asset models.MediaAsset) error

	// SendContact sends a contact card.
	SendContact(ctx context.Context, to string, card models.ContactCard) error

	// SendLocation sends a location pin.
	SendLocation(ctx context.Context, to string, loc models.Location) error

	// SendTemplate sends a pre-approved template message.
	SendTemplate(ctx context.Context, to, name, languageCode string) error

	// MarkRead acknowledges an inbound message as read.
	MarkRead(ctx context.Context, messageID string) error
}
