package bot

import (
	"strings"

	"github.com/medpet/chatbot/internal/models"
)

// Route identifies which handler owns an inbound event.
type Route string

const (
	// RouteIgnore drops the event entirely (unrecognized message kind).
	RouteIgnore Route = "ignore"
	// RouteGreeting presents the welcome message and menu.
	RouteGreeting Route = "greeting"
	// RouteMedia dispatches a static media send.
	RouteMedia Route = "media"
	// RouteAppointment hands the message to the appointment flow.
	RouteAppointment Route = "appointment"
	// RouteAssistant hands the message to the assistant flow.
	RouteAssistant Route = "assistant"
	// RouteMenu interprets the event as a menu option selection.
	RouteMenu Route = "menu"
)

// Decision is the classification outcome for one inbound event.
type Decision struct {
	Route   Route
	Option  string // menu option id, for RouteMenu
	Keyword string // media keyword, for RouteMedia
	Input   string // raw text body, for the flow routes
}

// isGreeting reports whether the normalized body contains a greeting phrase.
func isGreeting(normalized string) bool {
	for _, phrase := range greetingPhrases {
		if strings.Contains(normalized, phrase) {
			return true
		}
	}
	return false
}

// Classify decides which handler owns an inbound message given the sender's
// current session state. The precedence is fixed and first-match-wins:
//
//  1. interactive button replies go straight to the menu router;
//  2. greetings always win over active flows (the flow state is left intact);
//  3. exact media keywords dispatch a static send without advancing any flow;
//  4. an active appointment session consumes the text;
//  5. an active assistant session consumes the text;
//  6. everything else is treated as an attempted menu selection.
func Classify(msg models.IncomingMessage, state models.SessionState) Decision {
	switch msg.Type {
	case models.MessageTypeInteractive:
		return Decision{Route: RouteMenu, Option: msg.SelectedOption()}
	case models.MessageTypeText:
		// fall through to the text rules below
	default:
		return Decision{Route: RouteIgnore}
	}

	if msg.Text == nil {
		return Decision{Route: RouteIgnore}
	}

	body := msg.Text.Body
	normalized := strings.ToLower(strings.TrimSpace(body))

	if isGreeting(normalized) {
		return Decision{Route: RouteGreeting}
	}
	if _, ok := mediaCatalog[normalized]; ok {
		return Decision{Route: RouteMedia, Keyword: normalized}
	}
	switch state.Kind {
	case models.SessionAppointment:
		return Decision{Route: RouteAppointment, Input: body}
	case models.SessionAssistant:
		return Decision{Route: RouteAssistant, Input: body}
	}
	return Decision{Route: RouteMenu, Option: normalized}
}
