package bot

import "github.com/medpet/chatbot/internal/models"

// ActionKind identifies the delivery call an Action maps to.
type ActionKind string

const (
	ActionText     ActionKind = "text"
	ActionButtons  ActionKind = "buttons"
	ActionMedia    ActionKind = "media"
	ActionContact  ActionKind = "contact"
	ActionLocation ActionKind = "location"
)

// Action is one outbound send produced by a handler. Handlers return ordered
// action lists instead of sending inline, so the orchestrator can perform,
// log, and swallow failures uniformly.
type Action struct {
	Kind     ActionKind
	Body     string
	ReplyTo  string
	Buttons  []models.Button
	Media    models.MediaAsset
	Contact  models.ContactCard
	Location models.Location
}

// textAction builds a plain text reply.
func textAction(body, replyTo string) Action {
	return Action{Kind: ActionText, Body: body, ReplyTo: replyTo}
}

// buttonsAction builds an interactive button menu.
func buttonsAction(body string, buttons []models.Button) Action {
	return Action{Kind: ActionButtons, Body: body, Buttons: buttons}
}

// stepResult is the outcome of handling one classified event: the outbound
// actions in send order plus the session state to persist. A zero next state
// clears the session.
type stepResult struct {
	actions []Action
	next    models.SessionState
}
