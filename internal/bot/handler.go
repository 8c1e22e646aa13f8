package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/medpet/chatbot/internal/messaging"
	"github.com/medpet/chatbot/internal/models"
	"github.com/medpet/chatbot/internal/session"
	"github.com/medpet/chatbot/internal/store"
)

// Answerer is the text-generation collaborator used by the assistant flow.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

// Handler is the conversation orchestrator. It classifies each inbound event,
// runs the owning component, performs the resulting outbound actions in
// order, and always acknowledges text and interactive messages as read.
//
// There is no fatal error class here: every collaborator failure degrades to
// log-and-continue so one failing integration never blocks the conversation.
type Handler struct {
	sessions session.Store
	sender   messaging.Sender
	recorder store.Recorder
	answerer Answerer
	now      func() time.Time
}

// NewHandler creates the orchestrator. recorder and answerer may be nil; the
// corresponding features then degrade (appointments are only logged, the
// assistant answers with an empty reply).
func NewHandler(sessions session.Store, sender messaging.Sender, recorder store.Recorder, answerer Answerer) *Handler {
	if recorder == nil {
		recorder = store.NewLogRecorder()
	}
	return &Handler{
		sessions: sessions,
		sender:   sender,
		recorder: recorder,
		answerer: answerer,
		now:      time.Now,
	}
}

// HandleIncoming processes one inbound message. Message kinds other than text
// and interactive are ignored silently: no reply, no session mutation, no
// read acknowledgement.
func (h *Handler) HandleIncoming(ctx context.Context, msg models.IncomingMessage, contact models.Contact) {
	unlock := h.sessions.Lock(msg.From)
	defer unlock()

	state := h.sessions.Get(msg.From)
	decision := Classify(msg, state)
	slog.Debug("Handler classified message", "from", msg.From, "type", msg.Type, "route", decision.Route)

	switch decision.Route {
	case RouteIgnore:
		return
	case RouteGreeting:
		h.handleGreeting(ctx, msg, contact, state)
	case RouteMedia:
		h.handleMedia(ctx, msg.From, decision.Keyword)
	case RouteAppointment:
		h.handleAppointment(ctx, msg.From, state, decision.Input, msg.ID)
	case RouteAssistant:
		h.handleAssistant(ctx, msg.From, decision.Input, msg.ID)
	case RouteMenu:
		replyTo := ""
		if msg.Type == models.MessageTypeInteractive {
			replyTo = msg.ID
		}
		h.apply(ctx, msg.From, routeMenuOption(decision.Option, replyTo, state))
	}

	// Unconditional for text and interactive events, regardless of which
	// branch fired or whether it errored.
	if err := h.sender.MarkRead(ctx, msg.ID); err != nil {
		slog.Error("Handler mark-as-read failed", "error", err, "messageID", msg.ID)
	}
}

// handleGreeting sends the welcome message and menu. Any active flow state is
// deliberately left untouched: the greeting re-presents the conversational
// surface without resetting the flow underneath.
func (h *Handler) handleGreeting(ctx context.Context, msg models.IncomingMessage, contact models.Contact, state models.SessionState) {
	result := stepResult{
		actions: []Action{
			textAction(welcomeText(contact.DisplayName()), msg.ID),
			buttonsAction(menuPrompt, welcomeMenuButtons),
		},
		next: state,
	}
	h.apply(ctx, msg.From, result)
}

// handleMedia dispatches one static media send. The session is not touched
// and not advanced.
func (h *Handler) handleMedia(ctx context.Context, to, keyword string) {
	asset, ok := mediaCatalog[keyword]
	if !ok {
		slog.Error("Handler unknown media keyword", "keyword", keyword, "to", to)
		return
	}
	if err := h.sender.SendMedia(ctx, to, asset); err != nil {
		slog.Error("Handler media send failed", "error", err, "keyword", keyword, "to", to)
	}
}

// handleAppointment advances the appointment flow by one step. On the
// terminal step the completed record is appended fire-and-forget: a recorder
// failure is logged and never blocks the summary reply.
func (h *Handler) handleAppointment(ctx context.Context, userID string, state models.SessionState, input, replyTo string) {
	result, record := advanceAppointment(userID, state, input, replyTo, h.now())
	if record != nil {
		if err := h.recorder.AppendAppointment(ctx, *record); err != nil {
			slog.Error("Handler appointment append failed", "error", err, "userID", userID)
		}
		slog.Info("Handler appointment completed", "userID", userID)
	}
	h.apply(ctx, userID, result)
}

// handleAssistant runs the single-turn question flow: forward the text to the
// text-generation collaborator, send whatever comes back (an empty reply on
// failure included), clear the session unconditionally, then present the
// feedback menu.
func (h *Handler) handleAssistant(ctx context.Context, userID, question, replyTo string) {
	var answer string
	if h.answerer != nil {
		var err error
		answer, err = h.answerer.Answer(ctx, question)
		if err != nil {
			slog.Error("Handler assistant answer failed", "error", err, "userID", userID)
		}
	} else {
		slog.Warn("Handler assistant not configured", "userID", userID)
	}

	result := stepResult{
		actions: []Action{
			textAction(answer, replyTo),
			buttonsAction(feedbackPrompt, feedbackButtons),
		},
	}
	h.apply(ctx, userID, result)
}

// apply persists the resulting session state and performs the outbound
// actions in order. Send failures are logged and do not stop later actions.
func (h *Handler) apply(ctx context.Context, userID string, result stepResult) {
	if result.next.Active() {
		h.sessions.Set(userID, result.next)
	} else {
		h.sessions.Clear(userID)
	}

	for _, action := range result.actions {
		if err := h.perform(ctx, userID, action); err != nil {
			slog.Error("Handler outbound action failed", "error", err, "kind", action.Kind, "to", userID)
		}
	}
}

// perform maps one action onto the delivery collaborator.
func (h *Handler) perform(ctx context.Context, to string, action Action) error {
	switch action.Kind {
	case ActionText:
		return h.sender.SendText(ctx, to, action.Body, action.ReplyTo)
	case ActionButtons:
		return h.sender.SendButtons(ctx, to, action.Body, action.Buttons)
	case ActionMedia:
		return h.sender.SendMedia(ctx, to, action.Media)
	case ActionContact:
		return h.sender.SendContact(ctx, to, action.Contact)
	case ActionLocation:
		return h.sender.SendLocation(ctx, to, action.Location)
	}
	return nil
}
