package messaging

import (
	"context"
	"sync"

	"github.com/medpet/chatbot/internal/models"
)

// SentCall records one outbound call made through the MockSender.
type SentCall struct {
	Kind     string // "text", "buttons", "media", "contact", "location", "template", "read"
	To       string
	Body     string
	ReplyTo  string
	Buttons  []models.Button
	Media    models.MediaAsset
	Contact  models.ContactCard
	Location models.Location
	ReadID   string
}

// MockSender implements Sender for tests, recording every call in order.
type MockSender struct {
	mu    sync.Mutex
	calls []SentCall
	// Err, when set, is returned by every send method.
	Err error
}

// NewMockSender creates an empty mock sender.
func NewMockSender() *MockSender {
	return &MockSender{}
}

// Calls returns a copy of the recorded calls in send order.
func (m *MockSender) Calls() []SentCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsOfKind returns the recorded calls of one kind, in send order.
func (m *MockSender) CallsOfKind(kind string) []SentCall {
	var out []SentCall
	for _, c := range m.Calls() {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Reset discards all recorded calls.
func (m *MockSender) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

func (m *MockSender) record(c SentCall) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
	return m.Err
}

func (m *MockSender) SendText(ctx context.Context, to, body, replyTo string) error {
	return m.record(SentCall{Kind: "text", To: to, Body: body, ReplyTo: replyTo})
}

func (m *MockSender) SendButtons(ctx context.Context, to, body string, buttons []models.Button) error {
	return m.record(SentCall{Kind: "buttons", To: to, Body: body, Buttons: buttons})
}

func (m *MockSender) SendMedia(ctx context.Context, to string, asset models.MediaAsset) error {
	return m.record(SentCall{Kind: "media", To: to, Media: asset})
}

func (m *MockSender) SendContact(ctx context.Context, to string, card models.ContactCard) error {
	return m.record(SentCall{Kind: "contact", To: to, Contact: card})
}

func (m *MockSender) SendLocation(ctx context.Context, to string, loc models.Location) error {
	return m.record(SentCall{Kind: "location", To: to, Location: loc})
}

func (m *MockSender) SendTemplate(ctx context.Context, to, name, languageCode string) error {
	return m.record(SentCall{Kind: "template", To: to, Body: name})
}

func (m *MockSender) MarkRead(ctx context.Context, messageID string) error {
	return m.record(SentCall{Kind: "read", ReadID: messageID})
}
