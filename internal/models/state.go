// Package models defines session state structures for the conversation engine.
package models

import "time"

// SessionKind identifies which guided flow a user is currently in.
type SessionKind string

const (
	// SessionNone means the user has no active flow.
	SessionNone SessionKind = ""
	// SessionAppointment is the multi-step appointment booking flow.
	SessionAppointment SessionKind = "appointment"
	// SessionAssistant is the single-turn question flow.
	SessionAssistant SessionKind = "assistant"
)

// StepType identifies the current step within a flow.
type StepType string

// Step constants for the appointment flow, in order.
const (
	StepName    StepType = "name"
	StepPetName StepType = "petName"
	StepPetType StepType = "petType"
	StepReason  StepType = "reason"
)

// Step constant for the assistant flow.
const (
	StepQuestion StepType = "question"
)

// SessionState is the per-user conversation state. The zero value means no
// active session. A user holds at most one session at a time; the appointment
// and assistant kinds are mutually exclusive.
type SessionState struct {
	Kind    SessionKind `json:"kind"`
	Step    StepType    `json:"step,omitempty"`
	Name    string      `json:"name,omitempty"`
	PetName string      `json:"pet_name,omitempty"`
	PetType string      `json:"pet_type,omitempty"`
	Reason  string      `json:"reason,omitempty"`
}

// Active reports whether the user has a non-empty session.
func (s SessionState) Active() bool {
	return s.Kind != SessionNone
}

// NewAppointmentSession returns a fresh appointment session at the name step.
func NewAppointmentSession() SessionState {
	return SessionState{Kind: SessionAppointment, Step: StepName}
}

// NewAssistantSession returns a fresh assistant session at the question step.
func NewAssistantSession() SessionState {
	return SessionState{Kind: SessionAssistant, Step: StepQuestion}
}

// AppointmentRecord is the completed booking handed to the recorders.
// It is immutable once constructed and appended exactly once.
type AppointmentRecord struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	PetName   string    `json:"pet_name"`
	PetType   string    `json:"pet_type"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// Row renders the record as a spreadsheet row in the recorded column order.
func (r AppointmentRecord) Row() []string {
	return []string{r.UserID, r.Name, r.PetName, r.PetType, r.Reason, r.CreatedAt.Format(time.RFC3339)}
}
