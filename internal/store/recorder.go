// Package store provides appointment recorders for the MedPet chatbot.
//
// A Recorder durably appends completed appointments. Recorder failures are
// logged and swallowed by callers: losing a row must never block the
// user-facing summary.
package store

import (
	"context"
	"log/slog"

	"github.com/medpet/chatbot/internal/models"
)

// Recorder appends one completed appointment record.
type Recorder interface {
	AppendAppointment(ctx context.Context, record models.AppointmentRecord) error
}

// Opts holds configuration options for recorder backends.
type Opts struct {
	DSN             string
	SpreadsheetID   string
	SpreadsheetName string
	CredentialsFile string
}

// Option defines a configuration option for recorder backends.
type Option func(*Opts)

// WithDSN sets the database DSN for SQL-backed recorders.
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithSpreadsheetID sets the target spreadsheet for the Sheets recorder.
func WithSpreadsheetID(id string) Option {
	return func(o *Opts) { o.SpreadsheetID = id }
}

// WithSpreadsheetRange sets the append range for the Sheets recorder.
func WithSpreadsheetRange(name string) Option {
	return func(o *Opts) { o.SpreadsheetName = name }
}

// WithCredentialsFile sets the Google service account credentials path.
func WithCredentialsFile(path string) Option {
	return func(o *Opts) { o.CredentialsFile = path }
}

// MultiRecorder fans an append out to several recorders. Each failure is
// logged; no failure aborts the remaining recorders.
type MultiRecorder struct {
	recorders []Recorder
}

// NewMultiRecorder creates a fan-out recorder over the given backends.
func NewMultiRecorder(recorders ...Recorder) *MultiRecorder {
	return &MultiRecorder{recorders: recorders}
}

// AppendAppointment appends the record to every backend. It always returns
// nil: individual failures are already logged and must not propagate.
func (m *MultiRecorder) AppendAppointment(ctx context.Context, record models.AppointmentRecord) error {
	for _, r := range m.recorders {
		if err := r.AppendAppointment(ctx, record); err != nil {
			slog.Error("MultiRecorder append failed", "error", err, "userID", record.UserID)
		}
	}
	return nil
}

// LogRecorder only logs the appointment. It is the fallback backend when no
// durable recorder is configured.
type LogRecorder struct{}

// NewLogRecorder creates a logging-only recorder.
func NewLogRecorder() *LogRecorder {
	return &LogRecorder{}
}

// AppendAppointment logs the record and succeeds.
func (l *LogRecorder) AppendAppointment(ctx context.Context, record models.AppointmentRecord) error {
	slog.Info("LogRecorder appointment recorded",
		"userID", record.UserID,
		"name", record.Name,
		"petName", record.PetName,
		"petType", record.PetType,
		"reason", record.Reason,
		"createdAt", record.CreatedAt)
	return nil
}
