// Package store provides storage backends for appointment records.
//
// This file implements the Google Sheets recorder: one row per completed
// appointment, appended to the configured reservations sheet.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/medpet/chatbot/internal/models"
)

// DefaultSpreadsheetRange is the sheet range rows are appended to.
const DefaultSpreadsheetRange = "reservas"

// valuesAppender defines the minimal interface for appending sheet rows.
type valuesAppender interface {
	Append(ctx context.Context, spreadsheetID, rangeName string, row []interface{}) error
}

// sheetsAppender implements valuesAppender against the real Sheets API.
type sheetsAppender struct {
	svc *sheets.Service
}

func (a *sheetsAppender) Append(ctx context.Context, spreadsheetID, rangeName string, row []interface{}) error {
	valueRange := &sheets.ValueRange{Values: [][]interface{}{row}}
	_, err := a.svc.Spreadsheets.Values.Append(spreadsheetID, rangeName, valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

// SheetsRecorder appends appointment rows to a Google spreadsheet.
type SheetsRecorder struct {
	appender      valuesAppender
	spreadsheetID string
	rangeName     string
}

// NewSheetsRecorder creates a Sheets recorder, falling back to the
// SPREADSHEET_ID and GOOGLE_CREDENTIALS_FILE environment variables when
// options are unset.
func NewSheetsRecorder(ctx context.Context, opts ...Option) (*SheetsRecorder, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.SpreadsheetID == "" {
		cfg.SpreadsheetID = os.Getenv("SPREADSHEET_ID")
	}
	if cfg.CredentialsFile == "" {
		cfg.CredentialsFile = os.Getenv("GOOGLE_CREDENTIALS_FILE")
	}
	if cfg.SpreadsheetName == "" {
		cfg.SpreadsheetName = DefaultSpreadsheetRange
	}
	slog.Debug("NewSheetsRecorder invoked",
		"spreadsheet_id_set", cfg.SpreadsheetID != "",
		"credentials_file_set", cfg.CredentialsFile != "",
		"range", cfg.SpreadsheetName)

	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id not set")
	}
	if cfg.CredentialsFile == "" {
		return nil, fmt.Errorf("credentials file not set")
	}

	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope))
	if err != nil {
		slog.Error("Failed to create Sheets service", "error", err)
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	slog.Info("SheetsRecorder initialized", "range", cfg.SpreadsheetName)
	return &SheetsRecorder{
		appender:      &sheetsAppender{svc: svc},
		spreadsheetID: cfg.SpreadsheetID,
		rangeName:     cfg.SpreadsheetName,
	}, nil
}

// AppendAppointment appends the record as one spreadsheet row:
// [userID, name, petName, petType, reason, RFC3339 timestamp].
func (s *SheetsRecorder) AppendAppointment(ctx context.Context, record models.AppointmentRecord) error {
	cells := record.Row()
	row := make([]interface{}, len(cells))
	for i, c := range cells {
		row[i] = c
	}

	if err := s.appender.Append(ctx, s.spreadsheetID, s.rangeName, row); err != nil {
		slog.Error("SheetsRecorder append failed", "error", err, "userID", record.UserID)
		return fmt.Errorf("failed to append row: %w", err)
	}
	slog.Debug("SheetsRecorder row appended", "userID", record.UserID)
	return nil
}
