// Package store provides storage backends for appointment records.
//
// This file implements an SQLite-backed appointment ledger.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	_ "github.com/mattn/go-sqlite3"

	"github.com/medpet/chatbot/internal/models"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteRecorder is a local appointment ledger backed by SQLite.
type SQLiteRecorder struct {
	db *sql.DB
}

// NewSQLiteRecorder creates an SQLite recorder. The DSN is the database file
// path; its directory is created when missing.
func NewSQLiteRecorder(opts ...Option) (*SQLiteRecorder, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteRecorder invoked", "DSN_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("SQLiteRecorder DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(cfg.DSN)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		db.Close()
		slog.Error("Failed to run SQLite migrations", "error", err)
		return nil, fmt.Errorf("failed to run sqlite migrations: %w", err)
	}

	slog.Info("SQLiteRecorder initialized", "dsn", cfg.DSN)
	return &SQLiteRecorder{db: db}, nil
}

// AppendAppointment inserts the record into the local ledger.
func (s *SQLiteRecorder) AppendAppointment(ctx context.Context, record models.AppointmentRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO appointments (user_id, name, pet_name, pet_type, reason, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		record.UserID, record.Name, record.PetName, record.PetType, record.Reason, record.CreatedAt)
	if err != nil {
		slog.Error("SQLiteRecorder append failed", "error", err, "userID", record.UserID)
		return fmt.Errorf("failed to insert appointment: %w", err)
	}
	slog.Debug("SQLiteRecorder appointment appended", "userID", record.UserID)
	return nil
}

// Close releases the database handle.
func (s *SQLiteRecorder) Close() error {
	return s.db.Close()
}
