// Package store provides storage backends for appointment records.
//
// This file implements a PostgreSQL-backed appointment ledger for hosted
// deployments.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	_ "github.com/lib/pq"

	"github.com/medpet/chatbot/internal/models"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the maximum number of open connections to the database.
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the maximum number of idle connections in the pool.
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the maximum amount of time a connection may be reused.
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresRecorder is an appointment ledger backed by PostgreSQL.
type PostgresRecorder struct {
	db *sql.DB
}

// NewPostgresRecorder creates a Postgres recorder based on provided options.
func NewPostgresRecorder(opts ...Option) (*PostgresRecorder, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresRecorder invoked", "DSN_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("PostgresRecorder DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if _, err := db.Exec(postgresMigrations); err != nil {
		db.Close()
		slog.Error("Failed to run Postgres migrations", "error", err)
		return nil, fmt.Errorf("failed to run postgres migrations: %w", err)
	}

	slog.Info("PostgresRecorder initialized")
	return &PostgresRecorder{db: db}, nil
}

// AppendAppointment inserts the record into the ledger.
func (p *PostgresRecorder) AppendAppointment(ctx context.Context, record models.AppointmentRecord) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO appointments (user_id, name, pet_name, pet_type, reason, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		record.UserID, record.Name, record.PetName, record.PetType, record.Reason, record.CreatedAt)
	if err != nil {
		slog.Error("PostgresRecorder append failed", "error", err, "userID", record.UserID)
		return fmt.Errorf("failed to insert appointment: %w", err)
	}
	slog.Debug("PostgresRecorder appointment appended", "userID", record.UserID)
	return nil
}

// Close releases the database handle.
func (p *PostgresRecorder) Close() error {
	return p.db.Close()
}
