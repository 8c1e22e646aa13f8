package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/medpet/chatbot/internal/api"
	"github.com/medpet/chatbot/internal/bot"
	"github.com/medpet/chatbot/internal/genai"
	"github.com/medpet/chatbot/internal/lockfile"
	"github.com/medpet/chatbot/internal/messaging"
	"github.com/medpet/chatbot/internal/session"
	"github.com/medpet/chatbot/internal/store"
	"github.com/medpet/chatbot/internal/util"
)

// Messaging backend identifiers.
const (
	backendGraph  = "graph"
	backendTwilio = "twilio"
)

// Config holds environment configuration
type Config struct {
	VerifyToken     string
	APIToken        string
	BusinessPhone   string
	Port            string
	OpenAIKey       string
	SpreadsheetID   string
	CredentialsFile string
	DatabaseURL     string
	SQLitePath      string
	Backend         string
}

// Flags holds command line flag values
type Flags struct {
	addr        *string
	verifyToken *string
	openaiKey   *string
	backend     *string
	dbDSN       *string
	sqlitePath  *string
}

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *flags.sqlitePath != "" {
		lock, err := lockfile.Acquire(filepath.Dir(*flags.sqlitePath))
		if err != nil {
			slog.Error("Failed to acquire data directory lock", "error", err)
			os.Exit(1)
		}
		defer lock.Release()
	}

	sender, err := buildSender(*flags.backend)
	if err != nil {
		slog.Error("Failed to create message sender", "error", err)
		os.Exit(1)
	}

	answerer := buildAnswerer(*flags.openaiKey)
	recorder := buildRecorder(ctx, config, flags)

	handler := bot.NewHandler(session.NewInMemoryStore(), sender, recorder, answerer)

	var apiOpts []api.Option
	if *flags.addr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.addr))
	}
	if *flags.verifyToken != "" {
		apiOpts = append(apiOpts, api.WithVerifyToken(*flags.verifyToken))
	}

	slog.Info("Bootstrapping MedPet chatbot", "backend", *flags.backend)
	server := api.NewServer(handler, apiOpts...)
	if err := server.Run(ctx); err != nil {
		slog.Error("MedPet chatbot failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("MedPet chatbot exited successfully")
}

// initializeLogger sets up structured logging from the environment.
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("DEBUG", false) {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if util.ParseBoolEnv("LOG_JSON", false) {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		VerifyToken:     os.Getenv("WEBHOOK_VERIFY_TOKEN"),
		APIToken:        os.Getenv("API_TOKEN"),
		BusinessPhone:   os.Getenv("BUSINESS_PHONE"),
		Port:            os.Getenv("PORT"),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		SpreadsheetID:   os.Getenv("SPREADSHEET_ID"),
		CredentialsFile: os.Getenv("GOOGLE_CREDENTIALS_FILE"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		SQLitePath:      os.Getenv("SQLITE_PATH"),
		Backend:         os.Getenv("MESSAGING_BACKEND"),
	}
	if config.Backend == "" {
		config.Backend = backendGraph
	}

	slog.Debug("environment variables loaded",
		"WEBHOOK_VERIFY_TOKEN_SET", config.VerifyToken != "",
		"API_TOKEN_SET", config.APIToken != "",
		"BUSINESS_PHONE_SET", config.BusinessPhone != "",
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"SPREADSHEET_ID_SET", config.SpreadsheetID != "",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"SQLITE_PATH_SET", config.SQLitePath != "",
		"MESSAGING_BACKEND", config.Backend)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	addr := ""
	if config.Port != "" {
		addr = ":" + config.Port
	}

	flags := Flags{
		addr:        flag.String("addr", addr, "API server address (overrides $PORT)"),
		verifyToken: flag.String("verify-token", config.VerifyToken, "webhook verification token (overrides $WEBHOOK_VERIFY_TOKEN)"),
		openaiKey:   flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		backend:     flag.String("backend", config.Backend, "messaging backend: graph or twilio (overrides $MESSAGING_BACKEND)"),
		dbDSN:       flag.String("db-dsn", config.DatabaseURL, "Postgres DSN for the appointment ledger (overrides $DATABASE_URL)"),
		sqlitePath:  flag.String("sqlite-path", config.SQLitePath, "SQLite path for the appointment ledger (overrides $SQLITE_PATH)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"addr", *flags.addr,
		"verifyTokenSet", *flags.verifyToken != "",
		"openaiKeySet", *flags.openaiKey != "",
		"backend", *flags.backend,
		"dbDSN_set", *flags.dbDSN != "",
		"sqlitePath", *flags.sqlitePath)

	return flags
}

// buildSender constructs the configured delivery backend.
func buildSender(backend string) (messaging.Sender, error) {
	switch backend {
	case backendTwilio:
		sender, err := messaging.NewTwilioSender()
		if err != nil {
			return nil, err
		}
		return sender, nil
	default:
		sender, err := messaging.NewGraphSender()
		if err != nil {
			return nil, err
		}
		return sender, nil
	}
}

// buildAnswerer constructs the assistant collaborator when a key is present.
// Without it the assistant flow degrades to an empty answer, which the
// handler logs.
func buildAnswerer(openaiKey string) bot.Answerer {
	if openaiKey == "" {
		slog.Warn("OPENAI_API_KEY not set, assistant flow disabled")
		return nil
	}
	client, err := genai.NewClient(genai.WithAPIKey(openaiKey))
	if err != nil {
		slog.Error("Failed to create GenAI client, assistant flow disabled", "error", err)
		return nil
	}
	return client
}

// buildRecorder assembles the appointment recorders: every configured backend
// is fanned out to, and the log recorder always participates so a completed
// booking is never silent.
func buildRecorder(ctx context.Context, config Config, flags Flags) store.Recorder {
	recorders := []store.Recorder{store.NewLogRecorder()}

	if config.SpreadsheetID != "" && config.CredentialsFile != "" {
		sheetsRecorder, err := store.NewSheetsRecorder(ctx,
			store.WithSpreadsheetID(config.SpreadsheetID),
			store.WithCredentialsFile(config.CredentialsFile))
		if err != nil {
			slog.Error("Failed to create Sheets recorder, skipping", "error", err)
		} else {
			recorders = append(recorders, sheetsRecorder)
		}
	}

	if *flags.dbDSN != "" {
		pgRecorder, err := store.NewPostgresRecorder(store.WithDSN(*flags.dbDSN))
		if err != nil {
			slog.Error("Failed to create Postgres recorder, skipping", "error", err)
		} else {
			recorders = append(recorders, pgRecorder)
		}
	}

	if *flags.sqlitePath != "" {
		sqliteRecorder, err := store.NewSQLiteRecorder(store.WithDSN(*flags.sqlitePath))
		if err != nil {
			slog.Error("Failed to create SQLite recorder, skipping", "error", err)
		} else {
			recorders = append(recorders, sqliteRecorder)
		}
	}

	return store.NewMultiRecorder(recorders...)
}
