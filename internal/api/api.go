// Package api provides the HTTP surface for the MedPet chatbot.
//
// It exposes the webhook verification and intake endpoints the messaging
// platform calls, plus a health check. Conversation handling is delegated to
// the bot package.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/medpet/chatbot/internal/bot"
	"github.com/medpet/chatbot/internal/models"
)

// Default server configuration constants
const (
	// DefaultAddr is the listen address when none is configured.
	DefaultAddr = ":3000"
	// DefaultReadTimeout bounds how long reading a request may take.
	DefaultReadTimeout = 10 * time.Second
	// DefaultWriteTimeout bounds how long writing a response may take.
	DefaultWriteTimeout = 10 * time.Second
	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second
)

// Opts holds configuration options for the API server.
type Opts struct {
	Addr        string
	VerifyToken string
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithVerifyToken sets the webhook verification token.
func WithVerifyToken(token string) Option {
	return func(o *Opts) { o.VerifyToken = token }
}

// Server hosts the webhook endpoints and delegates events to the bot handler.
type Server struct {
	handler     *bot.Handler
	verifyToken string
	addr        string
	httpServer  *http.Server
}

// NewServer creates the API server, falling back to the WEBHOOK_VERIFY_TOKEN
// and PORT environment variables when options are unset.
func NewServer(handler *bot.Handler, opts ...Option) *Server {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.VerifyToken == "" {
		cfg.VerifyToken = os.Getenv("WEBHOOK_VERIFY_TOKEN")
	}
	if cfg.Addr == "" {
		if port := os.Getenv("PORT"); port != "" {
			cfg.Addr = ":" + port
		} else {
			cfg.Addr = DefaultAddr
		}
	}

	s := &Server{
		handler:     handler,
		verifyToken: cfg.VerifyToken,
		addr:        cfg.Addr,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", s.webhookHandler)
	mux.HandleFunc("/health", s.healthHandler)
	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}
	return s
}

// Run starts the server and blocks until the context is cancelled or the
// listener fails.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("Server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{"status": "healthy"}))
}
