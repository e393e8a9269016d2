package webhook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/mattjoyce/sensorgate/internal/auth"
	"github.com/mattjoyce/sensorgate/internal/log"
	"github.com/mattjoyce/sensorgate/internal/payload"
)

var corsMethods = []string{http.MethodPost, http.MethodGet, http.MethodOptions}
var corsHeaders = []string{"Content-Type", SignatureHeader}

// Server represents the ingest HTTP server.
type Server struct {
	config    Config
	verifier  Verifier
	logger    *slog.Logger
	clock     clock.Clock
	startedAt time.Time
	server    *http.Server
	handler   http.Handler
}

// Option customizes a Server.
type Option func(*Server)

// WithClock replaces the wall clock used for uptime reporting.
func WithClock(c clock.Clock) Option {
	return func(s *Server) {
		s.clock = c
	}
}

// New creates a new ingest server instance.
func New(config Config, verifier Verifier, logger *slog.Logger, opts ...Option) *Server {
	if config.MaxBodySize <= 0 {
		config.MaxBodySize = DefaultMaxBodySize
	}

	s := &Server{
		config:   config,
		verifier: verifier,
		logger:   logger,
		clock:    clock.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startedAt = s.clock.Now()
	s.handler = s.setupRoutes()
	return s
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the ingest HTTP server (blocking).
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("ingest server listen failed: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the server on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.server = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("ingest server starting", "listen", ln.Addr().String(), "max_body_size", s.config.MaxBodySize)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("ingest server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("ingest server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("ingest server error: %w", err)
	}
}

// setupRoutes configures the HTTP router.
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:       []string{"*"},
		AllowedMethods:       corsMethods,
		AllowedHeaders:       corsHeaders,
		OptionsSuccessStatus: http.StatusNoContent,
	}).Handler)

	r.Get("/", s.handleHome)
	r.Get("/healthz", s.handleHealthz)

	r.Get(InsecurePath, s.handleStatus(InsecurePath))
	r.Post(InsecurePath, s.handleInsecure)
	r.Options(InsecurePath, s.handlePreflight)

	r.Get(SecurePath, s.handleStatus(SecurePath))
	r.Post(SecurePath, s.handleSecure)
	r.Options(SecurePath, s.handlePreflight)

	return r
}

// loggingMiddleware logs HTTP requests (excludes payloads and signatures).
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes_in", r.ContentLength,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
		)
	})
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, homeText)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthzResponse{
		Status:        "ok",
		UptimeSeconds: int64(s.clock.Since(s.startedAt).Seconds()),
	})
}

func (s *Server) handleStatus(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.respondJSON(w, http.StatusOK, StatusResponse{Status: statusOK, Msg: "GET on " + path})
	}
}

// handlePreflight answers OPTIONS that rs/cors did not treat as a browser
// preflight (no Origin or no Access-Control-Request-Method).
func (s *Server) handlePreflight(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Headers", "Content-Type, "+SignatureHeader)
	h.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInsecure(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	s.respondOutcome(w, r, s.verifier.ParseUnauthenticated(body), statusReceived)
}

func (s *Server) handleSecure(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	s.respondOutcome(w, r, s.verifier.Authenticate(body, r.Header.Get(SignatureHeader)), statusVerified)
}

// readBody reads the request body within the size limit. It writes the error
// response itself and returns false when the handler should stop.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.requestLogger(r).Warn("payload too large", "path", r.URL.Path, "limit", tooLarge.Limit)
			s.respondError(w, http.StatusRequestEntityTooLarge, "payload too large")
			return nil, false
		}
		s.respondOutcome(w, r, auth.Outcome{
			Kind: auth.InternalError,
			Err:  fmt.Errorf("failed to read request body: %w", err),
		}, "")
		return nil, false
	}
	return body, true
}

// respondOutcome translates an outcome into a status code and JSON body.
func (s *Server) respondOutcome(w http.ResponseWriter, r *http.Request, out auth.Outcome, acceptedStatus string) {
	logger := s.requestLogger(r).With("path", r.URL.Path, "outcome", out.Kind.String())

	switch out.Kind {
	case auth.Accepted:
		receipt := uuid.NewString()
		w.Header().Set(ReceiptHeader, receipt)
		logger.Info("payload accepted", "receipt_id", receipt)
		s.respondJSON(w, out.Status(), DataResponse{Status: acceptedStatus, Data: out.Payload})
	case auth.MissingSignature:
		logger.Warn("request rejected: signature header missing", "header", SignatureHeader)
		s.respondError(w, out.Status(), auth.ErrMissingSignature.Error())
	case auth.InvalidSignature:
		logger.Warn("request rejected: signature mismatch")
		s.respondError(w, out.Status(), auth.ErrInvalidSignature.Error())
	case auth.MalformedPayload:
		logger.Warn("request rejected: malformed payload", "error", out.Err)
		s.respondError(w, out.Status(), auth.ErrMalformedPayload.Error())
	default:
		logger.Error("failed to process payload", "error", out.Err)
		msg := http.StatusText(http.StatusInternalServerError)
		if s.config.ExposeErrors && out.Err != nil {
			msg = out.Err.Error()
		}
		s.respondError(w, out.Status(), msg)
	}
}

func (s *Server) requestLogger(r *http.Request) *slog.Logger {
	return log.WithRequest(s.logger, middleware.GetReqID(r.Context()))
}

// respondJSON sends a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	body, err := payload.Marshal(data)
	if err != nil {
		s.logger.Error("failed to encode response", "error", err)
		status = http.StatusInternalServerError
		body = []byte(`{"status":"error","message":"failed to encode response"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// respondError sends a JSON error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, MessageResponse{Status: statusError, Message: message})
}
