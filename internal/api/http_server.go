package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"leadtracker/internal/config"
	"leadtracker/internal/domain"

	"github.com/rs/zerolog"
)

// HTTPServer serves the registration form, the lead views and the JSON endpoints.
type HTTPServer struct {
	cfg       *config.Config
	leads     domain.LeadService
	limiter   domain.SubmissionLimiter
	flashes   *flashStore
	templates *templateSet
	logger    *zerolog.Logger
	server    *http.Server
}

// NewHTTPServer wires routes and middleware. limiter may be nil to disable submission limits.
func NewHTTPServer(cfg *config.Config, leads domain.LeadService, limiter domain.SubmissionLimiter, logger *zerolog.Logger) (*HTTPServer, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}

	srv := &HTTPServer{
		cfg:       cfg,
		leads:     leads,
		limiter:   limiter,
		flashes:   newFlashStore(cfg.App.SecretKey),
		templates: templates,
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", srv.handleIndex)
	mux.HandleFunc("GET /leads", srv.handleLeads)
	mux.HandleFunc("GET /leads/export.xlsx", srv.handleExport)
	mux.HandleFunc("POST /add_lead", srv.handleAddLead)
	mux.HandleFunc("GET /api/leads", srv.handleAPILeads)
	mux.HandleFunc("GET /edit_lead/{id}", srv.handleEditLead)
	mux.HandleFunc("POST /edit_lead/{id}", srv.handleUpdateLead)
	mux.HandleFunc("GET /delete_lead/{id}", srv.handleDeleteLead)
	mux.HandleFunc("GET /health", srv.handleHealth)

	handler := requestIDMiddleware(loggingMiddleware(logger, recoverMiddleware(logger, mux)))

	srv.server = &http.Server{
		Addr:              net.JoinHostPort(cfg.HTTP.Host, strconv.Itoa(cfg.HTTP.Port)),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		// retries may hold a request for max_retries x retry_delay
		WriteTimeout: 60 * time.Second,
	}

	return srv, nil
}

// Handler exposes the routed handler, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
