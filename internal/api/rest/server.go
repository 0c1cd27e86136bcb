// Package rest exposes the numbering engine over HTTP.
package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/fieldtel/number-provisioning-backend/internal/infrastructure/config"
	"github.com/fieldtel/number-provisioning-backend/internal/service/provisioning"
)

// Server hosts the provisioning API.
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	handler *Handler
	httpSrv *http.Server
	limiter *rate.Limiter
}

// NewServer wires routes and middleware around the provisioning service.
// metricsHandler serves GET /metrics and may be nil to disable the endpoint.
func NewServer(cfg *config.Config, logger *slog.Logger, svc *provisioning.Service, metricsHandler http.Handler) *Server {
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		handler: NewHandler(cfg, logger, svc),
		limiter: rate.NewLimiter(
			rate.Limit(cfg.Server.RateLimit.RequestsPerSecond),
			cfg.Server.RateLimit.BurstSize,
		),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/numbers/validate", s.handler.ValidateRecords)
	mux.HandleFunc("POST /api/v1/numbers/generate", s.handler.GenerateNumbers)
	mux.HandleFunc("POST /api/v1/numbers/groups", s.handler.GroupContacts)
	mux.HandleFunc("GET /api/v1/numbers/summary", s.handler.ProvisionedSummary)
	mux.HandleFunc("GET /health", s.handler.Health)
	mux.HandleFunc("/", s.handler.NotFound)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.middleware(mux),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

// middleware applies the outer chain: recovery first so it wraps everything,
// then request ID, logging, and rate limiting.
func (s *Server) middleware(next http.Handler) http.Handler {
	h := rateLimitMiddleware(s.limiter)(next)
	h = loggingMiddleware(h)
	h = requestIDMiddleware(h)
	return recoveryMiddleware(s.logger)(h)
}

// Start blocks serving HTTP until the listener closes.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Server.ShutdownTimeout)
	defer cancel()
	return s.httpSrv.Shutdown(ctx)
}

// Routes exposes the full handler chain for tests.
func (s *Server) Routes() http.Handler { return s.httpSrv.Handler }
