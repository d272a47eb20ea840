// Package httpapi is the presentation-facing transport: a JSON HTTP surface
// over the auth, validation, and record services. Handlers translate service
// results and violation lists into responses; no business rules live here.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/insuredesk/policykeeper/internal/logging"
	"github.com/insuredesk/policykeeper/internal/server/metrics"
	"github.com/insuredesk/policykeeper/internal/server/policies"
	"github.com/insuredesk/policykeeper/internal/server/users"
)

// Server hosts the HTTP API.
type Server struct {
	address   string
	logger    logging.Logger
	users     *users.Service
	policies  *policies.Service
	metrics   *metrics.Metrics
	jwtSecret []byte
}

// NewServer wires the services into an HTTP server bound to address.
func NewServer(address string, l logging.Logger, us *users.Service, ps *policies.Service, m *metrics.Metrics, secretKey string) *Server {
	return &Server{
		address:   address,
		logger:    l.With("module", "httpapi"),
		users:     us,
		policies:  ps,
		metrics:   m,
		jwtSecret: []byte(secretKey),
	}
}

// Router builds the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", s.handlePing)
		r.Get("/policy-types", s.handlePolicyTypes)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register", s.handleRegister)
		r.Post("/policies/validate", s.handleValidate)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/policies", s.handleSavePolicy)
			r.Get("/policies/{id}", s.handleGetPolicy)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}
