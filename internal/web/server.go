// Package web provides the HTTP server and JSON handlers of the garage.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/garazh/internal/auth"
	"github.com/JonMunkholm/garazh/internal/config"
	"github.com/JonMunkholm/garazh/internal/core"
	"github.com/JonMunkholm/garazh/internal/metrics"
	appmw "github.com/JonMunkholm/garazh/internal/web/middleware"
)

// Server is the HTTP server of the garage application.
type Server struct {
	service *core.Service
	gate    *auth.Gate
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, gate *auth.Gate, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		gate:    gate,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(appmw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(appmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
	s.router.Use(metrics.InstrumentHandler)

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, s.cfg.Rate.Burst)
		s.router.Use(limiter.middleware(s.respondError))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	if s.cfg.Metrics.Enabled {
		s.router.Handle("/metrics", metrics.Handler())
	}

	requireSession := appmw.RequireSession(s.gate, s.respondError)

	s.router.With(requireSession).Get("/invoices/{id}/print", s.handlePrintInvoice)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.Get("/session", s.handleSession)

		r.Group(func(r chi.Router) {
			r.Use(requireSession)

			r.Get("/pages/{page}", s.handlePage)

			// Customers
			r.Get("/customers", s.handleListCustomers)
			r.Post("/customers", s.handleCreateCustomer)
			r.Get("/customers/{id}", s.handleGetCustomer)
			r.Patch("/customers/{id}", s.handleUpdateCustomer)
			r.Delete("/customers/{id}", s.handleDeleteCustomer)
			r.Get("/customers/{id}/history", s.handleCustomerHistory)

			// Vehicles
			r.Get("/vehicles", s.handleListVehicles)
			r.Post("/vehicles", s.handleCreateVehicle)
			r.Get("/vehicles/{id}", s.handleGetVehicle)
			r.Patch("/vehicles/{id}", s.handleUpdateVehicle)
			r.Delete("/vehicles/{id}", s.handleDeleteVehicle)

			// Service types
			r.Get("/service-types", s.handleListServiceTypes)
			r.Post("/service-types", s.handleAddServiceType)
			r.Delete("/service-types/{label}", s.handleRemoveServiceType)

			// Orders
			r.Get("/orders", s.handleListOrders)
			r.Post("/orders", s.handleCreateOrder)
			r.Get("/orders/{id}", s.handleGetOrder)
			r.Patch("/orders/{id}", s.handleUpdateOrder)
			r.Delete("/orders/{id}", s.handleDeleteOrder)
			r.Post("/orders/{id}/complete", s.handleCompleteOrder)
			r.Post("/orders/{id}/toggle-paid", s.handleTogglePaid)
			r.Get("/daily-log", s.handleDailyLog)

			// Reports
			r.Get("/invoices", s.handleInvoices)
			r.Get("/dashboard", s.handleDashboard)

			// Backup and reset
			r.Get("/export", s.handleExport)
			r.Post("/import", s.handleImport)
			r.Post("/reset", s.handleReset)
		})
	})
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP requests. It returns http.ErrServerClosed
// after Shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr, "backend", s.service.BackendName())
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": s.service.BackendName(),
	})
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				// The print page carries its own inline styles and print button.
				h.Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			}
			next.ServeHTTP(w, r)
		})
	}
}
