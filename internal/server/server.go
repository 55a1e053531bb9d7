// Package server is the stub platform backend: the endpoint families the
// console consumes, served over a seeded in-memory dataset. It exists for
// local development (`adminctl stub serve`) and for the client integration
// tests; it is a development double, not the production platform.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dta-platform/adminctl/internal/server/middleware"
	"github.com/dta-platform/adminctl/internal/service"
)

// Config holds the stub server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	LoginRateLimit  int // login attempts per IP per minute
}

// DefaultConfig returns development defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "127.0.0.1",
		Port:            8080,
		ShutdownTimeout: 10 * time.Second,
		CORSOrigins:     []string{"*"},
		LoginRateLimit:  30,
	}
}

// Server wires the router, dataset, auth service, and push hub.
type Server struct {
	cfg        Config
	router     chi.Router
	data       *Dataset
	authSvc    *service.AuthService
	hub        *hub
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a Server over the given dataset, ready to listen.
func New(cfg Config, data *Dataset, authSvc *service.AuthService, logger *slog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		data:    data,
		authSvc: authSvc,
		hub:     newHub(logger),
		logger:  logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealthz)

	// Public routes: login and member signup.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(s.cfg.LoginRateLimit))
		r.Post("/api/admin/login", s.handleLogin)
	})
	r.Post("/api/auth/signup", s.handleSignup)

	// Push channel. Auth happens inside the handler because browser
	// WebSocket clients pass the token as a query parameter.
	r.Get("/ws", s.handleWS)

	// Everything else requires a valid session token.
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Authenticate(s.authSvc))

		r.Get("/profile", s.handleProfile)
		r.Put("/profile", s.handleUpdateProfile)
		r.Get("/dashboard-stats", s.handleDashboardStats)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.handleListUsers)
			r.Get("/pending-confirmations", s.handlePendingConfirmations)
			r.Get("/{userId}", s.handleGetUser)
			r.Delete("/{userId}", s.handleDeleteUser)
			r.Put("/{userId}/status", s.handleUserStatus)
			r.Post("/{userId}/reset-password", s.handleResetPassword)
			r.Post("/{userId}/confirm-email", s.handleConfirmEmail)
			r.Post("/{userId}/resend-confirmation", s.handleResendConfirmation)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", s.handleListTasks)
			r.Post("/", s.handleCreateTask)
			r.Post("/{taskId}/archive", s.handleArchiveTask)
			r.Post("/{taskId}/unarchive", s.handleUnarchiveTask)
			r.Delete("/{taskId}", s.handleDeleteTask)
		})

		r.Route("/withdrawals", func(r chi.Router) {
			r.Get("/", s.handleListWithdrawals)
			r.Post("/{withdrawalId}/approve", s.withdrawalTransition("approved", "Withdrawal approved successfully"))
			r.Post("/{withdrawalId}/decline", s.withdrawalTransition("declined", "Withdrawal declined successfully"))
			r.Post("/{withdrawalId}/paid", s.withdrawalTransition("paid", "Withdrawal marked as paid"))
		})

		r.Get("/referrals", s.handleListReferrals)

		r.Route("/upgrades", func(r chi.Router) {
			r.Get("/", s.handleListUpgrades)
			r.Post("/{upgradeId}/approve", s.upgradeTransition("approved", "Upgrade approved successfully"))
			r.Post("/{upgradeId}/reject", s.upgradeTransition("rejected", "Upgrade rejected successfully"))
		})

		r.Get("/admins", s.handleListAdmins)
		r.Post("/invite", s.handleInviteAdmin)
		r.Get("/emails", s.handleListEmails)
		r.Post("/notifications", s.handleBroadcast)
	})

	s.router = r
}

// handleHealthz is a liveness probe. Returns 200 if the process is running.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// ListenAndServe starts the HTTP server and blocks until a SIGINT or
// SIGTERM is received, then drains in-flight requests and disconnects the
// push clients.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("stub backend starting", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.hub.closeAll()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("stub backend stopped")
	return nil
}

// Router returns the underlying Chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
