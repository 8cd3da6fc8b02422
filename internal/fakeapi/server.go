// Package fakeapi is an in-memory implementation of the storefront REST backend.
// It serves the endpoints the client consumes under /api so that the command line
// shell and the end to end tests can run without the production service.
package fakeapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/aviravastra/storefront/internal/config"
	"github.com/aviravastra/storefront/internal/logger"
	"github.com/aviravastra/storefront/internal/version"
)

const (
	shutdownTimeout = 10 * time.Second
	handlerTimeout  = 30 * time.Second
)

type Server struct {
	cfg         *config.APIConfig
	environment string
	logger      *slog.Logger
	store       *store
	auth        *AuthService
	router      *chi.Mux
}

// Option customises a Server
type Option func(*serverOptions)

type serverOptions struct {
	now        func() time.Time
	bcryptCost int
	seed       bool
}

// WithClock sets the time source used for tokens and timestamps
func WithClock(now func() time.Time) Option {
	return func(o *serverOptions) { o.now = now }
}

// WithBcryptCost lowers the admin password hashing cost, used by tests
func WithBcryptCost(cost int) Option {
	return func(o *serverOptions) { o.bcryptCost = cost }
}

// WithoutSeed starts with an empty catalog
func WithoutSeed() Option {
	return func(o *serverOptions) { o.seed = false }
}

func NewServer(cfg *config.APIConfig, logger *slog.Logger, opts ...Option) (*Server, error) {
	o := serverOptions{now: time.Now, bcryptCost: bcrypt.DefaultCost, seed: true}
	for _, opt := range opts {
		opt(&o)
	}

	auth, err := NewAuthService(cfg.JWTSecret, cfg.TokenTTL, cfg.AdminEmail, cfg.AdminPassword, o.bcryptCost)
	if err != nil {
		return nil, err
	}
	auth.now = o.now

	s := &Server{
		cfg:         cfg,
		environment: cfg.Environment,
		logger:      logger,
		store:       newStore(o.now),
		auth:        auth,
		router:      chi.NewRouter(),
	}
	if o.seed {
		s.store.seed()
	}

	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	s.registerRoutes()
	return s, nil
}

// Handler exposes the router, mainly for httptest
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("storefront api listening",
			slog.String("environment", s.environment),
			slog.String("addr", addr),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("storefront api shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	return nil
}

func (s *Server) setupMiddleware() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(logger.RequestLogging(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(SecurityHeaders(s.environment))
	s.router.Use(s.RateLimit(s.cfg.RateLimitRPS, s.cfg.RateLimitBurst))

	mw, err := corsMiddleware(s.cfg.Origins())
	if err != nil {
		return err
	}
	if mw != nil {
		s.router.Use(mw.Wrap)
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.router.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.router.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, version.Get())
	})
	s.router.Get("/uploads/{name}", s.serveUploadHandler)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(handlerTimeout))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/google", s.googleAuthHandler)
			r.Post("/admin-login", s.adminLoginHandler)

			r.With(s.RequireUser).Get("/me", s.meHandler)
		})

		r.Get("/products", s.listProductsHandler)
		r.Get("/products/{id}", s.getProductHandler)
		for _, resource := range taxonomyResources {
			r.Get("/"+resource, s.listTermsHandler(resource))
		}

		r.Route("/orders", func(r chi.Router) {
			r.Use(s.RequireUser)

			r.Post("/", s.createOrderHandler)
			r.Get("/my", s.myOrdersHandler)
			r.Get("/{id}", s.getOrderHandler)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.RequireUser)
			r.Use(s.RequireAdmin)

			r.Post("/products", s.createProductHandler)
			r.Put("/products/{id}", s.updateProductHandler)
			r.Delete("/products/{id}", s.deleteProductHandler)

			r.Get("/orders", s.listOrdersHandler)
			r.Put("/orders/{id}/status", s.updateOrderStatusHandler)

			r.Post("/{resource}", s.createTermHandler)
			r.Put("/{resource}/{id}", s.updateTermHandler)
			r.Delete("/{resource}/{id}", s.deleteTermHandler)
		})

		r.Route("/upload", func(r chi.Router) {
			r.Use(s.RequireUser)
			r.Use(s.RequireAdmin)
			r.Use(s.RequestSizeLimit(s.cfg.MaxUploadBytes))

			r.Post("/image", s.uploadImageHandler)
		})
	})
}
