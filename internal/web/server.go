// Package web provides the HTTP server and handlers for the occupancy
// analyzer: upload logs, choose filters, view and export distinct-user counts.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/usercount/internal/config"
	"github.com/JonMunkholm/usercount/internal/core"
	"github.com/JonMunkholm/usercount/internal/metrics"
	"github.com/JonMunkholm/usercount/internal/session"
	appmw "github.com/JonMunkholm/usercount/internal/web/middleware"
)

// errRateLimited is reported when a client exceeds its request budget.
var errRateLimited = errors.New("rate limit exceeded")

// Server is the HTTP server of the analyzer.
type Server struct {
	cfg      *config.Config
	analyzer *core.Analyzer
	sessions *session.Store
	validate *validator.Validate
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a Server. Routes and middleware are set up immediately.
func NewServer(cfg *config.Config, analyzer *core.Analyzer, sessions *session.Store) *Server {
	s := &Server{
		cfg:      cfg,
		analyzer: analyzer,
		sessions: sessions,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		router:   chi.NewRouter(),
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

	if s.cfg.Rate.Enabled {
		s.router.Use(s.rateLimit("global", s.cfg.Rate.RequestsPerMinute))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	if s.cfg.Metrics.Enabled {
		s.router.Handle(s.cfg.Metrics.Path, promhttp.Handler())
	}

	s.router.Group(func(r chi.Router) {
		r.Use(appmw.Session(s.sessions, appmw.SessionCookie{
			Name:   s.cfg.Session.CookieName,
			Secure: s.cfg.Session.CookieSecure,
		}))

		// Pages
		r.Get("/", s.handleDashboard)
		r.With(s.uploadLimit()).Post("/upload", s.handleUpload)
		r.Post("/reset", s.handleReset)
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/export/{target}", s.handleExport)

		// API routes
		r.Route("/api", func(r chi.Router) {
			if origins := s.cfg.Security.CORSOrigins; len(origins) > 0 {
				r.Use(cors.Handler(cors.Options{
					AllowedOrigins:   origins,
					AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
					AllowedHeaders:   []string{"Accept", "Content-Type"},
					ExposedHeaders:   []string{"Content-Disposition"},
					AllowCredentials: true,
					MaxAge:           300,
				}))
			}

			r.Get("/files", s.handleListFiles)
			r.With(s.uploadLimit()).Post("/files", s.handleAddFiles)
			r.Delete("/files", s.handleDeleteFiles)
			r.Get("/files/{fileID}/dimensions", s.handleFileDimensions)

			r.Post("/analyze", s.handleAPIAnalyze)
			r.Get("/results/{target}", s.handleResult)
			r.Get("/results/{target}/export", s.handleResultExport)
		})
	})
}

// rateLimit limits requests per client IP per minute.
func (s *Server) rateLimit(name string, perMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.RecordRateLimitHit(name)
			s.respondError(w, r, errRateLimited, http.StatusTooManyRequests)
		}),
	)
}

// uploadLimit is the tighter limit for requests that parse files.
func (s *Server) uploadLimit() func(http.Handler) http.Handler {
	if !s.cfg.Rate.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return s.rateLimit("upload", s.cfg.Rate.UploadLimit)
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen on %s: %w", s.server.Addr, err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// csp restricts resource loading to the page itself; styles are inline.
const csp = "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; form-action 'self'; frame-ancestors 'none'"

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Prevent MIME type sniffing
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Prevent clickjacking
			w.Header().Set("X-Frame-Options", "DENY")

			if enableCSP {
				w.Header().Set("Content-Security-Policy", csp)
			}

			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := struct {
		Status   string                  `json:"status"`
		Sessions int                     `json:"sessions"`
		Loads    *core.LoadLimiterStatus `json:"loads,omitempty"`
	}{Status: "ok", Sessions: s.sessions.Len()}

	if l := s.analyzer.Limiter(); l != nil {
		st := l.Status()
		status.Loads = &st
	}
	writeJSON(w, r, http.StatusOK, status)
}
