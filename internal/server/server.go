package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/dukerupert/leadline/internal/config"
	"github.com/dukerupert/leadline/internal/content"
	"github.com/dukerupert/leadline/internal/email"
	"github.com/dukerupert/leadline/internal/handler"
	"github.com/dukerupert/leadline/internal/identity"
	"github.com/dukerupert/leadline/internal/metrics"
	"github.com/dukerupert/leadline/internal/middleware"
	"github.com/dukerupert/leadline/internal/store"
	ws "github.com/dukerupert/leadline/internal/websocket"
	"github.com/dukerupert/leadline/web"
)

const (
	formRateLimit  = 10
	formRateWindow = time.Minute
)

type Server struct {
	cfg           *config.Config
	hub           *ws.Hub
	provider      *identity.Provider
	sessionStore  *store.SessionStore
	adminStore    *store.AdminStore
	rateLimiter   *middleware.RateLimiter
	metrics       *metrics.Metrics
	siteH         *handler.SiteHandler
	authH         *handler.AuthHandler
	dashboardH    *handler.DashboardHandler
	originPattern []string
	logger        *slog.Logger
}

func New(db *sql.DB, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	templates, err := web.Templates(handler.TemplateFuncs(cfg.Location))
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	privacy, err := content.PrivacyPolicy()
	if err != nil {
		return nil, fmt.Errorf("render privacy policy: %w", err)
	}

	hub := ws.NewHub(logger.With("component", "websocket"))
	m := metrics.New()

	consultationStore := store.NewConsultationStore(db)
	adminStore := store.NewAdminStore(db)
	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	provider := identity.NewProvider(userStore, sessionStore, cfg.SessionTTL)

	renderer := handler.NewRenderer(templates, cfg.ContactPhone, privacy, logger.With("component", "render"))

	var origins []string
	if u, err := url.Parse(cfg.BaseURL); err == nil && u.Host != "" {
		origins = []string{u.Host}
	}

	siteH := handler.NewSiteHandler(consultationStore, hub, m, renderer, logger.With("component", "site"))
	switch {
	case !cfg.Notify():
	case cfg.ResendAPIKey != "":
		siteH.SetNotifier(email.NewResend(cfg.ResendAPIKey, cfg.NotifyFrom, cfg.BaseURL, cfg.NotifyTo, cfg.Location))
	default:
		siteH.SetNotifier(email.NewPostmark(cfg.PostmarkToken, cfg.NotifyFrom, cfg.BaseURL, cfg.NotifyTo,
			email.WithLocation(cfg.Location)))
	}

	authH := handler.NewAuthHandler(provider, adminStore, m, renderer, cfg.SecureCookies, logger.With("component", "auth"))
	authH.SetLiveClients(hub)

	return &Server{
		cfg:           cfg,
		hub:           hub,
		provider:      provider,
		sessionStore:  sessionStore,
		adminStore:    adminStore,
		rateLimiter:   middleware.NewRateLimiter(),
		metrics:       m,
		siteH:         siteH,
		authH:         authH,
		dashboardH:    handler.NewDashboardHandler(consultationStore, hub, m, renderer, cfg.Location, logger.With("component", "dashboard")),
		originPattern: origins,
		logger:        logger,
	}, nil
}

// Hub returns the websocket hub so it can be closed on shutdown.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// SeedAdmin creates (or resets the password of) a user and allow-lists it.
// Running it again with the same values changes nothing.
func (s *Server) SeedAdmin(ctx context.Context, email, password string) error {
	user, err := s.provider.Register(ctx, email, password)
	if err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	if err := s.adminStore.Add(ctx, user.Email); err != nil {
		return fmt.Errorf("seed admin allow-list: %w", err)
	}
	s.logger.Info("admin seeded", "email", user.Email)
	return nil
}

// Wait blocks until background work started by requests is done.
func (s *Server) Wait() {
	s.siteH.Wait()
}

// Cleanup deletes expired sessions and stale rate-limit windows.
func (s *Server) Cleanup(ctx context.Context) {
	n, err := s.sessionStore.DeleteExpired(ctx)
	if err != nil {
		s.logger.Error("cleanup expired sessions", "error", err)
	} else if n > 0 {
		s.logger.Info("cleaned up expired sessions", "count", n)
	}
	if removed := s.rateLimiter.Cleanup(); removed > 0 {
		s.logger.Debug("cleaned up rate limit windows", "count", removed)
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /{$}", s.siteH.Home)
	mux.HandleFunc("GET /privacy", s.siteH.Privacy)
	mux.Handle("POST /consultations", s.rateLimited(s.siteH.Submit))
	mux.Handle("POST /api/consultations", s.rateLimited(s.siteH.SubmitJSON))
	mux.HandleFunc("GET /health", s.siteH.Health)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.Handle("GET /static/", web.Static())

	// Login
	mux.HandleFunc("GET /admin/login", s.authH.LoginPage)
	mux.Handle("POST /admin/login", s.rateLimited(s.authH.Login))
	mux.HandleFunc("POST /admin/logout", s.authH.Logout)

	// Admin pages
	page := middleware.RequireAdmin(s.provider, s.adminStore, s.logger.With("component", "gate"))
	mux.Handle("GET /admin", page(http.HandlerFunc(s.dashboardH.Index)))
	mux.Handle("GET /admin/{$}", page(http.HandlerFunc(s.dashboardH.Index)))
	mux.Handle("GET /admin/dashboard", page(http.HandlerFunc(s.dashboardH.Page)))
	mux.Handle("POST /admin/consultations/{id}/status", page(http.HandlerFunc(s.dashboardH.UpdateStatus)))
	mux.Handle("POST /admin/consultations/{id}/delete", page(http.HandlerFunc(s.dashboardH.Delete)))
	mux.Handle("GET /admin/export", page(http.HandlerFunc(s.dashboardH.Export)))

	// Admin API and live updates
	api := middleware.RequireAdminAPI(s.provider, s.adminStore, s.logger.With("component", "gate"))
	mux.Handle("GET /admin/api/consultations", api(http.HandlerFunc(s.dashboardH.APIList)))
	mux.Handle("PUT /admin/api/consultations/{id}/status", api(http.HandlerFunc(s.dashboardH.APIUpdateStatus)))
	mux.Handle("DELETE /admin/api/consultations/{id}", api(http.HandlerFunc(s.dashboardH.APIDelete)))
	mux.Handle("GET /admin/ws", api(ws.Handler(s.hub, s.logger.With("component", "websocket"), s.originPattern)))

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.RequestLogger(s.logger.With("component", "http")),
		middleware.Recover(s.logger.With("component", "http")),
		middleware.SecurityHeaders,
		middleware.CSRF(s.cfg.CSRFKey, s.cfg.SecureCookies, s.originPattern, s.logger.With("component", "csrf")),
		middleware.Metrics(s.metrics),
	)
}

func (s *Server) rateLimited(h http.HandlerFunc) http.Handler {
	rl := middleware.RateLimit(s.rateLimiter, middleware.RouteAndIP, formRateLimit, formRateWindow, s.logger.With("component", "ratelimit"))
	return rl(h)
}
