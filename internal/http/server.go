// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/identity/internal/auth/http"
	authService "github.com/allisson/identity/internal/auth/service"
	"github.com/allisson/identity/internal/config"
	identityDomain "github.com/allisson/identity/internal/identity/domain"
	"github.com/allisson/identity/internal/metrics"
	roleHTTP "github.com/allisson/identity/internal/role/http"
	userHTTP "github.com/allisson/identity/internal/user/http"
)

const readinessTimeout = 2 * time.Second

// Server represents the HTTP server.
type Server struct {
	db     *sql.DB
	server *http.Server
	router *gin.Engine
	logger *slog.Logger

	// stops the rate limiter cleanup goroutines
	cancel context.CancelFunc
}

// NewServer creates a new HTTP server. Routes are registered by SetupRouter.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         net.JoinHostPort(host, strconv.Itoa(port)),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Handlers groups the HTTP handlers mounted by SetupRouter.
type Handlers struct {
	Auth *authHTTP.AuthHandler
	User *userHTTP.UserHandler
	Role *roleHTTP.RoleHandler
}

// SetupRouter configures the gin engine with middleware and all routes.
//
// Anonymous /auth endpoints are limited per client IP. Everything else
// requires a valid bearer token; writes on /user and all of /role also require
// the Admin role. metricsProvider may be nil when metrics are disabled.
func (s *Server) SetupRouter(
	cfg *config.Config,
	handlers Handlers,
	validator authService.TokenValidator,
	metricsProvider *metrics.Provider,
) {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(
			metricsProvider.MeterProvider(),
			cfg.MetricsNamespace,
			"/health",
			"/ready",
		))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	authn := authHTTP.AuthenticationMiddleware(validator, s.logger)
	adminOnly := authHTTP.RequireRoles(s.logger, identityDomain.RoleAdmin)

	authenticated := []gin.HandlerFunc{authn}
	if cfg.RateLimitEnabled {
		authenticated = append(authenticated, authHTTP.RateLimitMiddleware(
			ctx,
			cfg.RateLimitRequestsPerSec,
			cfg.RateLimitBurst,
			s.logger,
		))
	}
	protected := func(chain ...gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, authenticated...), chain...)
	}

	auth := router.Group("/auth")
	{
		anonymous := auth.Group("")
		if cfg.RateLimitLoginEnabled {
			anonymous.Use(authHTTP.LoginRateLimitMiddleware(
				ctx,
				cfg.RateLimitLoginRequestsPerSec,
				cfg.RateLimitLoginBurst,
				s.logger,
			))
		}
		anonymous.POST("/register", handlers.Auth.RegisterHandler)
		anonymous.POST("/login", handlers.Auth.LoginHandler)
		anonymous.POST("/refresh", handlers.Auth.RefreshHandler)
		anonymous.POST("/confirm-email", handlers.Auth.ConfirmEmailHandler)
		anonymous.POST("/send-reset-link", handlers.Auth.SendResetLinkHandler)
		anonymous.POST("/reset-password", handlers.Auth.ResetPasswordHandler)

		auth.POST("/change-password", protected(handlers.Auth.ChangePasswordHandler)...)
	}

	users := router.Group("/user", protected()...)
	{
		users.GET("", handlers.User.ListHandler)
		users.GET("/:id", handlers.User.GetHandler)
		users.GET("/:id/roles", handlers.User.GetRolesHandler)

		users.POST("", adminOnly, handlers.User.CreateHandler)
		users.PUT("/:id", adminOnly, handlers.User.UpdateHandler)
		users.DELETE("/:id", adminOnly, handlers.User.DeleteHandler)
		users.POST("/:id/roles", adminOnly, handlers.User.AddRolesHandler)
		users.DELETE("/:id/roles", adminOnly, handlers.User.RemoveRolesHandler)
	}

	roles := router.Group("/role", protected(adminOnly)...)
	{
		roles.GET("", handlers.Role.ListHandler)
		roles.POST("", handlers.Role.CreateHandler)
		roles.GET("/:id", handlers.Role.GetHandler)
		roles.PUT("/:id", handlers.Role.UpdateHandler)
		roles.DELETE("/:id", handlers.Role.DeleteHandler)
	}

	s.router = router
	s.server.Handler = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router is not configured")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	if s.cancel != nil {
		s.cancel()
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the database answers a ping.
func (s *Server) readinessHandler(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn("readiness check failed", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": "ok"},
	})
}
