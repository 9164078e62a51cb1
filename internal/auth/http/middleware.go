package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/identity/internal/auth/domain"
	authService "github.com/allisson/identity/internal/auth/service"
	apperrors "github.com/allisson/identity/internal/errors"
	"github.com/allisson/identity/internal/httputil"
)

const bearerPrefix = "bearer "

// AuthenticationMiddleware validates the Bearer token in the Authorization
// header and stores the principal in the request context.
//
// Unlike refresh, this path checks issuer, audience and expiry. Any failure
// responds 401.
//
// Usage:
//
//	router.GET("/user", AuthenticationMiddleware(validator, logger), handler)
func AuthenticationMiddleware(validator authService.TokenValidator, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			logger.Debug("authentication failed: missing or malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		principal, err := validator.Validate(token)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), principal))

		logger.Debug("authentication successful",
			slog.String("user_id", principal.ID),
			slog.String("user_name", principal.UserName))

		c.Next()
	}
}

// RequireRoles allows the request when the principal holds any of roles.
// It must run after AuthenticationMiddleware.
func RequireRoles(logger *slog.Logger, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c.Request.Context())
		if !ok {
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if !principal.IsInRole(roles...) {
			logger.Debug("authorization failed: missing role",
				slog.String("user_name", principal.UserName),
				slog.Any("required", roles))
			httputil.HandleErrorGin(c, apperrors.ErrForbidden, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}

// bearerToken extracts the token from "Bearer <token>" (scheme is case-insensitive).
func bearerToken(header string) (string, bool) {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

// currentPrincipal returns the principal set by AuthenticationMiddleware.
func currentPrincipal(c *gin.Context) (*authDomain.ClaimsPrincipal, bool) {
	return GetPrincipal(c.Request.Context())
}
