package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/shDavlatbek/bmsb/internal/scope"
	"github.com/shDavlatbek/bmsb/pkg/jwtutil"
	"github.com/shDavlatbek/bmsb/pkg/logger"
	"github.com/shDavlatbek/bmsb/prometheus"
)

const principalContextKey = "principal"

// Authenticate validates the Authorization header when present and stores
// the resulting principal in the context. Requests without a token proceed
// as anonymous; read endpoints are public and only the inactive-content
// override cares who is asking.
func Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return next(c)
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			prometheus.RecordAuthError("invalid_auth_format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Warn("Invalid JWT token", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		pr := scope.Principal{
			UserID:    claims.UserID,
			Email:     claims.Email,
			SchoolID:  claims.SchoolID,
			Staff:     true,
			Superuser: claims.Superuser,
		}
		c.Set(principalContextKey, pr)

		log.Debug("Request authenticated",
			zap.Uint("user_id", pr.UserID),
			zap.String("email", pr.Email),
			zap.Bool("superuser", pr.Superuser))

		return next(c)
	}
}

// RequireAuth rejects anonymous requests. Must run after Authenticate.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		pr := PrincipalFromContext(c)
		if pr.Anonymous() {
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
		return next(c)
	}
}

// RequireSuperuser rejects everything below superuser. Must run after
// Authenticate.
func RequireSuperuser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		pr := PrincipalFromContext(c)
		if !pr.Superuser {
			prometheus.RecordAuthError("superuser_required")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "superuser required"})
		}
		return next(c)
	}
}

// PrincipalFromContext returns the acting principal; the zero value is an
// anonymous visitor
func PrincipalFromContext(c echo.Context) scope.Principal {
	if pr, ok := c.Get(principalContextKey).(scope.Principal); ok {
		return pr
	}
	return scope.Principal{}
}
