package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shDavlatbek/bmsb/internal/model"
	"github.com/shDavlatbek/bmsb/internal/scope"
	"github.com/shDavlatbek/bmsb/pkg/logger"
	"github.com/shDavlatbek/bmsb/prometheus"
)

// SchoolHeader is the inbound context header naming the tenant's domain key
const SchoolHeader = "School"

const schoolContextKey = "school"

// TenantResolver maps an inbound request to a School tenant, either from
// the School header or from the host's subdomain. Resolution happens once
// per request with no caching.
type TenantResolver struct {
	db          *gorm.DB
	exemptPaths []string
	reserved    map[string]struct{}
}

// NewTenantResolver creates a resolver with the default exempt paths and
// reserved subdomain labels
func NewTenantResolver(db *gorm.DB) *TenantResolver {
	return &TenantResolver{
		db: db,
		exemptPaths: []string{
			"/admin",
			"/api/check-school",
			"/auth",
			"/health",
			"/metrics",
		},
		reserved: map[string]struct{}{
			"":      {},
			"www":   {},
			"cdn":   {},
			"api":   {},
			"admin": {},
		},
	}
}

// Key derives the tenant lookup key from the header value and host string.
// The header wins when present; otherwise the leading host label is used
// unless it is reserved or the host has no subdomain. An empty result means
// no tenant context.
func (r *TenantResolver) Key(headerValue, host string) string {
	if key := strings.ToLower(strings.TrimSpace(headerValue)); key != "" {
		return key
	}

	// Strip the port before looking at labels
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}

	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return ""
	}
	// A two-label host only has a subdomain when served off localhost
	if len(labels) == 2 && labels[1] != "localhost" {
		return ""
	}

	sub := strings.ToLower(labels[0])
	if _, ok := r.reserved[sub]; ok {
		return ""
	}
	return sub
}

// Lookup loads an active School by its domain key
func (r *TenantResolver) Lookup(key string) (*model.School, error) {
	var school model.School
	if err := r.db.Where("domain = ?", key).First(&school).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, scope.ErrTenantNotFound
		}
		return nil, err
	}
	if !school.IsActive {
		return nil, scope.ErrTenantInactive
	}
	return &school, nil
}

// Middleware resolves the tenant for every non-exempt request. Resolution
// failures are fatal for the request; a missing key just means global mode.
func (r *TenantResolver) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			for _, prefix := range r.exemptPaths {
				if strings.HasPrefix(path, prefix) {
					return next(c)
				}
			}

			log := logger.FromContext(c)

			key := r.Key(c.Request().Header.Get(SchoolHeader), c.Request().Host)
			if key == "" {
				prometheus.RecordResolution("none")
				return next(c)
			}

			school, err := r.Lookup(key)
			if err != nil {
				switch {
				case errors.Is(err, scope.ErrTenantNotFound):
					log.Warn("School not found", zap.String("domain", key))
					prometheus.RecordResolution("not_found")
					return c.JSON(http.StatusNotFound, echo.Map{"error": "school not found"})
				case errors.Is(err, scope.ErrTenantInactive):
					log.Warn("School is not active", zap.String("domain", key))
					prometheus.RecordResolution("inactive")
					return c.JSON(http.StatusNotFound, echo.Map{"error": "school is not active"})
				default:
					log.Error("School lookup failed", zap.String("domain", key), zap.Error(err))
					return c.JSON(http.StatusInternalServerError, echo.Map{"error": "school lookup failed"})
				}
			}

			prometheus.RecordResolution("resolved")
			c.Set(schoolContextKey, school)
			return next(c)
		}
	}
}

// SchoolFromContext returns the resolved school, nil in global mode
func SchoolFromContext(c echo.Context) *model.School {
	if school, ok := c.Get(schoolContextKey).(*model.School); ok {
		return school
	}
	return nil
}
