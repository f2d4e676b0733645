package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shDavlatbek/bmsb/internal/apierror"
	"github.com/shDavlatbek/bmsb/internal/model"
	"github.com/shDavlatbek/bmsb/pkg/jwtutil"
	"github.com/shDavlatbek/bmsb/pkg/logger"
	"github.com/shDavlatbek/bmsb/prometheus"
)

// AuthHandler serves administrator authentication
type AuthHandler struct {
	db *gorm.DB
}

// NewAuthHandler creates the auth handler
func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

// Login authenticates an administrator and issues a JWT carrying the
// school binding. The binding in the token is whatever the account has;
// clients cannot pick a school at login time.
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		env := apierror.FromValidation(http.StatusBadRequest, err)
		return c.JSON(env.StatusCode, env)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		log.Warn("User not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if !user.IsActive {
		log.Warn("Login attempt for disabled account", zap.String("email", req.Email))
		prometheus.RecordAuthError("account_disabled")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if !user.CheckPassword(req.Password) {
		log.Warn("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	var schoolDomain string
	if user.SchoolID != nil {
		var school model.School
		if err := h.db.Select("domain").First(&school, *user.SchoolID).Error; err == nil {
			schoolDomain = school.Domain
		}
	}

	token, err := jwtutil.GenerateToken(user.Email, user.ID, user.SchoolID, schoolDomain, user.IsSuperuser)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User logged in",
		zap.String("email", user.Email),
		zap.Bool("superuser", user.IsSuperuser))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user": map[string]interface{}{
			"id":            user.ID,
			"email":         user.Email,
			"full_name":     user.FullName,
			"school_id":     user.SchoolID,
			"school_domain": schoolDomain,
			"is_superuser":  user.IsSuperuser,
		},
	})
}
