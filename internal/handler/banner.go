package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shDavlatbek/bmsb/internal/apierror"
	"github.com/shDavlatbek/bmsb/internal/middleware"
	"github.com/shDavlatbek/bmsb/internal/model"
	"github.com/shDavlatbek/bmsb/internal/scope"
	"github.com/shDavlatbek/bmsb/pkg/logger"
	"github.com/shDavlatbek/bmsb/prometheus"
)

// BannerHandler serves the school's landing-page banners
type BannerHandler struct {
	base
}

// NewBannerHandler creates the banner handler
func NewBannerHandler(db *gorm.DB, policy *scope.Policy, mismatchStatus int) *BannerHandler {
	return &BannerHandler{base: base{db: db, policy: policy, mismatchStatus: mismatchStatus}}
}

// BannerRequest is the create/update payload for a banner
type BannerRequest struct {
	Title      string `json:"title" validate:"required,max=255"`
	ImageURL   string `json:"image_url" validate:"max=500"`
	ButtonText string `json:"button_text" validate:"max=255"`
	Link       string `json:"link" validate:"max=500"`
	IsActive   *bool  `json:"is_active"`
}

// List returns the banners visible for the resolved school
func (h *BannerHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("banner", "list")

	var banners []model.Banner
	q := h.policy.FilterForRead(h.db.Model(&model.Banner{}), school, pr, showInactive(c))
	if err := q.Order("id").Find(&banners).Error; err != nil {
		log.Error("Failed to list banners", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve banners"})
	}

	return c.JSON(http.StatusOK, banners)
}

// Detail returns a single banner, enforcing the tenant boundary
func (h *BannerHandler) Detail(c echo.Context) error {
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("banner", "detail")

	var banner model.Banner
	if err := h.db.First(&banner, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "banner not found"})
	}
	if err := h.policy.AuthorizeDetailAccess(&banner, school, pr); err != nil {
		prometheus.RecordAuthError("permission_denied")
		return c.JSON(h.mismatchStatus, echo.Map{"error": err.Error()})
	}
	if !banner.IsActive && !pr.StaffOrAbove() {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "banner not found"})
	}

	return c.JSON(http.StatusOK, banner)
}

// Create adds a banner owned by the resolved school
func (h *BannerHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("banner", "create")

	var req BannerRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse banner request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		env := apierror.FromValidation(http.StatusBadRequest, err)
		return c.JSON(env.StatusCode, env)
	}

	banner := model.Banner{
		Title:      req.Title,
		ImageURL:   req.ImageURL,
		ButtonText: req.ButtonText,
		Link:       req.Link,
	}
	banner.IsActive = true
	if req.IsActive != nil {
		banner.IsActive = *req.IsActive
	}
	h.policy.AssignOwner(&banner, school, pr)

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.Create(&banner).Error; err != nil {
		log.Error("Failed to create banner", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create banner"})
	}

	log.Info("Banner created", zap.Uint("id", banner.ID), zap.String("title", banner.Title))
	return c.JSON(http.StatusCreated, banner)
}

// Update modifies a banner after the tenant check
func (h *BannerHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("banner", "update")

	var banner model.Banner
	if err := h.db.First(&banner, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "banner not found"})
	}
	if err := h.policy.AuthorizeDetailAccess(&banner, school, pr); err != nil {
		prometheus.RecordAuthError("permission_denied")
		return c.JSON(h.mismatchStatus, echo.Map{"error": err.Error()})
	}

	var req BannerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		env := apierror.FromValidation(http.StatusBadRequest, err)
		return c.JSON(env.StatusCode, env)
	}

	banner.Title = req.Title
	banner.ImageURL = req.ImageURL
	banner.ButtonText = req.ButtonText
	banner.Link = req.Link
	if req.IsActive != nil {
		banner.IsActive = *req.IsActive
	}
	h.policy.AssignOwner(&banner, school, pr)

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.db.Save(&banner).Error; err != nil {
		log.Error("Failed to update banner", zap.Uint("id", banner.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update banner"})
	}

	log.Info("Banner updated", zap.Uint("id", banner.ID), zap.String("title", banner.Title))
	return c.JSON(http.StatusOK, banner)
}

// Delete removes a banner after the tenant check
func (h *BannerHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("banner", "delete")

	var banner model.Banner
	if err := h.db.First(&banner, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "banner not found"})
	}
	if err := h.policy.AuthorizeDetailAccess(&banner, school, pr); err != nil {
		prometheus.RecordAuthError("permission_denied")
		return c.JSON(h.mismatchStatus, echo.Map{"error": err.Error()})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.db.Delete(&banner).Error; err != nil {
		log.Error("Failed to delete banner", zap.Uint("id", banner.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete banner"})
	}

	log.Info("Banner deleted", zap.Uint("id", banner.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "banner deleted successfully"})
}
