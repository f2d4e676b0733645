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

// SchoolLifeHandler serves the school-life gallery
type SchoolLifeHandler struct {
	base
}

// NewSchoolLifeHandler creates the school-life handler
func NewSchoolLifeHandler(db *gorm.DB, policy *scope.Policy, mismatchStatus int) *SchoolLifeHandler {
	return &SchoolLifeHandler{base: base{db: db, policy: policy, mismatchStatus: mismatchStatus}}
}

// SchoolLifeRequest is the create/update payload for a gallery entry
type SchoolLifeRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	ImageURL    string `json:"image_url" validate:"max=500"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

// List returns gallery entries visible for the resolved school
func (h *SchoolLifeHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("school_life", "list")

	var entries []model.SchoolLife
	q := h.policy.FilterForRead(h.db.Model(&model.SchoolLife{}), school, pr, showInactive(c))
	if err := q.Order("created_at DESC").Find(&entries).Error; err != nil {
		log.Error("Failed to list school-life entries", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve entries"})
	}

	return c.JSON(http.StatusOK, entries)
}

// Detail returns one gallery entry, enforcing the tenant boundary
func (h *SchoolLifeHandler) Detail(c echo.Context) error {
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("school_life", "detail")

	var entry model.SchoolLife
	if err := h.db.First(&entry, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "entry not found"})
	}
	if err := h.policy.AuthorizeDetailAccess(&entry, school, pr); err != nil {
		prometheus.RecordAuthError("permission_denied")
		return c.JSON(h.mismatchStatus, echo.Map{"error": err.Error()})
	}
	if !entry.IsActive && !pr.StaffOrAbove() {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "entry not found"})
	}

	return c.JSON(http.StatusOK, entry)
}

// Create adds a gallery entry owned by the resolved school
func (h *SchoolLifeHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("school_life", "create")

	var req SchoolLifeRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse school-life request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		env := apierror.FromValidation(http.StatusBadRequest, err)
		return c.JSON(env.StatusCode, env)
	}

	entry := model.SchoolLife{
		Title:       req.Title,
		ImageURL:    req.ImageURL,
		Description: req.Description,
	}
	entry.IsActive = true
	if req.IsActive != nil {
		entry.IsActive = *req.IsActive
	}
	h.policy.AssignOwner(&entry, school, pr)

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.Create(&entry).Error; err != nil {
		log.Error("Failed to create school-life entry", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create entry"})
	}

	log.Info("School-life entry created", zap.Uint("id", entry.ID), zap.String("title", entry.Title))
	return c.JSON(http.StatusCreated, entry)
}

// Update modifies a gallery entry after the tenant check
func (h *SchoolLifeHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("school_life", "update")

	var entry model.SchoolLife
	if err := h.db.First(&entry, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "entry not found"})
	}
	if err := h.policy.AuthorizeDetailAccess(&entry, school, pr); err != nil {
		prometheus.RecordAuthError("permission_denied")
		return c.JSON(h.mismatchStatus, echo.Map{"error": err.Error()})
	}

	var req SchoolLifeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		env := apierror.FromValidation(http.StatusBadRequest, err)
		return c.JSON(env.StatusCode, env)
	}

	entry.Title = req.Title
	entry.ImageURL = req.ImageURL
	entry.Description = req.Description
	if req.IsActive != nil {
		entry.IsActive = *req.IsActive
	}
	h.policy.AssignOwner(&entry, school, pr)

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.db.Save(&entry).Error; err != nil {
		log.Error("Failed to update school-life entry", zap.Uint("id", entry.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update entry"})
	}

	log.Info("School-life entry updated", zap.Uint("id", entry.ID))
	return c.JSON(http.StatusOK, entry)
}

// Delete removes a gallery entry after the tenant check
func (h *SchoolLifeHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("school_life", "delete")

	var entry model.SchoolLife
	if err := h.db.First(&entry, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "entry not found"})
	}
	if err := h.policy.AuthorizeDetailAccess(&entry, school, pr); err != nil {
		prometheus.RecordAuthError("permission_denied")
		return c.JSON(h.mismatchStatus, echo.Map{"error": err.Error()})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.db.Delete(&entry).Error; err != nil {
		log.Error("Failed to delete school-life entry", zap.Uint("id", entry.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete entry"})
	}

	log.Info("School-life entry deleted", zap.Uint("id", entry.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "entry deleted successfully"})
}
