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

// StaffHandler serves staff/teacher bios
type StaffHandler struct {
	base
}

// NewStaffHandler creates the staff handler
func NewStaffHandler(db *gorm.DB, policy *scope.Policy, mismatchStatus int) *StaffHandler {
	return &StaffHandler{base: base{db: db, policy: policy, mismatchStatus: mismatchStatus}}
}

// StaffRequest is the create/update payload for a staff bio
type StaffRequest struct {
	FullName        string `json:"full_name" validate:"required,max=500"`
	Position        string `json:"position" validate:"max=255"`
	ImageURL        string `json:"image_url" validate:"max=500"`
	Description     string `json:"description"`
	ExperienceYears *uint  `json:"experience_years"`
	IsActive        *bool  `json:"is_active"`
}

// List returns staff members visible for the resolved school
func (h *StaffHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("staff", "list")

	var staff []model.Staff
	q := h.policy.FilterForRead(h.db.Model(&model.Staff{}), school, pr, showInactive(c))
	if err := q.Order("id").Find(&staff).Error; err != nil {
		log.Error("Failed to list staff", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve staff"})
	}

	return c.JSON(http.StatusOK, staff)
}

// Detail returns one staff member by slug
func (h *StaffHandler) Detail(c echo.Context) error {
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("staff", "detail")

	var member model.Staff
	q := h.policy.FilterForRead(h.db.Model(&model.Staff{}), school, pr, showInactive(c))
	if err := q.Where("slug = ?", c.Param("slug")).First(&member).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "staff member not found"})
	}

	return c.JSON(http.StatusOK, member)
}

// Create adds a staff bio owned by the resolved school
func (h *StaffHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("staff", "create")

	var req StaffRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse staff request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		env := apierror.FromValidation(http.StatusBadRequest, err)
		return c.JSON(env.StatusCode, env)
	}

	member := model.Staff{
		FullName:        req.FullName,
		Position:        req.Position,
		ImageURL:        req.ImageURL,
		Description:     req.Description,
		ExperienceYears: req.ExperienceYears,
	}
	member.IsActive = true
	if req.IsActive != nil {
		member.IsActive = *req.IsActive
	}
	h.policy.AssignOwner(&member, school, pr)

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.Create(&member).Error; err != nil {
		log.Error("Failed to create staff member", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create staff member"})
	}

	log.Info("Staff member created", zap.Uint("id", member.ID), zap.String("full_name", member.FullName))
	return c.JSON(http.StatusCreated, member)
}

// Update modifies a staff bio after the tenant check
func (h *StaffHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("staff", "update")

	var member model.Staff
	if err := h.db.First(&member, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "staff member not found"})
	}
	if err := h.policy.AuthorizeDetailAccess(&member, school, pr); err != nil {
		prometheus.RecordAuthError("permission_denied")
		return c.JSON(h.mismatchStatus, echo.Map{"error": err.Error()})
	}

	var req StaffRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		env := apierror.FromValidation(http.StatusBadRequest, err)
		return c.JSON(env.StatusCode, env)
	}

	member.FullName = req.FullName
	member.Position = req.Position
	member.ImageURL = req.ImageURL
	member.Description = req.Description
	member.ExperienceYears = req.ExperienceYears
	if req.IsActive != nil {
		member.IsActive = *req.IsActive
	}
	h.policy.AssignOwner(&member, school, pr)

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.db.Save(&member).Error; err != nil {
		log.Error("Failed to update staff member", zap.Uint("id", member.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update staff member"})
	}

	log.Info("Staff member updated", zap.Uint("id", member.ID))
	return c.JSON(http.StatusOK, member)
}

// Delete removes a staff bio after the tenant check
func (h *StaffHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("staff", "delete")

	var member model.Staff
	if err := h.db.First(&member, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "staff member not found"})
	}
	if err := h.policy.AuthorizeDetailAccess(&member, school, pr); err != nil {
		prometheus.RecordAuthError("permission_denied")
		return c.JSON(h.mismatchStatus, echo.Map{"error": err.Error()})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.db.Delete(&member).Error; err != nil {
		log.Error("Failed to delete staff member", zap.Uint("id", member.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete staff member"})
	}

	log.Info("Staff member deleted", zap.Uint("id", member.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "staff member deleted successfully"})
}
