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

// VacancyHandler serves the school's open job positions
type VacancyHandler struct {
	base
}

// NewVacancyHandler creates the vacancy handler
func NewVacancyHandler(db *gorm.DB, policy *scope.Policy, mismatchStatus int) *VacancyHandler {
	return &VacancyHandler{base: base{db: db, policy: policy, mismatchStatus: mismatchStatus}}
}

// VacancyRequest is the create/update payload for a vacancy
type VacancyRequest struct {
	Title        string `json:"title" validate:"required,max=255"`
	Description  string `json:"description"`
	Salary       string `json:"salary" validate:"max=255"`
	Requirements string `json:"requirements"`
	Location     string `json:"location" validate:"max=255"`
	Type         string `json:"type" validate:"omitempty,oneof=full_time part_time contract internship remote"`
	IsActive     *bool  `json:"is_active"`
}

// List returns the vacancies visible for the resolved school
func (h *VacancyHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("vacancy", "list")

	var vacancies []model.Vacancy
	q := h.policy.FilterForRead(h.db.Model(&model.Vacancy{}), school, pr, showInactive(c))
	if err := q.Order("created_at DESC").Find(&vacancies).Error; err != nil {
		log.Error("Failed to list vacancies", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve vacancies"})
	}

	return c.JSON(http.StatusOK, vacancies)
}

// Detail returns one vacancy by slug
func (h *VacancyHandler) Detail(c echo.Context) error {
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("vacancy", "detail")

	var vacancy model.Vacancy
	q := h.policy.FilterForRead(h.db.Model(&model.Vacancy{}), school, pr, showInactive(c))
	if err := q.Where("slug = ?", c.Param("slug")).First(&vacancy).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "vacancy not found"})
	}

	return c.JSON(http.StatusOK, vacancy)
}

// Create adds a vacancy owned by the resolved school
func (h *VacancyHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("vacancy", "create")

	var req VacancyRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse vacancy request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		env := apierror.FromValidation(http.StatusBadRequest, err)
		return c.JSON(env.StatusCode, env)
	}

	vacancy := model.Vacancy{
		Title:        req.Title,
		Description:  req.Description,
		Salary:       req.Salary,
		Requirements: req.Requirements,
		Location:     req.Location,
		Type:         req.Type,
	}
	vacancy.IsActive = true
	if req.IsActive != nil {
		vacancy.IsActive = *req.IsActive
	}
	h.policy.AssignOwner(&vacancy, school, pr)

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.Create(&vacancy).Error; err != nil {
		log.Error("Failed to create vacancy", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create vacancy"})
	}

	log.Info("Vacancy created", zap.Uint("id", vacancy.ID), zap.String("title", vacancy.Title))
	return c.JSON(http.StatusCreated, vacancy)
}

// Update modifies a vacancy after the tenant check
func (h *VacancyHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("vacancy", "update")

	var vacancy model.Vacancy
	if err := h.db.First(&vacancy, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "vacancy not found"})
	}
	if err := h.policy.AuthorizeDetailAccess(&vacancy, school, pr); err != nil {
		prometheus.RecordAuthError("permission_denied")
		return c.JSON(h.mismatchStatus, echo.Map{"error": err.Error()})
	}

	var req VacancyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		env := apierror.FromValidation(http.StatusBadRequest, err)
		return c.JSON(env.StatusCode, env)
	}

	vacancy.Title = req.Title
	vacancy.Description = req.Description
	vacancy.Salary = req.Salary
	vacancy.Requirements = req.Requirements
	vacancy.Location = req.Location
	if req.Type != "" {
		vacancy.Type = req.Type
	}
	if req.IsActive != nil {
		vacancy.IsActive = *req.IsActive
	}
	h.policy.AssignOwner(&vacancy, school, pr)

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.db.Save(&vacancy).Error; err != nil {
		log.Error("Failed to update vacancy", zap.Uint("id", vacancy.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update vacancy"})
	}

	log.Info("Vacancy updated", zap.Uint("id", vacancy.ID))
	return c.JSON(http.StatusOK, vacancy)
}

// Delete removes a vacancy after the tenant check
func (h *VacancyHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("vacancy", "delete")

	var vacancy model.Vacancy
	if err := h.db.First(&vacancy, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "vacancy not found"})
	}
	if err := h.policy.AuthorizeDetailAccess(&vacancy, school, pr); err != nil {
		prometheus.RecordAuthError("permission_denied")
		return c.JSON(h.mismatchStatus, echo.Map{"error": err.Error()})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.db.Delete(&vacancy).Error; err != nil {
		log.Error("Failed to delete vacancy", zap.Uint("id", vacancy.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete vacancy"})
	}

	log.Info("Vacancy deleted", zap.Uint("id", vacancy.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "vacancy deleted successfully"})
}
