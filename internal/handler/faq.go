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

// FAQHandler serves the school's frequently asked questions
type FAQHandler struct {
	base
}

// NewFAQHandler creates the FAQ handler
func NewFAQHandler(db *gorm.DB, policy *scope.Policy, mismatchStatus int) *FAQHandler {
	return &FAQHandler{base: base{db: db, policy: policy, mismatchStatus: mismatchStatus}}
}

// FAQRequest is the create/update payload for an FAQ entry
type FAQRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
	IsActive    *bool  `json:"is_active"`
}

// List returns FAQ entries visible for the resolved school
func (h *FAQHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("faq", "list")

	var faqs []model.FAQ
	q := h.policy.FilterForRead(h.db.Model(&model.FAQ{}), school, pr, showInactive(c))
	if err := q.Order("id").Find(&faqs).Error; err != nil {
		log.Error("Failed to list FAQ entries", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve FAQ entries"})
	}

	return c.JSON(http.StatusOK, faqs)
}

// Create adds an FAQ entry owned by the resolved school
func (h *FAQHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("faq", "create")

	var req FAQRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse FAQ request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		env := apierror.FromValidation(http.StatusBadRequest, err)
		return c.JSON(env.StatusCode, env)
	}

	faq := model.FAQ{
		Title:       req.Title,
		Description: req.Description,
	}
	faq.IsActive = true
	if req.IsActive != nil {
		faq.IsActive = *req.IsActive
	}
	h.policy.AssignOwner(&faq, school, pr)

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.Create(&faq).Error; err != nil {
		log.Error("Failed to create FAQ entry", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create FAQ entry"})
	}

	log.Info("FAQ entry created", zap.Uint("id", faq.ID))
	return c.JSON(http.StatusCreated, faq)
}

// Update modifies an FAQ entry after the tenant check
func (h *FAQHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("faq", "update")

	var faq model.FAQ
	if err := h.db.First(&faq, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "FAQ entry not found"})
	}
	if err := h.policy.AuthorizeDetailAccess(&faq, school, pr); err != nil {
		prometheus.RecordAuthError("permission_denied")
		return c.JSON(h.mismatchStatus, echo.Map{"error": err.Error()})
	}

	var req FAQRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		env := apierror.FromValidation(http.StatusBadRequest, err)
		return c.JSON(env.StatusCode, env)
	}

	faq.Title = req.Title
	faq.Description = req.Description
	if req.IsActive != nil {
		faq.IsActive = *req.IsActive
	}
	h.policy.AssignOwner(&faq, school, pr)

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.db.Save(&faq).Error; err != nil {
		log.Error("Failed to update FAQ entry", zap.Uint("id", faq.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update FAQ entry"})
	}

	log.Info("FAQ entry updated", zap.Uint("id", faq.ID))
	return c.JSON(http.StatusOK, faq)
}

// Delete removes an FAQ entry after the tenant check
func (h *FAQHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("faq", "delete")

	var faq model.FAQ
	if err := h.db.First(&faq, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "FAQ entry not found"})
	}
	if err := h.policy.AuthorizeDetailAccess(&faq, school, pr); err != nil {
		prometheus.RecordAuthError("permission_denied")
		return c.JSON(h.mismatchStatus, echo.Map{"error": err.Error()})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.db.Delete(&faq).Error; err != nil {
		log.Error("Failed to delete FAQ entry", zap.Uint("id", faq.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete FAQ entry"})
	}

	log.Info("FAQ entry deleted", zap.Uint("id", faq.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "FAQ entry deleted successfully"})
}
