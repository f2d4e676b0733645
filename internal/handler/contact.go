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

// ContactHandler serves public contact-form submissions
type ContactHandler struct {
	base
}

// NewContactHandler creates the contact handler
func NewContactHandler(db *gorm.DB, policy *scope.Policy, mismatchStatus int) *ContactHandler {
	return &ContactHandler{base: base{db: db, policy: policy, mismatchStatus: mismatchStatus}}
}

// ContactRequest is the public submission payload
type ContactRequest struct {
	FullName    string `json:"full_name" validate:"required,max=500"`
	PhoneNumber string `json:"phone_number" validate:"required,max=255"`
	Message     string `json:"message"`
}

// Create accepts an anonymous submission. The owning school comes from the
// resolved tenant; nothing in the payload can redirect it.
func (h *ContactHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("contact_form", "create")

	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse contact request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		env := apierror.FromValidation(http.StatusBadRequest, err)
		return c.JSON(env.StatusCode, env)
	}

	form := model.ContactForm{
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Message:     req.Message,
	}
	form.IsActive = true
	h.policy.AssignOwner(&form, school, pr)

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.Create(&form).Error; err != nil {
		log.Error("Failed to create contact submission", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to submit"})
	}

	log.Info("Contact submission received", zap.Uint("id", form.ID))
	return c.JSON(http.StatusCreated, form)
}

// List returns submissions for the resolved school (staff route)
func (h *ContactHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("contact_form", "list")

	var forms []model.ContactForm
	q := h.policy.FilterForRead(h.db.Model(&model.ContactForm{}), school, pr, showInactive(c))
	if err := q.Order("created_at DESC").Find(&forms).Error; err != nil {
		log.Error("Failed to list contact submissions", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve submissions"})
	}

	return c.JSON(http.StatusOK, forms)
}

// Delete removes a submission after the tenant check (staff route)
func (h *ContactHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("contact_form", "delete")

	var form model.ContactForm
	if err := h.db.First(&form, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "submission not found"})
	}
	if err := h.policy.AuthorizeDetailAccess(&form, school, pr); err != nil {
		prometheus.RecordAuthError("permission_denied")
		return c.JSON(h.mismatchStatus, echo.Map{"error": err.Error()})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.db.Delete(&form).Error; err != nil {
		log.Error("Failed to delete contact submission", zap.Uint("id", form.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete submission"})
	}

	log.Info("Contact submission deleted", zap.Uint("id", form.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "submission deleted successfully"})
}
