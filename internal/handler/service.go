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

// ServiceHandler serves the paid services a school offers
type ServiceHandler struct {
	base
}

// NewServiceHandler creates the service handler
func NewServiceHandler(db *gorm.DB, policy *scope.Policy, mismatchStatus int) *ServiceHandler {
	return &ServiceHandler{base: base{db: db, policy: policy, mismatchStatus: mismatchStatus}}
}

// ServiceRequest is the create/update payload for a service
type ServiceRequest struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Description string   `json:"description"`
	Tags        string   `json:"tags" validate:"max=255"`
	Price       *float64 `json:"price"`
	IsActive    *bool    `json:"is_active"`
}

// List returns the services visible for the resolved school
func (h *ServiceHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("service", "list")

	var services []model.Service
	q := h.policy.FilterForRead(h.db.Model(&model.Service{}), school, pr, showInactive(c))
	if err := q.Order("id").Find(&services).Error; err != nil {
		log.Error("Failed to list services", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve services"})
	}

	return c.JSON(http.StatusOK, services)
}

// Detail returns one service by slug
func (h *ServiceHandler) Detail(c echo.Context) error {
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("service", "detail")

	var svc model.Service
	q := h.policy.FilterForRead(h.db.Model(&model.Service{}), school, pr, showInactive(c))
	if err := q.Where("slug = ?", c.Param("slug")).First(&svc).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
	}

	return c.JSON(http.StatusOK, svc)
}

// Create adds a service owned by the resolved school
func (h *ServiceHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("service", "create")

	var req ServiceRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse service request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		env := apierror.FromValidation(http.StatusBadRequest, err)
		return c.JSON(env.StatusCode, env)
	}

	svc := model.Service{
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
		Price:       req.Price,
	}
	svc.IsActive = true
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}
	h.policy.AssignOwner(&svc, school, pr)

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.Create(&svc).Error; err != nil {
		log.Error("Failed to create service", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create service"})
	}

	log.Info("Service created", zap.Uint("id", svc.ID), zap.String("name", svc.Name))
	return c.JSON(http.StatusCreated, svc)
}

// Update modifies a service after the tenant check
func (h *ServiceHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("service", "update")

	var svc model.Service
	if err := h.db.First(&svc, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
	}
	if err := h.policy.AuthorizeDetailAccess(&svc, school, pr); err != nil {
		prometheus.RecordAuthError("permission_denied")
		return c.JSON(h.mismatchStatus, echo.Map{"error": err.Error()})
	}

	var req ServiceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		env := apierror.FromValidation(http.StatusBadRequest, err)
		return c.JSON(env.StatusCode, env)
	}

	svc.Name = req.Name
	svc.Description = req.Description
	svc.Tags = req.Tags
	svc.Price = req.Price
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}
	h.policy.AssignOwner(&svc, school, pr)

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.db.Save(&svc).Error; err != nil {
		log.Error("Failed to update service", zap.Uint("id", svc.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update service"})
	}

	log.Info("Service updated", zap.Uint("id", svc.ID))
	return c.JSON(http.StatusOK, svc)
}

// Delete removes a service after the tenant check
func (h *ServiceHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("service", "delete")

	var svc model.Service
	if err := h.db.First(&svc, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
	}
	if err := h.policy.AuthorizeDetailAccess(&svc, school, pr); err != nil {
		prometheus.RecordAuthError("permission_denied")
		return c.JSON(h.mismatchStatus, echo.Map{"error": err.Error()})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.db.Delete(&svc).Error; err != nil {
		log.Error("Failed to delete service", zap.Uint("id", svc.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete service"})
	}

	log.Info("Service deleted", zap.Uint("id", svc.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "service deleted successfully"})
}
