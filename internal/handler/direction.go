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

// DirectionHandler serves the global catalog of study directions. The
// catalog carries no school ownership, so reads apply only the active
// filter and writes are superuser territory.
type DirectionHandler struct {
	base
}

// NewDirectionHandler creates the direction handler
func NewDirectionHandler(db *gorm.DB, policy *scope.Policy, mismatchStatus int) *DirectionHandler {
	return &DirectionHandler{base: base{db: db, policy: policy, mismatchStatus: mismatchStatus}}
}

// List returns the direction catalog
func (h *DirectionHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("direction", "list")

	var directions []model.Direction
	q := h.policy.FilterActiveOnly(h.db.Model(&model.Direction{}), pr, showInactive(c))
	if err := q.Order("id").Find(&directions).Error; err != nil {
		log.Error("Failed to list directions", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve directions"})
	}

	return c.JSON(http.StatusOK, directions)
}

// Detail returns one direction by slug
func (h *DirectionHandler) Detail(c echo.Context) error {
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("direction", "detail")

	var direction model.Direction
	q := h.policy.FilterActiveOnly(h.db.Model(&model.Direction{}), pr, showInactive(c))
	if err := q.Where("slug = ?", c.Param("slug")).First(&direction).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "direction not found"})
	}

	return c.JSON(http.StatusOK, direction)
}

// DirectionRequest is the create/update payload for a direction
type DirectionRequest struct {
	Name         string `json:"name" validate:"required,max=255"`
	Description  string `json:"description"`
	IconURL      string `json:"icon_url" validate:"max=500"`
	ImageURL     string `json:"image_url" validate:"max=500"`
	FoundedYear  *int   `json:"founded_year"`
	StudentCount uint   `json:"student_count"`
	TeacherCount uint   `json:"teacher_count"`
	IsActive     *bool  `json:"is_active"`
}

// Create adds a direction to the global catalog (superuser-only route)
func (h *DirectionHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("direction", "create")

	var req DirectionRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse direction request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		env := apierror.FromValidation(http.StatusBadRequest, err)
		return c.JSON(env.StatusCode, env)
	}

	direction := model.Direction{
		Name:         req.Name,
		Description:  req.Description,
		IconURL:      req.IconURL,
		ImageURL:     req.ImageURL,
		FoundedYear:  req.FoundedYear,
		StudentCount: req.StudentCount,
		TeacherCount: req.TeacherCount,
	}
	direction.IsActive = true
	if req.IsActive != nil {
		direction.IsActive = *req.IsActive
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.Create(&direction).Error; err != nil {
		log.Error("Failed to create direction", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create direction"})
	}

	log.Info("Direction created", zap.Uint("id", direction.ID), zap.String("name", direction.Name))
	return c.JSON(http.StatusCreated, direction)
}

// Update modifies a catalog direction (superuser-only route)
func (h *DirectionHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("direction", "update")

	var direction model.Direction
	if err := h.db.First(&direction, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "direction not found"})
	}

	var req DirectionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		env := apierror.FromValidation(http.StatusBadRequest, err)
		return c.JSON(env.StatusCode, env)
	}

	direction.Name = req.Name
	direction.Description = req.Description
	direction.IconURL = req.IconURL
	direction.ImageURL = req.ImageURL
	direction.FoundedYear = req.FoundedYear
	direction.StudentCount = req.StudentCount
	direction.TeacherCount = req.TeacherCount
	if req.IsActive != nil {
		direction.IsActive = *req.IsActive
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.db.Save(&direction).Error; err != nil {
		log.Error("Failed to update direction", zap.Uint("id", direction.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update direction"})
	}

	log.Info("Direction updated", zap.Uint("id", direction.ID))
	return c.JSON(http.StatusOK, direction)
}

// Delete removes a catalog direction (superuser-only route)
func (h *DirectionHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("direction", "delete")

	var direction model.Direction
	if err := h.db.First(&direction, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "direction not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.db.Delete(&direction).Error; err != nil {
		log.Error("Failed to delete direction", zap.Uint("id", direction.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete direction"})
	}

	log.Info("Direction deleted", zap.Uint("id", direction.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "direction deleted successfully"})
}
