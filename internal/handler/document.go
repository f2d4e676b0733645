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

// DocumentHandler serves official documents and the shared category catalog
type DocumentHandler struct {
	base
}

// NewDocumentHandler creates the document handler
func NewDocumentHandler(db *gorm.DB, policy *scope.Policy, mismatchStatus int) *DocumentHandler {
	return &DocumentHandler{base: base{db: db, policy: policy, mismatchStatus: mismatchStatus}}
}

// ListCategories returns the global document categories. The catalog is
// shared by every school, so only the active filter applies.
func (h *DocumentHandler) ListCategories(c echo.Context) error {
	log := logger.FromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("document_category", "list")

	var categories []model.DocumentCategory
	q := h.policy.FilterActiveOnly(h.db.Model(&model.DocumentCategory{}), pr, showInactive(c))
	if err := q.Order("id").Find(&categories).Error; err != nil {
		log.Error("Failed to list document categories", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve categories"})
	}

	return c.JSON(http.StatusOK, categories)
}

// List returns the documents visible for the resolved school. An optional
// category query parameter narrows by category slug.
func (h *DocumentHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("document", "list")

	q := h.policy.FilterForRead(h.db.Model(&model.Document{}), school, pr, showInactive(c))
	if cat := c.QueryParam("category"); cat != "" {
		q = q.Where("category_id IN (?)",
			h.db.Model(&model.DocumentCategory{}).Select("id").Where("slug = ?", cat))
	}

	var docs []model.Document
	if err := q.Preload("Category").Order("id").Find(&docs).Error; err != nil {
		log.Error("Failed to list documents", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve documents"})
	}

	return c.JSON(http.StatusOK, docs)
}

// DocumentRequest is the create/update payload for a document
type DocumentRequest struct {
	CategoryID *uint  `json:"category_id"`
	Title      string `json:"title" validate:"required,max=255"`
	FileURL    string `json:"file_url" validate:"max=500"`
	IsActive   *bool  `json:"is_active"`
}

// Create adds a document owned by the resolved school
func (h *DocumentHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("document", "create")

	var req DocumentRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse document request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		env := apierror.FromValidation(http.StatusBadRequest, err)
		return c.JSON(env.StatusCode, env)
	}

	if req.CategoryID != nil {
		var category model.DocumentCategory
		if err := h.db.First(&category, *req.CategoryID).Error; err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "category not found"})
		}
	}

	doc := model.Document{
		CategoryID: req.CategoryID,
		Title:      req.Title,
		FileURL:    req.FileURL,
	}
	doc.IsActive = true
	if req.IsActive != nil {
		doc.IsActive = *req.IsActive
	}
	h.policy.AssignOwner(&doc, school, pr)

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.Create(&doc).Error; err != nil {
		log.Error("Failed to create document", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create document"})
	}

	log.Info("Document created", zap.Uint("id", doc.ID), zap.String("title", doc.Title))
	return c.JSON(http.StatusCreated, doc)
}

// Update modifies a document after the tenant check
func (h *DocumentHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("document", "update")

	var doc model.Document
	if err := h.db.First(&doc, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "document not found"})
	}
	if err := h.policy.AuthorizeDetailAccess(&doc, school, pr); err != nil {
		prometheus.RecordAuthError("permission_denied")
		return c.JSON(h.mismatchStatus, echo.Map{"error": err.Error()})
	}

	var req DocumentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		env := apierror.FromValidation(http.StatusBadRequest, err)
		return c.JSON(env.StatusCode, env)
	}

	if req.CategoryID != nil {
		var category model.DocumentCategory
		if err := h.db.First(&category, *req.CategoryID).Error; err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "category not found"})
		}
	}

	doc.CategoryID = req.CategoryID
	doc.Title = req.Title
	doc.FileURL = req.FileURL
	if req.IsActive != nil {
		doc.IsActive = *req.IsActive
	}
	h.policy.AssignOwner(&doc, school, pr)

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.db.Save(&doc).Error; err != nil {
		log.Error("Failed to update document", zap.Uint("id", doc.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update document"})
	}

	log.Info("Document updated", zap.Uint("id", doc.ID))
	return c.JSON(http.StatusOK, doc)
}

// Delete removes a document after the tenant check
func (h *DocumentHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("document", "delete")

	var doc model.Document
	if err := h.db.First(&doc, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "document not found"})
	}
	if err := h.policy.AuthorizeDetailAccess(&doc, school, pr); err != nil {
		prometheus.RecordAuthError("permission_denied")
		return c.JSON(h.mismatchStatus, echo.Map{"error": err.Error()})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.db.Delete(&doc).Error; err != nil {
		log.Error("Failed to delete document", zap.Uint("id", doc.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete document"})
	}

	log.Info("Document deleted", zap.Uint("id", doc.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "document deleted successfully"})
}
