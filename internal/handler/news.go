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
	"github.com/shDavlatbek/bmsb/internal/notify"
	"github.com/shDavlatbek/bmsb/internal/scope"
	"github.com/shDavlatbek/bmsb/pkg/logger"
	"github.com/shDavlatbek/bmsb/prometheus"
)

// NewsHandler serves news articles and their categories
type NewsHandler struct {
	base
	notifier *notify.Notifier
}

// NewNewsHandler creates the news handler
func NewNewsHandler(db *gorm.DB, policy *scope.Policy, mismatchStatus int, notifier *notify.Notifier) *NewsHandler {
	return &NewsHandler{
		base:     base{db: db, policy: policy, mismatchStatus: mismatchStatus},
		notifier: notifier,
	}
}

// ListCategories returns the news categories visible for the resolved school
func (h *NewsHandler) ListCategories(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("news_category", "list")

	var categories []model.NewsCategory
	q := h.policy.FilterForRead(h.db.Model(&model.NewsCategory{}), school, pr, showInactive(c))
	if err := q.Order("id").Find(&categories).Error; err != nil {
		log.Error("Failed to list news categories", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve categories"})
	}

	return c.JSON(http.StatusOK, categories)
}

// List returns news for the resolved school, newest first. An optional
// category query parameter narrows by category slug.
func (h *NewsHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("news", "list")

	q := h.policy.FilterForRead(h.db.Model(&model.News{}), school, pr, showInactive(c))
	if cat := c.QueryParam("category"); cat != "" {
		q = q.Where("category_id IN (?)",
			h.db.Model(&model.NewsCategory{}).Select("id").Where("slug = ?", cat))
	}

	var items []model.News
	if err := q.Preload("Category").Order("created_at DESC").Find(&items).Error; err != nil {
		log.Error("Failed to list news", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve news"})
	}

	return c.JSON(http.StatusOK, items)
}

// Detail returns one article by slug and bumps its view counter. The
// counter update is a single UPDATE so concurrent reads don't lose counts.
func (h *NewsHandler) Detail(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("news", "detail")

	var news model.News
	q := h.policy.FilterForRead(h.db.Model(&model.News{}), school, pr, showInactive(c))
	if err := q.Preload("Category").Where("slug = ?", c.Param("slug")).First(&news).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "news not found"})
	}

	if err := h.db.Model(&model.News{}).Where("id = ?", news.ID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error; err != nil {
		log.Warn("Failed to bump view count", zap.Uint("id", news.ID), zap.Error(err))
	} else {
		news.ViewCount++
	}

	return c.JSON(http.StatusOK, news)
}

// NewsRequest is the create/update payload for a news article
type NewsRequest struct {
	CategoryID uint   `json:"category_id" validate:"required"`
	Title      string `json:"title" validate:"required,max=255"`
	ImageURL   string `json:"image_url" validate:"max=500"`
	Content    string `json:"content"`
	IsActive   *bool  `json:"is_active"`
}

// Create publishes an article and notifies the school's subscribers in
// the background
func (h *NewsHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("news", "create")

	var req NewsRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse news request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		env := apierror.FromValidation(http.StatusBadRequest, err)
		return c.JSON(env.StatusCode, env)
	}

	var category model.NewsCategory
	if err := h.db.First(&category, req.CategoryID).Error; err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "category not found"})
	}
	if err := h.policy.AuthorizeDetailAccess(&category, school, pr); err != nil {
		prometheus.RecordAuthError("permission_denied")
		return c.JSON(h.mismatchStatus, echo.Map{"error": err.Error()})
	}

	news := model.News{
		CategoryID: req.CategoryID,
		Title:      req.Title,
		ImageURL:   req.ImageURL,
		Content:    req.Content,
	}
	news.IsActive = true
	if req.IsActive != nil {
		news.IsActive = *req.IsActive
	}
	h.policy.AssignOwner(&news, school, pr)

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.Create(&news).Error; err != nil {
		log.Error("Failed to create news", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create news"})
	}

	if school != nil && news.IsActive {
		go h.notifier.NotifyNewsCreated(news, *school)
	}

	log.Info("News created", zap.Uint("id", news.ID), zap.String("title", news.Title))
	return c.JSON(http.StatusCreated, news)
}

// Update modifies an article after the tenant check
func (h *NewsHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("news", "update")

	var news model.News
	if err := h.db.First(&news, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "news not found"})
	}
	if err := h.policy.AuthorizeDetailAccess(&news, school, pr); err != nil {
		prometheus.RecordAuthError("permission_denied")
		return c.JSON(h.mismatchStatus, echo.Map{"error": err.Error()})
	}

	var req NewsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		env := apierror.FromValidation(http.StatusBadRequest, err)
		return c.JSON(env.StatusCode, env)
	}

	if req.CategoryID != news.CategoryID {
		var category model.NewsCategory
		if err := h.db.First(&category, req.CategoryID).Error; err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "category not found"})
		}
		if err := h.policy.AuthorizeDetailAccess(&category, school, pr); err != nil {
			prometheus.RecordAuthError("permission_denied")
			return c.JSON(h.mismatchStatus, echo.Map{"error": err.Error()})
		}
	}

	news.CategoryID = req.CategoryID
	news.Title = req.Title
	news.ImageURL = req.ImageURL
	news.Content = req.Content
	if req.IsActive != nil {
		news.IsActive = *req.IsActive
	}
	h.policy.AssignOwner(&news, school, pr)

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.db.Save(&news).Error; err != nil {
		log.Error("Failed to update news", zap.Uint("id", news.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update news"})
	}

	log.Info("News updated", zap.Uint("id", news.ID), zap.String("title", news.Title))
	return c.JSON(http.StatusOK, news)
}

// Delete removes an article after the tenant check
func (h *NewsHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("news", "delete")

	var news model.News
	if err := h.db.First(&news, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "news not found"})
	}
	if err := h.policy.AuthorizeDetailAccess(&news, school, pr); err != nil {
		prometheus.RecordAuthError("permission_denied")
		return c.JSON(h.mismatchStatus, echo.Map{"error": err.Error()})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.db.Delete(&news).Error; err != nil {
		log.Error("Failed to delete news", zap.Uint("id", news.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete news"})
	}

	log.Info("News deleted", zap.Uint("id", news.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "news deleted successfully"})
}
