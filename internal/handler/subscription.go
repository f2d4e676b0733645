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

// SubscriptionHandler serves news email subscriptions
type SubscriptionHandler struct {
	base
}

// NewSubscriptionHandler creates the subscription handler
func NewSubscriptionHandler(db *gorm.DB, policy *scope.Policy, mismatchStatus int) *SubscriptionHandler {
	return &SubscriptionHandler{base: base{db: db, policy: policy, mismatchStatus: mismatchStatus}}
}

// SubscribeRequest is the public subscription payload
type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

// Create subscribes an address to the resolved school's news. An address
// may subscribe once per school; a repeat is a conflict, not an upsert.
func (h *SubscriptionHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("subscription", "create")

	var req SubscribeRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse subscription request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		env := apierror.FromValidation(http.StatusBadRequest, err)
		return c.JSON(env.StatusCode, env)
	}

	sub := model.EmailSubscription{Email: req.Email}
	sub.IsActive = true
	h.policy.AssignOwner(&sub, school, pr)

	dup := h.db.Model(&model.EmailSubscription{}).Where("email = ?", sub.Email)
	if sub.SchoolID != nil {
		dup = dup.Where("school_id = ?", *sub.SchoolID)
	} else {
		dup = dup.Where("school_id IS NULL")
	}
	var count int64
	if err := dup.Count(&count).Error; err != nil {
		log.Error("Failed to check existing subscription", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to subscribe"})
	}
	if count > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "already subscribed"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.Create(&sub).Error; err != nil {
		log.Error("Failed to create subscription", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to subscribe"})
	}

	log.Info("Subscription created", zap.Uint("id", sub.ID), zap.String("email", sub.Email))
	return c.JSON(http.StatusCreated, sub)
}

// List returns the resolved school's subscribers (staff route)
func (h *SubscriptionHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("subscription", "list")

	var subs []model.EmailSubscription
	q := h.policy.FilterForRead(h.db.Model(&model.EmailSubscription{}), school, pr, showInactive(c))
	if err := q.Order("id").Find(&subs).Error; err != nil {
		log.Error("Failed to list subscriptions", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve subscriptions"})
	}

	return c.JSON(http.StatusOK, subs)
}

// Delete unsubscribes an address after the tenant check (staff route)
func (h *SubscriptionHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("subscription", "delete")

	var sub model.EmailSubscription
	if err := h.db.First(&sub, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "subscription not found"})
	}
	if err := h.policy.AuthorizeDetailAccess(&sub, school, pr); err != nil {
		prometheus.RecordAuthError("permission_denied")
		return c.JSON(h.mismatchStatus, echo.Map{"error": err.Error()})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.db.Delete(&sub).Error; err != nil {
		log.Error("Failed to delete subscription", zap.Uint("id", sub.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete subscription"})
	}

	log.Info("Subscription deleted", zap.Uint("id", sub.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "subscription deleted successfully"})
}
