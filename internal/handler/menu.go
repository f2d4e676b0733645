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

// MenuHandler serves the per-school navigation tree
type MenuHandler struct {
	base
}

// NewMenuHandler creates the menu handler
func NewMenuHandler(db *gorm.DB, policy *scope.Policy, mismatchStatus int) *MenuHandler {
	return &MenuHandler{base: base{db: db, policy: policy, mismatchStatus: mismatchStatus}}
}

// MenuNode is one serialized tree node
type MenuNode struct {
	ID       uint        `json:"id"`
	Title    string      `json:"title"`
	URL      string      `json:"url"`
	Children []*MenuNode `json:"children"`
}

// Tree returns the school's menu as nested nodes. One policy-scoped query
// fetches every visible row; the tree is composed in memory, so the active
// filter holds at every level and subtrees of hidden parents drop out.
func (h *MenuHandler) Tree(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("menu", "list")

	var items []model.Menu
	q := h.policy.FilterForRead(h.db.Model(&model.Menu{}), school, pr, showInactive(c))
	if err := q.Order("id").Find(&items).Error; err != nil {
		log.Error("Failed to list menu items", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve menu"})
	}

	return c.JSON(http.StatusOK, buildMenuTree(items))
}

// buildMenuTree links flat rows into a forest. Children of rows that are
// not in the input (filtered out or foreign) are dropped rather than
// promoted.
func buildMenuTree(items []model.Menu) []*MenuNode {
	nodes := make(map[uint]*MenuNode, len(items))
	for _, item := range items {
		nodes[item.ID] = &MenuNode{
			ID:       item.ID,
			Title:    item.Title,
			URL:      item.URL,
			Children: []*MenuNode{},
		}
	}

	roots := []*MenuNode{}
	for _, item := range items {
		node := nodes[item.ID]
		if item.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*item.ParentID]; ok {
			parent.Children = append(parent.Children, node)
		}
	}
	return roots
}

// MenuRequest is the create/update payload for a menu item
type MenuRequest struct {
	Title    string `json:"title" validate:"required,max=120"`
	URL      string `json:"url" validate:"max=255"`
	ParentID *uint  `json:"parent_id"`
	IsActive *bool  `json:"is_active"`
}

// Create adds a menu item to the resolved school's tree
func (h *MenuHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("menu", "create")

	var req MenuRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse menu request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		env := apierror.FromValidation(http.StatusBadRequest, err)
		return c.JSON(env.StatusCode, env)
	}

	menu := model.Menu{
		Title:    req.Title,
		URL:      req.URL,
		ParentID: req.ParentID,
	}
	menu.IsActive = true
	if req.IsActive != nil {
		menu.IsActive = *req.IsActive
	}
	h.policy.AssignOwner(&menu, school, pr)

	if req.ParentID != nil {
		var parent model.Menu
		if err := h.db.First(&parent, *req.ParentID).Error; err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "parent menu not found"})
		}
		if err := h.policy.AuthorizeDetailAccess(&parent, school, pr); err != nil {
			prometheus.RecordAuthError("permission_denied")
			return c.JSON(h.mismatchStatus, echo.Map{"error": err.Error()})
		}
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.Create(&menu).Error; err != nil {
		log.Error("Failed to create menu item", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create menu item"})
	}

	log.Info("Menu item created", zap.Uint("id", menu.ID), zap.String("title", menu.Title))
	return c.JSON(http.StatusCreated, menu)
}

// Update modifies a menu item; re-parenting is checked against both the
// tenant boundary and the tree invariant (a node may not become its own
// ancestor).
func (h *MenuHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("menu", "update")

	var menu model.Menu
	if err := h.db.First(&menu, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "menu item not found"})
	}
	if err := h.policy.AuthorizeDetailAccess(&menu, school, pr); err != nil {
		prometheus.RecordAuthError("permission_denied")
		return c.JSON(h.mismatchStatus, echo.Map{"error": err.Error()})
	}

	var req MenuRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		env := apierror.FromValidation(http.StatusBadRequest, err)
		return c.JSON(env.StatusCode, env)
	}

	if req.ParentID != nil {
		var parent model.Menu
		if err := h.db.First(&parent, *req.ParentID).Error; err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "parent menu not found"})
		}
		if err := h.policy.AuthorizeDetailAccess(&parent, school, pr); err != nil {
			prometheus.RecordAuthError("permission_denied")
			return c.JSON(h.mismatchStatus, echo.Map{"error": err.Error()})
		}
		ok, err := h.validParent(menu.ID, *req.ParentID)
		if err != nil {
			log.Error("Failed to check menu ancestry", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update menu item"})
		}
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "menu item cannot be its own ancestor"})
		}
	}

	menu.Title = req.Title
	menu.URL = req.URL
	menu.ParentID = req.ParentID
	if req.IsActive != nil {
		menu.IsActive = *req.IsActive
	}
	// Ownership never moves away from the resolved school
	h.policy.AssignOwner(&menu, school, pr)

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.db.Save(&menu).Error; err != nil {
		log.Error("Failed to update menu item", zap.Uint("id", menu.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update menu item"})
	}

	log.Info("Menu item updated", zap.Uint("id", menu.ID), zap.String("title", menu.Title))
	return c.JSON(http.StatusOK, menu)
}

// Delete removes a menu item and its whole subtree
func (h *MenuHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	school := middleware.SchoolFromContext(c)
	pr := middleware.PrincipalFromContext(c)
	prometheus.RecordResourceOperation("menu", "delete")

	var menu model.Menu
	if err := h.db.First(&menu, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "menu item not found"})
	}
	if err := h.policy.AuthorizeDetailAccess(&menu, school, pr); err != nil {
		prometheus.RecordAuthError("permission_denied")
		return c.JSON(h.mismatchStatus, echo.Map{"error": err.Error()})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	err := h.db.Transaction(func(tx *gorm.DB) error {
		return deleteMenuSubtree(tx, menu.ID)
	})
	if err != nil {
		log.Error("Failed to delete menu item", zap.Uint("id", menu.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete menu item"})
	}

	log.Info("Menu item deleted", zap.Uint("id", menu.ID), zap.String("title", menu.Title))
	return c.JSON(http.StatusOK, echo.Map{"message": "menu item deleted successfully"})
}

// validParent walks up from the proposed parent; placing a node under
// itself or one of its descendants would break the tree
func (h *MenuHandler) validParent(id, parentID uint) (bool, error) {
	current := parentID
	for {
		if current == id {
			return false, nil
		}
		var parent model.Menu
		if err := h.db.Select("id", "parent_id").First(&parent, current).Error; err != nil {
			return false, err
		}
		if parent.ParentID == nil {
			return true, nil
		}
		current = *parent.ParentID
	}
}

// deleteMenuSubtree removes a node and, depth-first, all of its children
func deleteMenuSubtree(tx *gorm.DB, id uint) error {
	var children []model.Menu
	if err := tx.Select("id").Where("parent_id = ?", id).Find(&children).Error; err != nil {
		return err
	}
	for _, child := range children {
		if err := deleteMenuSubtree(tx, child.ID); err != nil {
			return err
		}
	}
	return tx.Delete(&model.Menu{}, id).Error
}
