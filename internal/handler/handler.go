package handler

import (
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/shDavlatbek/bmsb/internal/scope"
)

// base carries the dependencies shared by every resource handler: the
// database, the scoping policy, and the deployment's tenant-mismatch
// status (403 or 404).
type base struct {
	db             *gorm.DB
	policy         *scope.Policy
	mismatchStatus int
}

// showInactive reads the show_inactive query parameter. Whether it takes
// effect is the policy's call, not the handler's.
func showInactive(c echo.Context) bool {
	return strings.EqualFold(c.QueryParam("show_inactive"), "true")
}
