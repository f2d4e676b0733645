package scope

import "errors"

var (
	// ErrTenantNotFound is returned when no school matches the resolved key
	ErrTenantNotFound = errors.New("school not found")

	// ErrTenantInactive is returned when the resolved school is deactivated
	ErrTenantInactive = errors.New("school is not active")

	// ErrPermissionDenied is returned on a cross-tenant detail access
	ErrPermissionDenied = errors.New("forbidden for this school")
)
