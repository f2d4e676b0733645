package scope

import (
	"gorm.io/gorm"

	"github.com/shDavlatbek/bmsb/internal/model"
)

// Scoped is implemented by every model that carries an owning-school
// reference. Models without it (global catalogs) are exempt from tenant
// scoping entirely.
type Scoped interface {
	OwnerSchoolID() *uint
	SetOwnerSchoolID(*uint)
}

// scopedKey marks a query that has already been tenant-scoped, so the
// filter is applied exactly once no matter how handlers compose helpers.
const scopedKey = "bmsb:already_scoped"

// Policy decides which rows a request may see and which school gets stamped
// on writes. One instance is constructed at startup and handed to every
// handler; all methods are pure functions of their arguments.
type Policy struct{}

// NewPolicy creates the scoping policy
func NewPolicy() *Policy {
	return &Policy{}
}

// FilterForRead restricts a query on a school-owned collection to rows the
// request may see. Rows owned by the resolved school and rows with no owner
// (global content) are visible; in global mode (no school resolved) the
// tenant filter is skipped. Inactive rows are excluded unless the caller
// asked for them and the principal is staff-or-above; a non-staff request
// for inactive rows is silently downgraded, not rejected.
func (p *Policy) FilterForRead(db *gorm.DB, school *model.School, pr Principal, includeInactive bool) *gorm.DB {
	if _, ok := db.Get(scopedKey); ok {
		return db
	}
	db = db.Set(scopedKey, true)

	if school != nil {
		db = db.Where("school_id = ? OR school_id IS NULL", school.ID)
	}
	if !(includeInactive && pr.StaffOrAbove()) {
		db = db.Where("is_active = ?", true)
	}
	return db
}

// FilterActiveOnly applies only the visibility filter, for global
// collections that have no school column
func (p *Policy) FilterActiveOnly(db *gorm.DB, pr Principal, includeInactive bool) *gorm.DB {
	if _, ok := db.Get(scopedKey); ok {
		return db
	}
	db = db.Set(scopedKey, true)

	if !(includeInactive && pr.StaffOrAbove()) {
		db = db.Where("is_active = ?", true)
	}
	return db
}

// AssignOwner stamps the owning school on an entity about to be created or
// updated. For non-superusers the resolved school always wins and any
// client-supplied value is discarded; superusers keep whatever owner the
// payload carries.
func (p *Policy) AssignOwner(entity Scoped, school *model.School, pr Principal) {
	if pr.Superuser {
		return
	}
	if school != nil {
		id := school.ID
		entity.SetOwnerSchoolID(&id)
		return
	}
	entity.SetOwnerSchoolID(nil)
}

// AuthorizeDetailAccess checks a direct-by-identifier access against the
// resolved school. Unlike list filtering, a mismatch here is a permission
// error rather than a silent exclusion.
func (p *Policy) AuthorizeDetailAccess(entity Scoped, school *model.School, pr Principal) error {
	owner := entity.OwnerSchoolID()
	if owner == nil {
		// Global content is readable everywhere
		return nil
	}
	if school != nil {
		if *owner != school.ID {
			return ErrPermissionDenied
		}
		return nil
	}
	if pr.Superuser {
		return nil
	}
	return ErrPermissionDenied
}

// ShowInactive reports whether the principal's show_inactive request takes
// effect. Exposed for handlers that need the effective value (e.g. to pick
// a cache key or log it).
func (p *Policy) ShowInactive(requested bool, pr Principal) bool {
	return requested && pr.StaffOrAbove()
}
