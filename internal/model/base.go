package model

import "time"

// Base carries the columns shared by every content model: timestamps and the
// soft-visibility active flag. Deletion is always a hard delete; withdrawn
// content is hidden by flipping IsActive instead.
type Base struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	IsActive  bool      `json:"is_active"`
}

// SchoolOwned is embedded by every model that belongs to a school. A nil
// SchoolID means the row is global and visible on every subdomain.
type SchoolOwned struct {
	SchoolID *uint `json:"school_id,omitempty" gorm:"index"`
}

// OwnerSchoolID returns the owning school, nil for global rows
func (s *SchoolOwned) OwnerSchoolID() *uint {
	return s.SchoolID
}

// SetOwnerSchoolID stamps the owning school
func (s *SchoolOwned) SetOwnerSchoolID(id *uint) {
	s.SchoolID = id
}
