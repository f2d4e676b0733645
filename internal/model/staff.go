package model

import (
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Staff is a staff/teacher bio displayed on the school page
type Staff struct {
	Base
	SchoolOwned
	FullName        string `json:"full_name" gorm:"type:varchar(500);not null"`
	Slug            string `json:"slug" gorm:"type:varchar(255);index"`
	Position        string `json:"position" gorm:"type:varchar(255)"`
	ImageURL        string `json:"image_url" gorm:"type:varchar(500)"`
	Description     string `json:"description" gorm:"type:text"`
	ExperienceYears *uint  `json:"experience_years,omitempty"`
}

func (s *Staff) BeforeCreate(tx *gorm.DB) error {
	if s.Slug == "" {
		s.Slug = slug.Make(s.FullName)
	}
	return nil
}
