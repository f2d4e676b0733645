package model

import (
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Direction is a study direction (music, art, ...). Directions are a global
// catalog shared by every school, so the model carries no school reference
// and the scoping policy passes it through untouched.
type Direction struct {
	Base
	Name         string `json:"name" gorm:"type:varchar(255);not null"`
	Slug         string `json:"slug" gorm:"type:varchar(255);uniqueIndex"`
	Description  string `json:"description" gorm:"type:text"`
	IconURL      string `json:"icon_url" gorm:"type:varchar(500)"`
	ImageURL     string `json:"image_url" gorm:"type:varchar(500)"`
	FoundedYear  *int   `json:"founded_year,omitempty"`
	StudentCount uint   `json:"student_count"`
	TeacherCount uint   `json:"teacher_count"`
}

func (d *Direction) BeforeCreate(tx *gorm.DB) error {
	if d.Slug == "" {
		d.Slug = slug.Make(d.Name)
	}
	return nil
}
