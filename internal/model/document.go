package model

import (
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// DocumentCategory is a global taxonomy shared by every school. It carries
// no school reference, so the scoping policy passes it through untouched.
type DocumentCategory struct {
	Base
	Name string `json:"name" gorm:"type:varchar(255);not null"`
	Slug string `json:"slug" gorm:"type:varchar(255);uniqueIndex"`
}

func (c *DocumentCategory) BeforeCreate(tx *gorm.DB) error {
	if c.Slug == "" {
		c.Slug = slug.Make(c.Name)
	}
	return nil
}

// Document is an official document published by a school
type Document struct {
	Base
	SchoolOwned
	CategoryID *uint             `json:"category_id,omitempty" gorm:"index"`
	Category   *DocumentCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Title      string            `json:"title" gorm:"type:varchar(255);not null"`
	FileURL    string            `json:"file_url" gorm:"type:varchar(500)"`
}
