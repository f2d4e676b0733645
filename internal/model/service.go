package model

import (
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Service is a paid service offered by a school (culture services, art
// classes and so on)
type Service struct {
	Base
	SchoolOwned
	Name        string   `json:"name" gorm:"type:varchar(255);not null"`
	Slug        string   `json:"slug" gorm:"type:varchar(255);index"`
	Description string   `json:"description" gorm:"type:text"`
	Tags        string   `json:"tags" gorm:"type:varchar(255)"`
	Price       *float64 `json:"price,omitempty"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.Slug == "" {
		s.Slug = slug.Make(s.Name)
	}
	return nil
}
