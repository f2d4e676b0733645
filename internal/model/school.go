package model

import (
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// School is the tenant record. Every subdomain maps to exactly one School by
// its unique domain key; an inactive school fails tenant resolution and
// thereby hides all of its content.
type School struct {
	Base
	Domain           string   `json:"domain" gorm:"type:varchar(100);uniqueIndex;not null"`
	Name             string   `json:"name" gorm:"type:varchar(255);not null"`
	Slug             string   `json:"slug" gorm:"type:varchar(255);uniqueIndex"`
	Description      string   `json:"description" gorm:"type:text"`
	ShortDescription string   `json:"short_description" gorm:"type:text"`
	FoundedYear      *int     `json:"founded_year,omitempty"`
	Capacity         uint     `json:"capacity"`
	StudentCount     uint     `json:"student_count"`
	TeacherCount     uint     `json:"teacher_count"`
	DirectionCount   uint     `json:"direction_count"`
	ClassCount       uint     `json:"class_count"`
	Email            string   `json:"email" gorm:"type:varchar(255)"`
	PhoneNumber      string   `json:"phone_number" gorm:"type:varchar(255)"`
	Address          string   `json:"address" gorm:"type:varchar(255)"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	InstagramLink    string   `json:"instagram_link" gorm:"type:varchar(255)"`
	TelegramLink     string   `json:"telegram_link" gorm:"type:varchar(255)"`
	FacebookLink     string   `json:"facebook_link" gorm:"type:varchar(255)"`
	YoutubeLink      string   `json:"youtube_link" gorm:"type:varchar(255)"`
}

// BeforeCreate fills the slug from the name when it was left blank
func (s *School) BeforeCreate(tx *gorm.DB) error {
	if s.Slug == "" {
		s.Slug = slug.Make(s.Name)
	}
	return nil
}
