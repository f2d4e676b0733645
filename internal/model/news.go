package model

import (
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// NewsCategory groups news items per school. The slug is unique within the
// owning school, not globally.
type NewsCategory struct {
	Base
	SchoolOwned
	Name string `json:"name" gorm:"type:varchar(255);not null"`
	Slug string `json:"slug" gorm:"type:varchar(255);index"`
}

func (c *NewsCategory) BeforeCreate(tx *gorm.DB) error {
	if c.Slug == "" {
		c.Slug = slug.Make(c.Name)
	}
	return nil
}

// News is a published article. Creation notifies the school's email
// subscribers; the notification is fire-and-forget and never blocks the
// request.
type News struct {
	Base
	SchoolOwned
	CategoryID uint          `json:"category_id" gorm:"index;not null"`
	Category   *NewsCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	Title      string        `json:"title" gorm:"type:varchar(255);not null"`
	Slug       string        `json:"slug" gorm:"type:varchar(255);index"`
	ImageURL   string        `json:"image_url" gorm:"type:varchar(500)"`
	Content    string        `json:"content" gorm:"type:text"`
	ViewCount  uint          `json:"view_count"`
}

func (n *News) BeforeCreate(tx *gorm.DB) error {
	if n.Slug == "" {
		n.Slug = slug.Make(n.Title)
	}
	return nil
}
