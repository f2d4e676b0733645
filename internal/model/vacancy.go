package model

import (
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Vacancy types
const (
	VacancyFullTime   = "full_time"
	VacancyPartTime   = "part_time"
	VacancyContract   = "contract"
	VacancyInternship = "internship"
	VacancyRemote     = "remote"
)

// Vacancy is an open job position at a school
type Vacancy struct {
	Base
	SchoolOwned
	Title        string `json:"title" gorm:"type:varchar(255);not null"`
	Slug         string `json:"slug" gorm:"type:varchar(255);index"`
	Description  string `json:"description" gorm:"type:text"`
	Salary       string `json:"salary" gorm:"type:varchar(255)"`
	Requirements string `json:"requirements" gorm:"type:text"`
	Location     string `json:"location" gorm:"type:varchar(255)"`
	Type         string `json:"type" gorm:"type:varchar(50)"`
}

func (v *Vacancy) BeforeCreate(tx *gorm.DB) error {
	if v.Slug == "" {
		v.Slug = slug.Make(v.Title)
	}
	if v.Type == "" {
		v.Type = VacancyFullTime
	}
	return nil
}
