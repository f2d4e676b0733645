package model

// FAQ is a frequently asked question shown on the school page
type FAQ struct {
	Base
	SchoolOwned
	Title       string `json:"title" gorm:"type:varchar(255);not null"`
	Description string `json:"description" gorm:"type:text;not null"`
}
