package model

// ContactForm is a public contact-form submission. Anonymous visitors may
// create these; the owning school is always stamped from the resolved
// tenant, never from client input.
type ContactForm struct {
	Base
	SchoolOwned
	FullName    string `json:"full_name" gorm:"type:varchar(500);not null"`
	PhoneNumber string `json:"phone_number" gorm:"type:varchar(255);not null"`
	Message     string `json:"message" gorm:"type:text"`
}
