package model

// EmailSubscription is a visitor subscription to a school's news
// notifications. One address may subscribe once per school.
type EmailSubscription struct {
	Base
	SchoolOwned
	Email string `json:"email" gorm:"type:varchar(255);not null;index"`
}
