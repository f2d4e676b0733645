package model

// SchoolLife is a gallery entry about day-to-day school life
type SchoolLife struct {
	Base
	SchoolOwned
	Title       string `json:"title" gorm:"type:varchar(255);not null"`
	ImageURL    string `json:"image_url" gorm:"type:varchar(500)"`
	Description string `json:"description" gorm:"type:text"`
}
