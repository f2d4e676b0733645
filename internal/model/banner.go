package model

// Banner is a homepage carousel entry
type Banner struct {
	Base
	SchoolOwned
	Title      string `json:"title" gorm:"type:varchar(255);not null"`
	ImageURL   string `json:"image_url" gorm:"type:varchar(500)"`
	ButtonText string `json:"button_text" gorm:"type:varchar(255)"`
	Link       string `json:"link" gorm:"type:varchar(500)"`
}
