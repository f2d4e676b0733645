package model

// Menu is a tree-shaped navigation item scoped per school. ParentID forms
// the tree; root items have a nil parent. Tree integrity (a node may not be
// its own ancestor) is enforced at create/update time by the handlers.
type Menu struct {
	Base
	SchoolOwned
	Title    string `json:"title" gorm:"type:varchar(120);not null"`
	URL      string `json:"url" gorm:"type:varchar(255)"`
	ParentID *uint  `json:"parent_id,omitempty" gorm:"index"`
	Children []Menu `json:"-" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
}
