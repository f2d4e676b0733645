package model

// AllModels lists every model for migrations, in FK dependency order
func AllModels() []interface{} {
	return []interface{}{
		&School{},
		&User{},
		&Menu{},
		&Banner{},
		&NewsCategory{},
		&News{},
		&Staff{},
		&DocumentCategory{},
		&Document{},
		&Direction{},
		&Service{},
		&FAQ{},
		&Vacancy{},
		&SchoolLife{},
		&ContactForm{},
		&EmailSubscription{},
	}
}
