package model

import "golang.org/x/crypto/bcrypt"

// User is an administrator account. A user bound to a school manages only
// that school's content; a superuser is unbound and sees every school. The
// binding is assigned by an operator and is never editable through the API.
type User struct {
	Base
	Email       string  `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Password    string  `json:"-" gorm:"type:varchar(255)"`
	FullName    string  `json:"full_name" gorm:"type:varchar(500)"`
	SchoolID    *uint   `json:"school_id,omitempty" gorm:"index"`
	School      *School `json:"school,omitempty" gorm:"foreignKey:SchoolID"`
	IsSuperuser bool    `json:"is_superuser"`
}

// SetPassword hashes and stores the given plain-text password
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword compares the stored hash against a plain-text candidate
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}
