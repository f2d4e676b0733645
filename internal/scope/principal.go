package scope

// Principal is the acting user of a request. The zero value is an anonymous
// visitor. Staff principals are bound to exactly one school through their
// account; that binding comes from the signed token and is never writable
// by the principal itself.
type Principal struct {
	UserID    uint
	Email     string
	SchoolID  *uint
	Staff     bool
	Superuser bool
}

// Anonymous reports whether the principal is an unauthenticated visitor
func (p Principal) Anonymous() bool {
	return p.UserID == 0
}

// StaffOrAbove reports whether the principal may see withdrawn content
func (p Principal) StaffOrAbove() bool {
	return p.Staff || p.Superuser
}
