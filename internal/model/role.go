package model

// Role is the single privilege level stored per user email.
type Role string

const (
	RoleNone       Role = "none"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

// rank orders roles for RoleAtLeast checks: none < instructor < admin.
var rank = map[Role]int{
	RoleNone:       0,
	RoleInstructor: 1,
	RoleAdmin:      2,
}

// ParseRole maps a stored value to a Role. Empty or unknown values are RoleNone.
func ParseRole(s string) Role {
	r := Role(s)
	if _, ok := rank[r]; !ok {
		return RoleNone
	}
	return r
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := rank[r]
	return ok
}

// AtLeast reports whether r grants at least the privileges of min.
func (r Role) AtLeast(min Role) bool {
	return rank[ParseRole(string(r))] >= rank[ParseRole(string(min))]
}
