// Package profile defines the application-level user record, distinct from
// the opaque auth session identity.
package profile

// Role is who the account holder is to the child using the app.
type Role string

const (
	RoleParent   Role = "Parent"
	RoleTeacher  Role = "Teacher"
	RoleRelative Role = "Relative"
)

// DefaultRole is assumed when nothing better is known (first enum value).
const DefaultRole = RoleParent

// Roles lists the valid roles in display order.
func Roles() []Role {
	return []Role{RoleParent, RoleTeacher, RoleRelative}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleParent, RoleTeacher, RoleRelative:
		return true
	}
	return false
}

// Profile is the user record owned by the profile store, created lazily on
// first successful login.
type Profile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}
