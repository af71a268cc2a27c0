package authorization

import "fmt"

// UserRole is the role carried by an administrative bearer token.
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleUploader UserRole = "uploader"
)

func (r UserRole) String() string {
	return string(r)
}

func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}

func (r UserRole) IsValid() bool {
	return r == RoleAdmin || r == RoleUploader
}

// ParseUserRole rejects unknown roles instead of downgrading them.
func ParseUserRole(s string) (UserRole, error) {
	role := UserRole(s)
	if !role.IsValid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return role, nil
}
