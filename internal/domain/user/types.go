package user

import "errors"

var ErrInvalidRole = errors.New("invalid role")

type Role string

const (
	RoleMember    Role = "member"
	RoleLibrarian Role = "librarian"
)

func NewRole(value string) (Role, error) {
	role := Role(value)
	if !role.IsValid() {
		return "", ErrInvalidRole
	}
	return role, nil
}

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleMember, RoleLibrarian:
		return true
	default:
		return false
	}
}

func (r Role) IsLibrarian() bool {
	return r == RoleLibrarian
}
