package shared

import (
	"library-lending/internal/domain/user"
)

// Actor is the caller identity supplied by the auth layer on every call.
// Usecases hold no session state of their own.
type Actor struct {
	UserID int64
	Role   user.Role
}

func (a Actor) IsLibrarian() bool {
	return a.Role.IsLibrarian()
}
