package user

import (
	"time"
)

// User entity. Currently used for auth only; patron management stays in the
// calling application.
type User struct {
	id           int64
	username     Username
	email        Email
	passwordHash string
	role         Role
	lastLogin    *time.Time
	isActive     bool
	createdAt    time.Time
}

func NewUser(username Username, email Email, passwordHash string, role Role) *User {
	return &User{
		username:     username,
		email:        email,
		passwordHash: passwordHash,
		role:         role,
		isActive:     true,
	}
}

func ReconstructUser(id int64, username Username, email Email, passwordHash string, role Role, lastLogin *time.Time, isActive bool, createdAt time.Time) *User {
	return &User{
		id:           id,
		username:     username,
		email:        email,
		passwordHash: passwordHash,
		role:         role,
		lastLogin:    lastLogin,
		isActive:     isActive,
		createdAt:    createdAt,
	}
}

func (u *User) ID() int64             { return u.id }
func (u *User) Username() Username    { return u.username }
func (u *User) Email() Email          { return u.email }
func (u *User) PasswordHash() string  { return u.passwordHash }
func (u *User) Role() Role            { return u.role }
func (u *User) LastLogin() *time.Time { return u.lastLogin }
func (u *User) IsActive() bool        { return u.isActive }
func (u *User) CreatedAt() time.Time  { return u.createdAt }
