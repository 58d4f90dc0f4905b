package user

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrInvalidUsername = errors.New("invalid username")
	ErrEmptyPassword   = errors.New("password cannot be empty")
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type Email struct {
	value string
}

func NewEmail(value string) (Email, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || !emailPattern.MatchString(trimmed) {
		return Email{}, ErrInvalidEmail
	}
	return Email{value: trimmed}, nil
}

func (e Email) Value() string {
	return e.value
}

type Username struct {
	value string
}

func NewUsername(value string) (Username, error) {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) < 3 || len(trimmed) > 50 {
		return Username{}, ErrInvalidUsername
	}
	return Username{value: trimmed}, nil
}

func (u Username) Value() string {
	return u.value
}

type Credentials struct {
	username Username
	password Password
}

func NewCredentials(username, password string) (Credentials, error) {
	un, err := NewUsername(username)
	if err != nil {
		return Credentials{}, err
	}
	pw, err := NewPassword(password)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{username: un, password: pw}, nil
}

func (c Credentials) Username() Username { return c.username }
func (c Credentials) Password() Password { return c.password }

type Password struct {
	value string
}

func NewPassword(value string) (Password, error) {
	if value == "" {
		return Password{}, ErrEmptyPassword
	}
	return Password{value: value}, nil
}

func (p Password) Value() string {
	return p.value
}
