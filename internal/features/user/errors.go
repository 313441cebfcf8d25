package user

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already exists")
	ErrInvalidPassword = errors.New("password must be at least 8 characters")
	ErrNotOwner        = errors.New("profile belongs to another user")
)
