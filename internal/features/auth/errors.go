package auth

import "errors"

var (
	ErrMissingFields      = errors.New("email and password are required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactiveAccount    = errors.New("account is deactivated")
	ErrInvalidToken       = errors.New("invalid refresh token")
)
