package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidIDNumber    = errors.New("invalid id number format")
	ErrAdminInactive      = errors.New("admin account is inactive")
)
