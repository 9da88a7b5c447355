package auth

import "errors"

var (
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrInvalidAdminCredentials = errors.New("invalid admin credentials")
	ErrEmailAlreadyExists      = errors.New("user with this email already exists")
	ErrAccountInactive         = errors.New("account is deactivated")
	ErrUserNotFound            = errors.New("user not found")
	ErrInvalidResetToken       = errors.New("reset link is invalid or has expired")
)
