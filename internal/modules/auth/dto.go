package auth

import "propzy/internal/domain"

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	UserName string `json:"userName" validate:"omitempty,max=100"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserNameRequest struct {
	UserName string `json:"userName" validate:"required,max=100"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// AuthResult is returned by register and both login flows.
type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}
