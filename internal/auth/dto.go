package auth

import (
	"github.com/adoptly/adoptly-backend/internal/users"
)

// RegisterRequest contains the payload required to create an account.
type RegisterRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=32"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Address  *string `json:"address,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the access token and the authenticated user.
type AuthResponse struct {
	AccessToken string         `json:"access_token"`
	User        *users.UserDTO `json:"user"`
}

// UpdateProfileRequest carries the mutable profile fields.
type UpdateProfileRequest struct {
	Address   *string `json:"address,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}
