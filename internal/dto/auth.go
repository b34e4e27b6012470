package dto

import (
	"time"

	"expenzy/internal/models"

	"github.com/shopspring/decimal"
)

// Auth Request DTOs

// SignupRequest contains account registration data
type SignupRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,max=72"`
	Income   decimal.Decimal `json:"income" validate:"non_negative_amount"`
}

// LoginRequest contains login credentials
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Auth Response DTOs

// UserResponse is the public view of an account
type UserResponse struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Income    decimal.Decimal `json:"income"`
	CreatedAt time.Time       `json:"created_at"`
}

// AuthResponse is returned by signup and login
type AuthResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// ToUserResponse converts a user model to its public view
func ToUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Income:    user.Income,
		CreatedAt: user.CreatedAt,
	}
}
