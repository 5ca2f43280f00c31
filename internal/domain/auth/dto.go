// internal/domain/auth/dto.go
package auth

import "time"

// RegisterRequest for customer registration
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
}

// LoginRequest for user login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse successful login response
type LoginResponse struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         UserInfo  `json:"user"`
}

// UserInfo minimal user information returned to clients
type UserInfo struct {
	ID       int64  `json:"id"`
	Role     string `json:"role"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// RefreshRequest exchanges a refresh token for a fresh token pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateDetailsRequest for profile updates
type UpdateDetailsRequest struct {
	FullName    string `json:"full_name"`
	Phone       string `json:"phone"`
	AvatarURL   string `json:"avatar_url"`
	DateOfBirth string `json:"date_of_birth"` // YYYY-MM-DD
}

// ChangePasswordRequest for password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// CreateStaffRequest for provisioning back-office accounts
type CreateStaffRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role" binding:"required"` // consultant, admin, manager, staff
	Password string `json:"password" binding:"required,min=8"`
}
