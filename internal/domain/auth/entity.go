// internal/domain/auth/entity.go
package auth

import (
	"database/sql"
	"time"
)

// User is a platform account: customers and back-office staff alike,
// distinguished by Role.
type User struct {
	ID           int64          `json:"id" db:"id"`
	Email        string         `json:"email" db:"email"`
	Phone        sql.NullString `json:"phone" db:"phone"`
	FullName     string         `json:"full_name" db:"full_name"`
	Role         string         `json:"role" db:"role"` // user, consultant, admin, manager, staff
	Status       string         `json:"status" db:"status"` // active, inactive
	PasswordHash string         `json:"-" db:"password_hash"`
	AvatarURL    sql.NullString `json:"avatar_url" db:"avatar_url"`
	DateOfBirth  sql.NullTime   `json:"date_of_birth" db:"date_of_birth"`
	LastLogin    sql.NullTime   `json:"last_login" db:"last_login"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
	DeletedAt    sql.NullTime   `json:"-" db:"deleted_at"`
}

// IsActive reports whether the account may log in.
func (u *User) IsActive() bool {
	return u.Status == "active"
}
