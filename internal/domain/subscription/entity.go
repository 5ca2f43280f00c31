// internal/domain/subscription/entity.go
package subscription

import (
	"database/sql"
	"time"
)

// Subscription statuses
const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
	StatusExpired   = "expired"
)

// Plan is a purchasable care package.
type Plan struct {
	ID           int64          `json:"id" db:"id"`
	Code         string         `json:"code" db:"code"`
	Name         string         `json:"name" db:"name"`
	Description  sql.NullString `json:"description" db:"description"`
	PriceCents   int64          `json:"price_cents" db:"price_cents"`
	Currency     string         `json:"currency" db:"currency"`
	DurationDays int            `json:"duration_days" db:"duration_days"`
	Features     []string       `json:"features" db:"features"`
	IsActive     bool           `json:"is_active" db:"is_active"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
}

// Subscription is one customer's enrollment in a plan.
type Subscription struct {
	ID          int64        `json:"id" db:"id"`
	UserID      int64        `json:"user_id" db:"user_id"`
	PlanID      int64        `json:"plan_id" db:"plan_id"`
	Status      string       `json:"status" db:"status"`
	StartsAt    time.Time    `json:"starts_at" db:"starts_at"`
	ExpiresAt   time.Time    `json:"expires_at" db:"expires_at"`
	CancelledAt sql.NullTime `json:"cancelled_at" db:"cancelled_at"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

// IsCurrent reports whether the subscription grants access right now.
func (s *Subscription) IsCurrent(now time.Time) bool {
	return s.Status == StatusActive && now.Before(s.ExpiresAt)
}
