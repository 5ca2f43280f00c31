// internal/domain/payment/entity.go
package payment

import (
	"database/sql"
	"time"
)

// Payment statuses
const (
	StatusPending  = "pending"
	StatusPaid     = "paid"
	StatusFailed   = "failed"
	StatusRefunded = "refunded"
)

// Payment records money received for a booking or a subscription.
type Payment struct {
	ID             int64          `json:"id" db:"id"`
	Reference      string         `json:"reference" db:"reference"`
	UserID         int64          `json:"user_id" db:"user_id"`
	BookingID      sql.NullInt64  `json:"booking_id" db:"booking_id"`
	SubscriptionID sql.NullInt64  `json:"subscription_id" db:"subscription_id"`
	AmountCents    int64          `json:"amount_cents" db:"amount_cents"`
	Currency       string         `json:"currency" db:"currency"`
	Method         string         `json:"method" db:"method"` // card, mobile_money, bank
	Status         string         `json:"status" db:"status"`
	ExternalRef    sql.NullString `json:"external_ref" db:"external_ref"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}
