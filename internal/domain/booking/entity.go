// internal/domain/booking/entity.go
package booking

import (
	"database/sql"
	"time"
)

// Booking statuses
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Booking ties a customer to a schedule slot for one service visit.
type Booking struct {
	ID        int64          `json:"id" db:"id"`
	Reference string         `json:"reference" db:"reference"`
	UserID    int64          `json:"user_id" db:"user_id"`
	SlotID    int64          `json:"slot_id" db:"slot_id"`
	Service   string         `json:"service" db:"service"`
	Status    string         `json:"status" db:"status"`
	Notes     sql.NullString `json:"notes" db:"notes"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

// CanCancel reports whether the booking is still cancellable.
func (b *Booking) CanCancel() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}
