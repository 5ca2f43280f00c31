// internal/domain/schedule/entity.go
package schedule

import (
	"database/sql"
	"time"
)

// Slot is a bookable window in a consultant's calendar.
type Slot struct {
	ID           int64          `json:"id" db:"id"`
	ConsultantID int64          `json:"consultant_id" db:"consultant_id"`
	StartsAt     time.Time      `json:"starts_at" db:"starts_at"`
	EndsAt       time.Time      `json:"ends_at" db:"ends_at"`
	Capacity     int            `json:"capacity" db:"capacity"`
	Booked       int            `json:"booked" db:"booked"`
	Status       string         `json:"status" db:"status"` // open, closed, cancelled
	Notes        sql.NullString `json:"notes" db:"notes"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
}

// HasRoom reports whether another booking fits in the slot.
func (s *Slot) HasRoom() bool {
	return s.Status == "open" && s.Booked < s.Capacity
}
